package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// Load opens the backend cfg names. A nil cfg loads the config file.
func Load(ctx context.Context, cfg Config, opts ...Option) (Adapter, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	opts = append([]Option{WithNamespace(cfg.Namespace())}, opts...)

	switch cfg.Driver() {
	case DriverDisk, "":
		return NewDisk(cfg.BasePath(), opts...)
	case DriverMemory:
		return NewMemory(opts...), nil
	case DriverSQLite:
		if err := os.MkdirAll(cfg.BasePath(), 0o755); err != nil {
			return nil, fmt.Errorf("store: ensure base path: %w", err)
		}
		return OpenSQL(ctx, SQLite, cfg.DSN(), append(opts, WithPollInterval(2*time.Second))...)
	case DriverPostgres:
		if cfg.DSN() == "" {
			return nil, errors.New("store: postgres driver needs a dsn")
		}
		return OpenSQL(ctx, Postgres, cfg.DSN(), append(opts, WithPollInterval(5*time.Second))...)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver())
	}
}
