// Package env opens everything a command needs to act for the local user.
package env

import (
	"context"
	"io"
	"os"

	"tableflip.dev/journal/pkg/app"
	"tableflip.dev/journal/pkg/identity"
	"tableflip.dev/journal/pkg/logging"
	"tableflip.dev/journal/pkg/store"
)

// Env is one opened journal: config, store and the user's repository.
type Env struct {
	Config store.Config
	Store  store.Adapter
	Repo   *app.Repository
	Log    logging.Logger
}

type Options struct {
	// Config overrides the config file when set.
	Config store.Config
	// Provider overrides the anonymous identity kept next to the journal.
	Provider identity.Provider
	// LogOutput defaults to stderr.
	LogOutput io.Writer
	// Watch keeps the disk backend watching for external edits.
	Watch bool
}

// Open loads config, opens the configured store, resolves the user and
// returns a repository bound to both.
func Open(ctx context.Context, o Options) (*Env, error) {
	cfg := o.Config
	if cfg == nil {
		var err error
		if cfg, err = store.LoadConfig(); err != nil {
			return nil, err
		}
	}

	out := o.LogOutput
	if out == nil {
		out = os.Stderr
	}
	log, err := logging.New(out, cfg.LogLevel())
	if err != nil {
		return nil, err
	}

	opts := []store.Option{store.WithLogger(log)}
	if !o.Watch {
		opts = append(opts, store.WithoutWatch())
	}
	st, err := store.Load(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}

	p := o.Provider
	if p == nil {
		tokens := identity.NewFileTokenStore(cfg.BasePath(), cfg.Namespace())
		p = identity.NewAnonymous(tokens, cfg.Secret(), cfg.Namespace())
	}
	repo, err := app.Open(ctx, identity.NewSession(p), st,
		app.WithLocation(cfg.Location()),
		app.WithLogger(log),
	)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	log.Debug(ctx, "env: journal opened", "driver", cfg.Driver(), "namespace", cfg.Namespace(), "user", repo.UserID())
	return &Env{Config: cfg, Store: st, Repo: repo, Log: log}, nil
}

func (e *Env) Close() error {
	e.Repo.Close()
	return e.Store.Close()
}
