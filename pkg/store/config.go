package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	DriverDisk     = "disk"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	DefaultNamespace = "default-journal"
	defaultPath      = "~/.journal"
	// Only good enough to keep a local token from being edited by hand.
	defaultSecret = "journal-local-secret"
)

type Config interface {
	BasePath() string
	Driver() string
	DSN() string
	Namespace() string
	Secret() string
	Location() *time.Location
	LogLevel() string
	S3Endpoint() string
	S3Region() string
	// S3AccessKey and S3SecretKey are optional; empty means the default
	// AWS credential chain.
	S3AccessKey() string
	S3SecretKey() string
}

// LoadConfig reads .journal.yaml from $JOURNAL_CONFIG_PATH, the working
// directory or the home directory. JOURNAL_* environment variables override
// file values.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetDefault("driver", DriverDisk)
	v.SetDefault("path", defaultPath)
	v.SetDefault("namespace", DefaultNamespace)
	v.SetDefault("secret", defaultSecret)
	v.SetDefault("log-level", "warn")
	v.SetConfigName(".journal") // .yaml is implicit
	v.SetEnvPrefix("JOURNAL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("JOURNAL_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	v.AddConfigPath("$HOME")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("store: reading config file: %w", err)
		}
	}
	return newFileConfig(v)
}

func newFileConfig(v *viper.Viper) (*fileConfig, error) {
	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("store: expand path: %w", err)
	}
	loc := time.Local
	if tz := v.GetString("timezone"); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("store: timezone: %w", err)
		}
	}
	cfg := &fileConfig{
		Path:      path,
		DriverKey: strings.ToLower(v.GetString("driver")),
		DSNKey:    v.GetString("dsn"),
		NS:        v.GetString("namespace"),
		Key:       v.GetString("secret"),
		Loc:       loc,
		Level:     v.GetString("log-level"),
		Endpoint:  v.GetString("s3-endpoint"),
		Region:    v.GetString("s3-region"),
		AccessKey: v.GetString("s3-access-key"),
		SecretKey: v.GetString("s3-secret-key"),
	}
	if err := validateNamespace(cfg.NS); err != nil {
		return nil, err
	}
	return cfg, nil
}

type fileConfig struct {
	Path      string         `json:"path"`
	DriverKey string         `json:"driver"`
	DSNKey    string         `json:"dsn,omitempty"`
	NS        string         `json:"namespace"`
	Key       string         `json:"-"`
	Loc       *time.Location `json:"-"`
	Level     string         `json:"logLevel"`
	Endpoint  string         `json:"s3Endpoint,omitempty"`
	Region    string         `json:"s3Region,omitempty"`
	AccessKey string         `json:"-"`
	SecretKey string         `json:"-"`
}

func (f *fileConfig) BasePath() string    { return f.Path }
func (f *fileConfig) Driver() string      { return f.DriverKey }
func (f *fileConfig) Namespace() string   { return f.NS }
func (f *fileConfig) Secret() string      { return f.Key }
func (f *fileConfig) LogLevel() string    { return f.Level }
func (f *fileConfig) S3Endpoint() string  { return f.Endpoint }
func (f *fileConfig) S3Region() string    { return f.Region }
func (f *fileConfig) S3AccessKey() string { return f.AccessKey }
func (f *fileConfig) S3SecretKey() string { return f.SecretKey }

func (f *fileConfig) Location() *time.Location {
	if f.Loc == nil {
		return time.Local
	}
	return f.Loc
}

// DSN defaults to a database file next to the disk store for sqlite.
func (f *fileConfig) DSN() string {
	if f.DSNKey == "" && f.DriverKey == DriverSQLite {
		return filepath.Join(f.Path, "journal.db")
	}
	return f.DSNKey
}
