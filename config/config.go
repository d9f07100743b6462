// ABOUTME: Runtime configuration from the environment and an optional .env file
// ABOUTME: Selects the storage backend, data paths, id format and log level
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendCharm  = "charm"
	BackendLocal  = "local"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is filled from IMMO_* and GOOGLE_* variables.
type Config struct {
	Backend  string `env:"IMMO_BACKEND" envDefault:"charm"`
	DataDir  string `env:"IMMO_DATA_DIR"`
	DBPath   string `env:"IMMO_DB_PATH"`
	IDFormat string `env:"IMMO_ID_FORMAT" envDefault:"uuid"`
	LogLevel string `env:"IMMO_LOG_LEVEL" envDefault:"info"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
}

// Load reads the given .env files (or ./.env when none are given) and parses the environment.
// Missing .env files are ignored; variables already set win over file values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.IDFormat = strings.ToLower(strings.TrimSpace(c.IDFormat))
	if c.DataDir == "" {
		c.DataDir = filepath.Join(xdg.DataHome, "immo")
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "immo.db")
	}
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendCharm, BackendLocal, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("%w: unknown backend %q (want charm, local, sqlite or memory)", ErrInvalidConfig, c.Backend)
	}
	switch c.IDFormat {
	case "uuid", "ulid":
	default:
		return fmt.Errorf("%w: unknown id format %q (want uuid or ulid)", ErrInvalidConfig, c.IDFormat)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// LocalDir is where the offline badger backend keeps its files.
func (c *Config) LocalDir() string {
	return filepath.Join(c.DataDir, "kv")
}

// HasGoogleCredentials reports whether OAuth client credentials are configured.
func (c *Config) HasGoogleCredentials() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// ParseLogLevel maps debug, info, warn, error and fatal to charm log levels.
func ParseLogLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	case "fatal":
		return log.FatalLevel, nil
	}
	return log.InfoLevel, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, s)
}

// ApplyLogging sets the level of the package-level logger.
func (c *Config) ApplyLogging() {
	level, _ := ParseLogLevel(c.LogLevel)
	log.SetLevel(level)
	log.SetReportTimestamp(level == log.DebugLevel)
}
