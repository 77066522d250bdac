package library

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Config holds the settings shared by the CLI entry points.
type Config struct {
	DBPath       string
	Backend      string
	TickInterval time.Duration
	FirstTick    time.Duration
	LogLevel     slog.Level
}

// DefaultConfig matches the behaviour of the desktop tool: an 800ms first
// tick, then one request every five seconds.
func DefaultConfig() Config {
	return Config{
		DBPath:       "library.db",
		Backend:      BackendSQLite,
		TickInterval: 5 * time.Second,
		FirstTick:    800 * time.Millisecond,
		LogLevel:     slog.LevelInfo,
	}
}

// ConfigFromEnv applies LIBRARY_DB, LIBRARY_BACKEND, LIBRARY_TICK,
// LIBRARY_FIRST_TICK and LIBRARY_LOG_LEVEL on top of the defaults.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if v := os.Getenv("LIBRARY_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("LIBRARY_BACKEND"); v != "" {
		cfg.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("LIBRARY_TICK"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("LIBRARY_TICK: %w", err)
		}
		cfg.TickInterval = d
	}
	if v := os.Getenv("LIBRARY_FIRST_TICK"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("LIBRARY_FIRST_TICK: %w", err)
		}
		cfg.FirstTick = d
	}
	if v := os.Getenv("LIBRARY_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return cfg, fmt.Errorf("LIBRARY_LOG_LEVEL: %w", err)
		}
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings that would otherwise fail late.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	switch c.Backend {
	case BackendSQLite, BackendJSON:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Backend)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	return nil
}
