package library

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LIBRARY_DB", "/tmp/lib.json")
	t.Setenv("LIBRARY_BACKEND", "JSON")
	t.Setenv("LIBRARY_TICK", "800ms")
	t.Setenv("LIBRARY_LOG_LEVEL", "debug")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/lib.json", cfg.DBPath)
	assert.Equal(t, BackendJSON, cfg.Backend)
	assert.Equal(t, 800*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"empty path", func(c *Config) { c.DBPath = " " }},
		{"unknown backend", func(c *Config) { c.Backend = "csv" }},
		{"zero tick", func(c *Config) { c.TickInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfigFromEnvBadTick(t *testing.T) {
	t.Setenv("LIBRARY_TICK", "soon")
	_, err := ConfigFromEnv()
	assert.Error(t, err)
}
