package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Empty(t, cfg.LogFile)
	assert.Empty(t, cfg.Journal)
	assert.Empty(t, cfg.Stylesheets)
	assert.Equal(t, 32, cfg.MaxRenderDepth)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadFrom_Values(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"TALEWEAVE_LOG_LEVEL":        "DEBUG",
		"TALEWEAVE_LOG_FILE":         "/tmp/taleweave.log",
		"TALEWEAVE_JOURNAL":          "journal.db",
		"TALEWEAVE_ADDR":             ":9090",
		"TALEWEAVE_STYLESHEETS":      "base.css,theme.css",
		"TALEWEAVE_MAX_RENDER_DEPTH": "8",
	})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/taleweave.log", cfg.LogFile)
	assert.Equal(t, "journal.db", cfg.Journal)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"base.css", "theme.css"}, cfg.Stylesheets)
	assert.Equal(t, 8, cfg.MaxRenderDepth)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad level", map[string]string{"TALEWEAVE_LOG_LEVEL": "loud"}, "TALEWEAVE_LOG_LEVEL"},
		{"bad depth", map[string]string{"TALEWEAVE_MAX_RENDER_DEPTH": "deep"}, "parse env"},
		{"zero depth", map[string]string{"TALEWEAVE_MAX_RENDER_DEPTH": "0"}, "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.env)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
