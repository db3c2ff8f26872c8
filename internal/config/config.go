// Package config loads runtime configuration from the environment.
//
// Command-line flags take precedence; the CLI only falls back to these values
// when a flag is left at its zero value.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// DefaultAddr is the listen address of the HTTP reader.
const DefaultAddr = "127.0.0.1:8080"

// Config holds the environment configuration.
type Config struct {
	// LogLevel is a slog level name: debug, info, warn or error.
	LogLevel string `env:"TALEWEAVE_LOG_LEVEL" envDefault:"info"`

	// LogFile, when set, also receives JSON log records.
	LogFile string `env:"TALEWEAVE_LOG_FILE"`

	// Journal is the SQLite path of the event journal. Empty disables it.
	Journal string `env:"TALEWEAVE_JOURNAL"`

	// Addr is the listen address of the HTTP reader.
	Addr string `env:"TALEWEAVE_ADDR" envDefault:"127.0.0.1:8080"`

	// Stylesheets are applied as external stylesheets on start.
	Stylesheets []string `env:"TALEWEAVE_STYLESHEETS" envSeparator:","`

	// MaxRenderDepth bounds nested story.render calls.
	MaxRenderDepth int `env:"TALEWEAVE_MAX_RENDER_DEPTH" envDefault:"32"`
}

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxRenderDepth < 1 {
		return Config{}, fmt.Errorf("TALEWEAVE_MAX_RENDER_DEPTH: must be positive, got %d", cfg.MaxRenderDepth)
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("TALEWEAVE_LOG_LEVEL: %w", err)
	}
	return l, nil
}
