// Package logging builds the process logger: human-readable text on stderr,
// optionally fanned out to a JSON log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// Options configures New.
type Options struct {
	// Level is the minimum level for every handler. Default: info.
	Level slog.Leveler

	// Stderr receives text records. Default: os.Stderr.
	Stderr io.Writer

	// File, when set, is opened for append and receives JSON records.
	File string
}

// New returns a logger and a close function for the log file.
// The close function is never nil.
func New(opts Options) (*slog.Logger, func() error, error) {
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	text := slog.NewTextHandler(opts.Stderr, handlerOpts)
	if opts.File == "" {
		return slog.New(text), func() error { return nil }, nil
	}

	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	handler := slogmulti.Fanout(text, slog.NewJSONHandler(f, handlerOpts))
	return slog.New(handler), f.Close, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
