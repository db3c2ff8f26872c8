package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/taleweave/internal/config"
	"github.com/roach88/taleweave/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Journal string // SQLite journal path; empty disables recording
	LogFile string // JSON log file; empty disables it

	// Config is the environment configuration, loaded before every command.
	Config config.Config

	// Logger is built from the flags and Config before every command.
	Logger *slog.Logger

	closeLog func() error
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the taleweave CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "taleweave",
		Short: "taleweave - interactive fiction runtime",
		Long:  "Play, render, check and serve published Twine stories.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.closeLog != nil {
				return opts.closeLog()
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Journal, "journal", "", "record navigation to this SQLite journal (env TALEWEAVE_JOURNAL)")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "also write JSON logs to this file (env TALEWEAVE_LOG_FILE)")

	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewPassagesCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

// setup loads the environment configuration and builds the logger. Flags
// override the environment.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}
	o.Config = cfg

	if o.Journal == "" {
		o.Journal = cfg.Journal
	}
	if o.LogFile == "" {
		o.LogFile = cfg.LogFile
	}

	level, err := cfg.Level()
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}
	if o.Verbose {
		level = slog.LevelDebug
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:  level,
		Stderr: cmd.ErrOrStderr(),
		File:   o.LogFile,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "set up logging", err)
	}
	o.Logger = logger
	o.closeLog = closeLog
	return nil
}

// logger returns the configured logger, or a discard logger when a command
// runs without the root's pre-run hook (as in package tests).
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.Discard()
	}
	return o.Logger
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
