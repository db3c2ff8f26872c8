package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/taleweave/internal/config"
	"github.com/roach88/taleweave/internal/engine"
	"github.com/roach88/taleweave/internal/events"
	"github.com/roach88/taleweave/internal/journal"
	"github.com/roach88/taleweave/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve <story.html>",
		Short: "Serve a story over HTTP",
		Long: `Serve a story over HTTP until interrupted.

All readers share the one running story.

Examples:
  taleweave serve story.html
  taleweave serve story.html --addr :9000 --journal ./journal.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (env TALEWEAVE_ADDR, default 127.0.0.1:8080)")
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, opts *ServeOptions, path string) error {
	f := opts.formatter(cmd)
	logger := opts.logger()

	doc, err := loadStory(f, path)
	if err != nil {
		return err
	}

	srvOpts := []server.Option{
		server.WithLogger(logger),
		server.WithRuntimeOptions(
			engine.WithStylesheets(opts.Config.Stylesheets),
			engine.WithMaxRenderDepth(maxDepth(opts.RootOptions)),
		),
	}

	if opts.Journal != "" {
		j, err := journal.Open(opts.Journal)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeJournal, "open journal", err)
		}
		defer func() {
			if err := j.Close(); err != nil {
				logger.Error("error closing journal", "error", err)
			}
		}()

		rec, err := journal.NewRecorder(ctx, j, doc, journal.WithLogger(logger))
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeJournal, "start journal session", err)
		}
		srvOpts = append(srvOpts, server.WithBusObserver(func(bus *events.Bus) {
			rec.Attach(bus)
		}))
		logger.Info("recording", "journal", opts.Journal, "session", rec.Session().ID)
	}

	srv, err := server.New(doc, srvOpts...)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeStartFailed, "start story", err)
	}

	addr := opts.Addr
	if addr == "" {
		addr = opts.Config.Addr
	}
	if addr == "" {
		addr = config.DefaultAddr
	}
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return WrapExitError(ExitCommandError, "serve", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}
