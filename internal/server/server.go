// Package server exposes one story runtime over HTTP.
//
// The server owns a single runtime and a single in-memory page; every request
// is applied under one mutex, so concurrent readers see a consistent story
// but share it.
//
// Routes:
//
//	GET  /                  the displayed page
//	POST /navigate          follow a link (form field "passage")
//	POST /undo              step back
//	GET  /render?passage=   render a passage without navigating
//	GET  /passages?tag=     list passages, optionally by tag
//	GET  /state             the state store as JSON
package server

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/taleweave/internal/display"
	"github.com/roach88/taleweave/internal/engine"
	"github.com/roach88/taleweave/internal/events"
	"github.com/roach88/taleweave/internal/story"
)

//go:embed page.html
var pageSource string

var pageTemplate = template.Must(template.New("page").Parse(pageSource))

// ShutdownTimeout bounds graceful shutdown in Serve.
const ShutdownTimeout = 5 * time.Second

// Server serves one runtime.
type Server struct {
	mu      sync.Mutex
	runtime *engine.Runtime
	page    *display.Page
	title   string

	logger      *slog.Logger
	runtimeOpts []engine.Option
	observers   []func(*events.Bus)
	router      chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and runtime logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithRuntimeOptions passes options through to engine.New.
func WithRuntimeOptions(opts ...engine.Option) Option {
	return func(s *Server) {
		s.runtimeOpts = append(s.runtimeOpts, opts...)
	}
}

// WithBusObserver is called with the runtime's bus before the story starts,
// e.g. to attach a journal recorder.
func WithBusObserver(fn func(*events.Bus)) Option {
	return func(s *Server) {
		s.observers = append(s.observers, fn)
	}
}

// New builds the runtime for doc and starts the story.
func New(doc *story.Document, opts ...Option) (*Server, error) {
	s := &Server{
		page:   display.NewPage(),
		title:  doc.Name,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	rtOpts := append([]engine.Option{engine.WithLogger(s.logger)}, s.runtimeOpts...)
	s.runtime = engine.New(doc, s.page, rtOpts...)
	for _, fn := range s.observers {
		fn(s.runtime.Bus())
	}
	if err := s.runtime.Start(); err != nil {
		return nil, fmt.Errorf("start story: %w", err)
	}

	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handlePage)
	r.Post("/navigate", s.handleNavigate)
	r.Post("/undo", s.handleUndo)
	r.Get("/render", s.handleRender)
	r.Get("/passages", s.handlePassages)
	r.Get("/state", s.handleState)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start),
		)
	})
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	s.logger.Info("serving", "addr", ln.Addr().String(), "story", s.title)
	return g.Wait()
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}
