package engine

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/taleweave/internal/display"
	"github.com/roach88/taleweave/internal/events"
	"github.com/roach88/taleweave/internal/navigation"
	"github.com/roach88/taleweave/internal/render"
	"github.com/roach88/taleweave/internal/script"
	"github.com/roach88/taleweave/internal/state"
	"github.com/roach88/taleweave/internal/story"
)

// Runtime runs one story against one display.
type Runtime struct {
	doc      *story.Document
	repo     *story.Repository
	store    *state.Store
	bus      *events.Bus
	env      *script.Env
	pipeline *render.Pipeline
	nav      *navigation.Controller
	display  display.Display
	logger   *slog.Logger

	stylesheets []string
	maxDepth    int
	started     bool
}

var _ script.Host = (*Runtime)(nil)

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used by the runtime and its components.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = l
	}
}

// WithStore supplies the state store, for callers that seed state before
// Start or observe it from outside.
func WithStore(s *state.Store) Option {
	return func(r *Runtime) {
		r.store = s
	}
}

// WithStylesheets sets external stylesheet references attached by Start,
// before user scripts run.
func WithStylesheets(hrefs []string) Option {
	return func(r *Runtime) {
		r.stylesheets = append([]string(nil), hrefs...)
	}
}

// WithMaxRenderDepth bounds nested story.render calls from templates.
//
// Default: script.DefaultMaxDepth
func WithMaxRenderDepth(depth int) Option {
	return func(r *Runtime) {
		r.maxDepth = depth
	}
}

// New wires a runtime for doc drawing on disp. The runtime is idle until
// Start is called.
func New(doc *story.Document, disp display.Display, opts ...Option) *Runtime {
	r := &Runtime{
		doc:      doc,
		repo:     doc.Repository(),
		bus:      events.NewBus(),
		display:  disp,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxDepth: script.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.store == nil {
		r.store = state.New()
	}

	r.env = script.NewEnv(r.store, r,
		script.WithLogger(r.logger),
		script.WithMaxDepth(r.maxDepth),
	)
	r.pipeline = render.New(r.env)
	r.nav = navigation.New(r.repo, r.bus, r.pipeline, disp,
		navigation.WithLogger(r.logger),
	)
	return r
}

// Start runs the start sequence: story styles, external stylesheets, user
// scripts, then the start passage.
//
// A failing user script returns a *UserScriptError and an unresolved start
// passage a *navigation.StartupError; in both cases no passage is shown.
// Start runs at most once: any later call, even after a failed start,
// returns ErrAlreadyStarted.
func (r *Runtime) Start() error {
	if r.started {
		return ErrAlreadyStarted
	}
	r.started = true

	for _, css := range r.doc.Styles {
		r.display.AppendStyle(css)
	}
	r.ApplyExternalStyles(r.stylesheets)

	for i, src := range r.doc.Scripts {
		name := fmt.Sprintf("script%d.star", i)
		if err := r.env.Exec(name, src); err != nil {
			return &UserScriptError{Index: i, Err: err}
		}
	}

	if err := r.nav.Start(r.doc.StartNode); err != nil {
		return err
	}

	r.logger.Info("story started",
		"story", r.doc.Name,
		"passages", r.repo.Len(),
		"scripts", len(r.doc.Scripts),
		"styles", len(r.doc.Styles),
	)
	return nil
}

// Document returns the loaded story document.
func (r *Runtime) Document() *story.Document {
	return r.doc
}

// Repository returns the story's passages.
func (r *Runtime) Repository() *story.Repository {
	return r.repo
}

// Store returns the state store shared by templates and scripts.
func (r *Runtime) Store() *state.Store {
	return r.store
}

// Bus returns the runtime's event bus.
func (r *Runtime) Bus() *events.Bus {
	return r.bus
}

// PassagesByTag returns the passages carrying tag, in story order.
func (r *Runtime) PassagesByTag(tag string) []story.Passage {
	return r.repo.ByTag(tag)
}

// PassageByID returns the first passage with id.
func (r *Runtime) PassageByID(id int) (story.Passage, bool) {
	return r.repo.ByID(id)
}

// PassageByName returns the first passage called name.
func (r *Runtime) PassageByName(name string) (story.Passage, bool) {
	return r.repo.ByName(name)
}

// Show navigates to the passage called name and displays it.
func (r *Runtime) Show(name string) error {
	return r.nav.Navigate(name)
}

// Render returns the rendered HTML of the passage called name without
// changing what is displayed.
func (r *Runtime) Render(name string) (string, error) {
	p, ok := r.repo.ByName(name)
	if !ok {
		return "", story.NewNameLookupError(name)
	}
	return r.pipeline.Render(p)
}

// RenderToSelector renders the passage called name into the display region
// named by selector. Navigation state is not touched.
func (r *Runtime) RenderToSelector(name, selector string) error {
	html, err := r.Render(name)
	if err != nil {
		return err
	}
	r.display.SetContent(selector, html)
	return nil
}

// ApplyExternalStyles attaches one stylesheet reference per entry, in order.
func (r *Runtime) ApplyExternalStyles(hrefs []string) {
	for _, href := range hrefs {
		r.display.AppendStylesheet(href)
	}
}

// ApplyExternalStylesValue is ApplyExternalStyles for dynamically typed
// callers. v must be a []string or a []any holding only strings; nothing is
// attached otherwise.
func (r *Runtime) ApplyExternalStylesValue(v any) error {
	const op = "apply_external_styles"

	switch v := v.(type) {
	case []string:
		r.ApplyExternalStyles(v)
		return nil

	case []any:
		hrefs := make([]string, len(v))
		for i, e := range v {
			s, ok := e.(string)
			if !ok {
				return &InvalidArgumentError{
					Op:   op,
					Want: "list of strings",
					Got:  fmt.Sprintf("%s at index %d", typeName(e), i),
				}
			}
			hrefs[i] = s
		}
		r.ApplyExternalStyles(hrefs)
		return nil

	default:
		return &InvalidArgumentError{Op: op, Want: "list", Got: typeName(v)}
	}
}

// Undo steps the navigation history back by one.
func (r *Runtime) Undo() error {
	return r.nav.Undo()
}

// History returns the names of the passages navigated to, oldest first.
func (r *Runtime) History() []string {
	return r.nav.History()
}

// Current returns the displayed passage; ok is false before Start.
func (r *Runtime) Current() (story.Passage, bool) {
	return r.nav.Current()
}

// UndoVisible reports whether the undo control is shown.
func (r *Runtime) UndoVisible() bool {
	return r.nav.UndoVisible()
}

// State returns the navigation state.
func (r *Runtime) State() navigation.State {
	return r.nav.State()
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case int64, int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case map[string]any:
		return "dict"
	default:
		return fmt.Sprintf("%T", v)
	}
}
