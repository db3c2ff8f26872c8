// Package navigation implements the reader's navigation and undo state
// machine.
//
// A Controller starts Idle. Start shows the start passage and moves it to
// Showing. Navigate emits a navigation event, renders the destination and
// replaces the displayed passage. Undo emits an undo event whose handler pops
// the history; only when the history becomes empty does the display change,
// back to the start passage.
package navigation

import (
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/taleweave/internal/display"
	"github.com/roach88/taleweave/internal/events"
	"github.com/roach88/taleweave/internal/story"
)

// State is the controller's state.
type State int

const (
	StateIdle State = iota
	StateShowing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateShowing:
		return "showing"
	default:
		return "unknown"
	}
}

// Renderer renders a passage to HTML.
type Renderer interface {
	Render(p story.Passage) (string, error)
}

// Controller owns the navigation history and the current passage.
//
// INVARIANTS:
//   - history grows by one per navigation event and shrinks by one per undo
//     of a non-empty history
//   - current is only meaningful in StateShowing
type Controller struct {
	repo     *story.Repository
	bus      *events.Bus
	renderer Renderer
	display  display.Display
	logger   *slog.Logger

	state       State
	start       story.Passage
	current     story.Passage
	history     []string
	undoVisible bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// New creates an Idle controller and subscribes its handlers to bus.
func New(repo *story.Repository, bus *events.Bus, renderer Renderer, disp display.Display, opts ...Option) *Controller {
	c := &Controller{
		repo:     repo,
		bus:      bus,
		renderer: renderer,
		display:  disp,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		history:  []string{},
	}
	for _, opt := range opts {
		opt(c)
	}

	bus.OnNavigation(c.onNavigation)
	bus.OnUndo(c.onUndo)
	return c
}

// Start shows the passage with startID. History is not touched.
func (c *Controller) Start(startID int) error {
	p, ok := c.repo.ByID(startID)
	if !ok {
		return &StartupError{StartID: startID}
	}

	html, err := c.renderer.Render(p)
	if err != nil {
		return err
	}

	c.display.SetContent(display.MainSelector, html)
	c.start = p
	c.current = p
	c.state = StateShowing
	c.logger.Debug("started", "passage", p.Name, "id", p.ID)
	return nil
}

// Navigate moves the reader to the passage called name.
//
// The history entry is added before rendering; a failed render leaves it in
// place and the display unchanged. Navigate before Start returns
// ErrNotStarted.
func (c *Controller) Navigate(name string) error {
	if c.state == StateIdle {
		return ErrNotStarted
	}

	p, ok := c.repo.ByName(name)
	if !ok {
		return story.NewNameLookupError(name)
	}

	if err := c.bus.Emit(events.Navigation{Passage: name}); err != nil {
		return err
	}

	html, err := c.renderer.Render(p)
	if err != nil {
		return err
	}

	c.display.SetContent(display.MainSelector, html)
	c.current = p
	c.state = StateShowing
	c.logger.Debug("navigated", "passage", name, "history", len(c.history))
	return nil
}

// Undo emits an undo event.
func (c *Controller) Undo() error {
	return c.bus.Emit(events.Undo{})
}

func (c *Controller) onNavigation(ev events.Navigation) error {
	c.history = append(c.history, ev.Passage)
	if len(c.history) >= 1 {
		c.setUndoVisible(true)
	}
	return nil
}

// onUndo pops one history entry. The display only changes once the history
// is empty, when it is reset to the start passage.
func (c *Controller) onUndo(events.Undo) error {
	if len(c.history) > 0 {
		c.history = c.history[:len(c.history)-1]
	}
	if len(c.history) > 0 {
		c.logger.Debug("undo", "history", len(c.history))
		return nil
	}

	c.setUndoVisible(false)
	if c.state == StateIdle {
		return ErrNotStarted
	}

	html, err := c.renderer.Render(c.start)
	if err != nil {
		return err
	}
	c.display.SetContent(display.MainSelector, html)
	c.current = c.start
	c.logger.Debug("undo reset to start", "passage", c.start.Name)
	return nil
}

func (c *Controller) setUndoVisible(visible bool) {
	c.undoVisible = visible
	c.display.SetUndoVisible(visible)
}

// History returns a copy of the navigation history, oldest first.
func (c *Controller) History() []string {
	return slices.Clone(c.history)
}

// Current returns the displayed passage; ok is false while Idle.
func (c *Controller) Current() (p story.Passage, ok bool) {
	if c.state == StateIdle {
		return story.Passage{}, false
	}
	return c.current, true
}

// State returns the controller's state.
func (c *Controller) State() State {
	return c.state
}

// UndoVisible reports whether the undo control is shown.
func (c *Controller) UndoVisible() bool {
	return c.undoVisible
}
