package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/taleweave/internal/display"
	"github.com/roach88/taleweave/internal/engine"
	"github.com/roach88/taleweave/internal/journal"
	"github.com/roach88/taleweave/internal/navigation"
	"github.com/roach88/taleweave/internal/render"
	"github.com/roach88/taleweave/internal/script"
	"github.com/roach88/taleweave/internal/state"
	"github.com/roach88/taleweave/internal/story"
	"github.com/roach88/taleweave/internal/testutil"
)

// Harness holds the components of one scenario run.
type Harness struct {
	runtime  *engine.Runtime
	page     *display.Page
	store    *state.Store
	journal  *journal.Journal
	recorder *journal.Recorder
	logger   *slog.Logger
}

// Option configures a run.
type Option func(*Harness)

// WithLogger sets the logger passed to the runtime. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// Run executes a scenario and returns its result. An error is returned only
// when the scenario cannot be run at all; step and assertion failures are
// reported in the Result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	doc, err := story.LoadFile(scenario.Story)
	if err != nil {
		return nil, fmt.Errorf("load story: %w", err)
	}
	return RunDocument(scenario, doc, opts...)
}

// RunDocument executes a scenario against an already loaded document.
func RunDocument(scenario *Scenario, doc *story.Document, opts ...Option) (*Result, error) {
	ctx := context.Background()

	j, err := journal.Open(journal.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("open in-memory journal: %w", err)
	}
	defer j.Close()

	h := &Harness{
		page:    display.NewPage(),
		store:   state.NewFrom(scenario.State),
		journal: j,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.recorder, err = journal.NewRecorder(ctx, j, doc,
		journal.WithIDGenerator(journal.NewFixedGenerator(scenario.Name)),
		journal.WithSequencer(testutil.NewDeterministicClock()),
		journal.WithLogger(h.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("start journal session: %w", err)
	}

	h.runtime = engine.New(doc, h.page,
		engine.WithStore(h.store),
		engine.WithLogger(h.logger),
	)
	h.recorder.Attach(h.runtime.Bus())

	result := NewResult()
	startErr := h.runtime.Start()
	switch {
	case scenario.StartError != "":
		checkExpectedError(result, "start", scenario.StartError, startErr)
	case startErr != nil:
		result.AddError(fmt.Sprintf("start: %v", startErr))
	default:
		for i, step := range scenario.Steps {
			h.executeStep(i, step, result)
		}
	}

	if err := h.collect(ctx, result); err != nil {
		return nil, err
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) executeStep(i int, step Step, result *Result) {
	var err error
	label := fmt.Sprintf("steps[%d]", i)

	switch {
	case step.Show != "":
		err = h.runtime.Show(step.Show)

	case step.Click != "":
		err = h.click(step.Click)

	case step.Undo:
		err = h.runtime.Undo()

	case len(step.Set) > 0:
		for _, k := range slices.Sorted(maps.Keys(step.Set)) {
			h.store.Set(k, step.Set[k])
		}

	case step.Render != "":
		var html string
		html, err = h.runtime.Render(step.Render)
		if err == nil {
			result.Renders = append(result.Renders, RenderRecord{
				Passage: step.Render,
				Text:    display.Text(html),
			})
		}
	}

	checkExpectedError(result, label, step.ExpectError, err)
}

// click follows the first link on the displayed passage whose text is text.
func (h *Harness) click(text string) error {
	for _, l := range render.Links(h.page.Content(display.MainSelector)) {
		if l.Text == text {
			return h.runtime.Show(l.Target)
		}
	}
	return &NoLinkError{Text: text}
}

func checkExpectedError(result *Result, label, want string, err error) {
	got := ErrorClass(err)
	switch {
	case want == "" && err != nil:
		result.AddError(fmt.Sprintf("%s: unexpected error: %v", label, err))
	case want != "" && err == nil:
		result.AddError(fmt.Sprintf("%s: expected %s error, got none", label, want))
	case want != got:
		result.AddError(fmt.Sprintf("%s: expected %s error, got %s: %v", label, want, got, err))
	}
}

// ErrorClass maps a runtime error to its scenario error class. Render
// failures are checked first: a template that renders a missing passage
// fails the render stage.
func ErrorClass(err error) string {
	switch {
	case err == nil:
		return ""
	case render.IsRenderError(err):
		return ErrorRender
	case story.IsLookupError(err):
		return ErrorLookup
	case navigation.IsStartupError(err):
		return ErrorStartup
	case engine.IsUserScriptError(err):
		return ErrorScript
	default:
		return "other"
	}
}

// collect copies the final runtime and journal state into result.
func (h *Harness) collect(ctx context.Context, result *Result) error {
	evs, err := h.journal.Events(ctx, h.recorder.Session().ID)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	for _, ev := range evs {
		result.Trace = append(result.Trace, TraceEvent{
			Seq:     ev.Seq,
			Kind:    ev.Kind.String(),
			Passage: ev.Passage,
		})
	}

	if history := h.runtime.History(); history != nil {
		result.History = history
	}
	if p, ok := h.runtime.Current(); ok {
		result.Current = p.Name
	}
	result.UndoVisible = h.page.UndoVisible()
	result.Displayed = h.page.Text(display.MainSelector)
	for _, k := range h.store.Keys() {
		v, _ := h.store.Get(k)
		result.State[k] = script.ToGo(v)
	}
	return nil
}
