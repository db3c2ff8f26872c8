package journal

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/taleweave/internal/events"
	"github.com/roach88/taleweave/internal/story"
)

// Recorder writes the events of one bus into one journal session.
//
// Write failures are logged, never returned to the bus: a broken journal
// must not break navigation.
type Recorder struct {
	journal *Journal
	session Session
	seq     Sequencer
	logger  *slog.Logger
	ctx     context.Context

	failures int
}

// RecorderOption configures a Recorder.
type RecorderOption func(*recorderConfig)

type recorderConfig struct {
	ids    IDGenerator
	seq    Sequencer
	logger *slog.Logger
	now    func() time.Time
}

// WithIDGenerator sets the session id source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) RecorderOption {
	return func(c *recorderConfig) {
		c.ids = g
	}
}

// WithSequencer sets the event sequence source. Default: a new Clock.
func WithSequencer(s Sequencer) RecorderOption {
	return func(c *recorderConfig) {
		c.seq = s
	}
}

// WithLogger sets the logger for write failures.
func WithLogger(l *slog.Logger) RecorderOption {
	return func(c *recorderConfig) {
		c.logger = l
	}
}

// WithNow sets the wall clock used for the session start time.
func WithNow(now func() time.Time) RecorderOption {
	return func(c *recorderConfig) {
		c.now = now
	}
}

// NewRecorder opens a session for doc in j. Call Attach to start recording.
func NewRecorder(ctx context.Context, j *Journal, doc *story.Document, opts ...RecorderOption) (*Recorder, error) {
	cfg := recorderConfig{
		ids:    UUIDv7Generator{},
		seq:    NewClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	session := Session{
		ID:          cfg.ids.Generate(),
		StoryName:   doc.Name,
		Fingerprint: story.Fingerprint(doc),
		StartedAt:   cfg.now(),
	}
	if err := j.WriteSession(ctx, session); err != nil {
		return nil, err
	}

	return &Recorder{
		journal: j,
		session: session,
		seq:     cfg.seq,
		logger:  cfg.logger.With("session", session.ID),
		ctx:     ctx,
	}, nil
}

// Session returns the recorded session.
func (r *Recorder) Session() Session {
	return r.session
}

// Failures counts events that could not be written.
func (r *Recorder) Failures() int {
	return r.failures
}

// Attach subscribes the recorder to every event kind of bus.
// Recording stops when the returned function is called.
func (r *Recorder) Attach(bus *events.Bus) (detach func()) {
	unsubs := []func(){
		bus.OnNavigation(func(ev events.Navigation) error {
			r.record(ev.Kind(), ev.Passage)
			return nil
		}),
		bus.OnUndo(func(ev events.Undo) error {
			r.record(ev.Kind(), "")
			return nil
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (r *Recorder) record(kind events.Kind, passage string) {
	ev := Event{
		SessionID: r.session.ID,
		Seq:       r.seq.Next(),
		Kind:      kind,
		Passage:   passage,
	}
	if err := r.journal.WriteEvent(r.ctx, ev); err != nil {
		r.failures++
		r.logger.Warn("journal write failed", "kind", kind, "seq", ev.Seq, "error", err)
		return
	}
	r.logger.Debug("journal event", "kind", kind, "seq", ev.Seq, "passage", passage)
}
