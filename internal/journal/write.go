package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/taleweave/internal/events"
)

// Session is one reader session of one story.
type Session struct {
	ID          string
	StoryName   string
	Fingerprint string
	StartedAt   time.Time
}

// Event is one recorded bus event.
type Event struct {
	SessionID string
	Seq       int64
	Kind      events.Kind
	// Passage is the destination of a navigation; empty for undo.
	Passage string
}

// WriteSession inserts a session. Rewriting an existing id is a no-op.
func (j *Journal) WriteSession(ctx context.Context, s Session) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO sessions (id, story_name, fingerprint, started_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		s.ID,
		s.StoryName,
		s.Fingerprint,
		s.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteEvent appends an event. The session must exist and (session, seq)
// must be new.
func (j *Journal) WriteEvent(ctx context.Context, e Event) error {
	kind := e.Kind.String()
	if _, ok := events.ParseKind(kind); !ok {
		return fmt.Errorf("write event: unknown kind %s", kind)
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO events (session_id, seq, kind, passage)
		VALUES (?, ?, ?, ?)
	`,
		e.SessionID,
		e.Seq,
		kind,
		e.Passage,
	)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}
