package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/taleweave/internal/events"
)

// Sessions returns every session, oldest first.
// Returns an empty slice (not nil) when the journal is empty.
func (j *Journal) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, story_name, fingerprint, started_at
		FROM sessions
		ORDER BY started_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var s Session
		var started string
		if err := rows.Scan(&s.ID, &s.StoryName, &s.Fingerprint, &started); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("parse started_at of session %s: %w", s.ID, err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Events returns the events of one session in seq order.
// Returns an empty slice (not nil) when the session has none.
func (j *Journal) Events(ctx context.Context, sessionID string) ([]Event, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session_id, seq, kind, passage
		FROM events
		WHERE session_id = ?
		ORDER BY seq ASC, rowid ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	evs := []Event{}
	for rows.Next() {
		var e Event
		var kind string
		if err := rows.Scan(&e.SessionID, &e.Seq, &kind, &e.Passage); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		k, ok := events.ParseKind(kind)
		if !ok {
			return nil, fmt.Errorf("event %s/%d: unknown kind %q", e.SessionID, e.Seq, kind)
		}
		e.Kind = k
		evs = append(evs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return evs, nil
}

// CountEvents returns the number of events recorded for a session.
func (j *Journal) CountEvents(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
