package journal_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/taleweave/internal/display"
	"github.com/roach88/taleweave/internal/engine"
	"github.com/roach88/taleweave/internal/events"
	"github.com/roach88/taleweave/internal/journal"
	"github.com/roach88/taleweave/internal/story"
	"github.com/roach88/taleweave/internal/testutil"
)

func openJournal(t *testing.T) *journal.Journal {
	t.Helper()
	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecorder_RecordsRuntimeSession(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t)
	doc := testutil.TwoPassageStory().Document(t)
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	rec, err := journal.NewRecorder(ctx, j, doc,
		journal.WithIDGenerator(journal.NewFixedGenerator("session-1")),
		journal.WithSequencer(testutil.NewDeterministicClock()),
		journal.WithNow(func() time.Time { return started }),
	)
	require.NoError(t, err)

	rt := engine.New(doc, display.NewPage())
	rec.Attach(rt.Bus())
	require.NoError(t, rt.Start())
	require.NoError(t, rt.Show("Next"))
	require.NoError(t, rt.Undo())
	require.Error(t, rt.Show("Missing"))

	sessions, err := j.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, journal.Session{
		ID:          "session-1",
		StoryName:   "Two Rooms",
		Fingerprint: story.Fingerprint(doc),
		StartedAt:   started,
	}, sessions[0])
	assert.Equal(t, rec.Session(), sessions[0])

	got, err := j.Events(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, []journal.Event{
		{SessionID: "session-1", Seq: 1, Kind: events.KindNavigation, Passage: "Next"},
		{SessionID: "session-1", Seq: 2, Kind: events.KindUndo},
	}, got)
	assert.Zero(t, rec.Failures())
}

func TestRecorder_Detach(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t)
	doc := testutil.TwoPassageStory().Document(t)

	rec, err := journal.NewRecorder(ctx, j, doc)
	require.NoError(t, err)

	bus := events.NewBus()
	detach := rec.Attach(bus)
	require.NoError(t, bus.Emit(events.Navigation{Passage: "Next"}))
	detach()
	require.NoError(t, bus.Emit(events.Navigation{Passage: "Start"}))

	n, err := j.CountEvents(ctx, rec.Session().ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, bus.SubscriberCount(events.KindNavigation))
}

func TestRecorder_WriteFailureDoesNotBreakNavigation(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t)
	doc := testutil.TwoPassageStory().Document(t)

	rec, err := journal.NewRecorder(ctx, j, doc)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	rt := engine.New(doc, display.NewPage())
	rec.Attach(rt.Bus())
	require.NoError(t, rt.Start())

	require.NoError(t, rt.Show("Next"))
	assert.Equal(t, []string{"Next"}, rt.History())
	assert.Equal(t, 1, rec.Failures())
}

func TestNewRecorder_SessionWriteFailure(t *testing.T) {
	j := openJournal(t)
	require.NoError(t, j.Close())

	_, err := journal.NewRecorder(context.Background(), j, testutil.TwoPassageStory().Document(t))
	require.Error(t, err)
	assert.False(t, errors.Is(err, context.Canceled))
}
