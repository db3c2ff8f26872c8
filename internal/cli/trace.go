package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/taleweave/internal/events"
	"github.com/roach88/taleweave/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Session string // session id; empty lists sessions
}

// SessionInfo is one session in the trace listing.
type SessionInfo struct {
	ID          string    `json:"id"`
	StoryName   string    `json:"story_name"`
	Fingerprint string    `json:"fingerprint"`
	StartedAt   time.Time `json:"started_at"`
	Events      int       `json:"events"`
}

// TraceEvent is one journal event in the trace timeline.
type TraceEvent struct {
	Seq     int64  `json:"seq"`
	Kind    string `json:"kind"`
	Passage string `json:"passage,omitempty"`
}

// TraceResult is the JSON payload of the trace command for one session.
type TraceResult struct {
	Session  SessionInfo  `json:"session"`
	Timeline []TraceEvent `json:"timeline"`
	History  []string     `json:"history"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show recorded reading sessions",
		Long: `Show reading sessions recorded in a journal.

Without --session, lists every session. With --session, prints the
session's event timeline and the history it leaves behind.

Examples:
  taleweave trace --journal ./journal.db
  taleweave trace --journal ./journal.db --session 0192...
  taleweave trace --journal ./journal.db --session 0192... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "session id to show")
	return cmd
}

func runTrace(cmd *cobra.Command, opts *TraceOptions) error {
	f := opts.formatter(cmd)
	if opts.Journal == "" {
		return NewExitError(ExitCommandError, "--journal (or TALEWEAVE_JOURNAL) is required")
	}

	j, err := journal.Open(opts.Journal)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeJournal, "open journal", err)
	}
	defer j.Close()

	ctx := cmd.Context()
	sessions, err := j.Sessions(ctx)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeJournal, "read sessions", err)
	}

	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		n, err := j.CountEvents(ctx, s.ID)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeJournal, "count events", err)
		}
		infos = append(infos, SessionInfo{
			ID:          s.ID,
			StoryName:   s.StoryName,
			Fingerprint: s.Fingerprint,
			StartedAt:   s.StartedAt,
			Events:      n,
		})
	}

	if opts.Session == "" {
		return f.Success(formatSessions(infos), infos)
	}

	var info *SessionInfo
	for i := range infos {
		if infos[i].ID == opts.Session {
			info = &infos[i]
			break
		}
	}
	if info == nil {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("session %q not found", opts.Session), nil)
	}

	evs, err := j.Events(ctx, info.ID)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeJournal, "read events", err)
	}

	result := TraceResult{
		Session:  *info,
		Timeline: make([]TraceEvent, 0, len(evs)),
		History:  replayHistory(evs),
	}
	for _, ev := range evs {
		result.Timeline = append(result.Timeline, TraceEvent{Seq: ev.Seq, Kind: ev.Kind.String(), Passage: ev.Passage})
	}
	return f.Success(formatTrace(result), result)
}

// replayHistory applies navigation and undo events to an empty history, the
// way the navigation controller does.
func replayHistory(evs []journal.Event) []string {
	history := []string{}
	for _, ev := range evs {
		switch ev.Kind {
		case events.KindNavigation:
			history = append(history, ev.Passage)
		case events.KindUndo:
			if len(history) > 0 {
				history = history[:len(history)-1]
			}
		}
	}
	return history
}

func formatSessions(infos []SessionInfo) string {
	if len(infos) == 0 {
		return "No sessions recorded.\n"
	}
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tSTORY\tSTARTED\tEVENTS")
	for _, s := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", s.ID, s.StoryName, s.StartedAt.Format(time.RFC3339), s.Events)
	}
	tw.Flush()
	return sb.String()
}

func formatTrace(r TraceResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Session %s\n", r.Session.ID)
	fmt.Fprintf(&sb, "Story:   %s (%s)\n", r.Session.StoryName, r.Session.Fingerprint)
	fmt.Fprintf(&sb, "Started: %s\n\n", r.Session.StartedAt.Format(time.RFC3339))

	fmt.Fprintln(&sb, "Timeline:")
	if len(r.Timeline) == 0 {
		fmt.Fprintln(&sb, "  (no events)")
	}
	for _, ev := range r.Timeline {
		if ev.Passage != "" {
			fmt.Fprintf(&sb, "  [%d] %s %s\n", ev.Seq, ev.Kind, ev.Passage)
		} else {
			fmt.Fprintf(&sb, "  [%d] %s\n", ev.Seq, ev.Kind)
		}
	}

	history := "(empty)"
	if len(r.History) > 0 {
		history = strings.Join(r.History, " > ")
	}
	fmt.Fprintf(&sb, "\nHistory: %s\n", history)
	return sb.String()
}
