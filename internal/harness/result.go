package harness

import "fmt"

// TraceEvent is one journal event of a run.
type TraceEvent struct {
	Seq     int64  `json:"seq"`
	Kind    string `json:"kind"`
	Passage string `json:"passage,omitempty"`
}

// RenderRecord is the text output of a render step.
type RenderRecord struct {
	Passage string `json:"passage"`
	Text    string `json:"text"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when no step or assertion failed.
	Pass bool `json:"pass"`

	// Trace holds the journal events in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds step and assertion failure messages.
	Errors []string `json:"errors,omitempty"`

	History     []string       `json:"history"`
	Current     string         `json:"current_passage"`
	UndoVisible bool           `json:"undo_visible"`
	Displayed   string         `json:"displayed"`
	Renders     []RenderRecord `json:"renders,omitempty"`
	State       map[string]any `json:"state"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Errors:  []string{},
		History: []string{},
		State:   make(map[string]any),
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// NoLinkError is returned by a click step when the displayed passage has no
// link with the given text.
type NoLinkError struct {
	Text string
}

// Error implements the error interface.
func (e *NoLinkError) Error() string {
	return fmt.Sprintf("no link %q on the displayed passage", e.Text)
}
