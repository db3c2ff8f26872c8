package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is one scripted playthrough.
type Scenario struct {
	// Name uniquely identifies the scenario; it also names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// Story is the path of the story document. LoadScenario resolves it
	// relative to the scenario file.
	Story string `yaml:"story"`

	// State seeds the state store before the story starts.
	State map[string]any `yaml:"state,omitempty"`

	// StartError, when set, expects Start to fail with that error class
	// ("startup" or "script"). Steps are not run.
	StartError string `yaml:"start_error,omitempty"`

	// Steps are applied in order after the story starts.
	Steps []Step `yaml:"steps"`

	// Assertions are checked after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one reader action. Exactly one of Show, Click, Undo, Set and
// Render is set.
type Step struct {
	// Show navigates to a passage by name.
	Show string `yaml:"show,omitempty"`

	// Click follows the link with this text on the displayed passage.
	Click string `yaml:"click,omitempty"`

	// Undo steps back.
	Undo bool `yaml:"undo,omitempty"`

	// Set writes state keys, in key order.
	Set map[string]any `yaml:"set,omitempty"`

	// Render renders a passage without navigating.
	Render string `yaml:"render,omitempty"`

	// ExpectError is the error class the step must fail with:
	// lookup, render, startup or script.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Error classes accepted by Step.ExpectError and Scenario.StartError.
const (
	ErrorLookup  = "lookup"
	ErrorRender  = "render"
	ErrorStartup = "startup"
	ErrorScript  = "script"
)

// Assertion checks the outcome of a run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Passages is the expected history (history).
	Passages []string `yaml:"passages,omitempty"`

	// Visible is the expected undo control state (undo_visible).
	Visible *bool `yaml:"visible,omitempty"`

	// Text must appear in the displayed passage text (displayed_contains).
	Text string `yaml:"text,omitempty"`

	// Passage is the expected current passage (current_passage).
	Passage string `yaml:"passage,omitempty"`

	// Key and Value are the expected state entry (state).
	Key   string `yaml:"key,omitempty"`
	Value any    `yaml:"value,omitempty"`

	// Kind and Count are the expected number of journal events of a kind
	// (trace_count).
	Kind  string `yaml:"kind,omitempty"`
	Count int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertHistory           = "history"
	AssertUndoVisible       = "undo_visible"
	AssertDisplayedContains = "displayed_contains"
	AssertCurrentPassage    = "current_passage"
	AssertState             = "state"
	AssertTraceCount        = "trace_count"
)

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so typos fail loudly. The story path is resolved relative to the
// scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if !filepath.IsAbs(s.Story) {
		s.Story = filepath.Join(filepath.Dir(path), s.Story)
	}
	if _, err := os.Stat(s.Story); err != nil {
		return nil, fmt.Errorf("%s: story file not found: %s", path, s.Story)
	}
	return s, nil
}

// ParseScenario decodes and validates scenario YAML. Story paths are left
// as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Story == "" {
		return fmt.Errorf("story is required")
	}

	switch s.StartError {
	case "":
		if len(s.Steps) == 0 {
			return fmt.Errorf("steps list is required and must be non-empty")
		}
	case ErrorStartup, ErrorScript:
		if len(s.Steps) != 0 {
			return fmt.Errorf("steps must be empty when start_error is set")
		}
	default:
		return fmt.Errorf("start_error: unknown error class %q", s.StartError)
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	n := 0
	for _, set := range []bool{step.Show != "", step.Click != "", step.Undo, len(step.Set) > 0, step.Render != ""} {
		if set {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("exactly one of show, click, undo, set, render is required (got %d)", n)
	}

	switch step.ExpectError {
	case "", ErrorLookup, ErrorRender, ErrorStartup, ErrorScript:
		return nil
	default:
		return fmt.Errorf("expect_error: unknown error class %q", step.ExpectError)
	}
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("type is required")
	case AssertHistory:
		// An absent list asserts an empty history.
	case AssertUndoVisible:
		if a.Visible == nil {
			return fmt.Errorf("visible is required for undo_visible")
		}
	case AssertDisplayedContains:
		if a.Text == "" {
			return fmt.Errorf("text is required for displayed_contains")
		}
	case AssertCurrentPassage:
		if a.Passage == "" {
			return fmt.Errorf("passage is required for current_passage")
		}
	case AssertState:
		if a.Key == "" {
			return fmt.Errorf("key is required for state")
		}
	case AssertTraceCount:
		if a.Kind == "" {
			return fmt.Errorf("kind is required for trace_count")
		}
		if a.Count < 0 {
			return fmt.Errorf("count must be non-negative for trace_count")
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
