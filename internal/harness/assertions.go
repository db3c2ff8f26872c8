package harness

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			if ev.Passage != "" {
				fmt.Fprintf(&buf, "  [%d] %s %s\n", ev.Seq, ev.Kind, ev.Passage)
			} else {
				fmt.Fprintf(&buf, "  [%d] %s\n", ev.Seq, ev.Kind)
			}
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns the
// failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertHistory:
			err = assertHistory(result, a)
		case AssertUndoVisible:
			err = assertUndoVisible(result, a)
		case AssertDisplayedContains:
			err = assertDisplayedContains(result, a)
		case AssertCurrentPassage:
			err = assertCurrentPassage(result, a)
		case AssertState:
			err = assertState(result, a)
		case AssertTraceCount:
			err = assertTraceCount(result, a)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func assertHistory(result *Result, a Assertion) error {
	want := a.Passages
	if want == nil {
		want = []string{}
	}
	if slices.Equal(want, result.History) {
		return nil
	}
	return &AssertionError{
		Type:     AssertHistory,
		Expected: fmt.Sprintf("%q", want),
		Actual:   fmt.Sprintf("%q", result.History),
		Trace:    result.Trace,
	}
}

func assertUndoVisible(result *Result, a Assertion) error {
	if *a.Visible == result.UndoVisible {
		return nil
	}
	return &AssertionError{
		Type:     AssertUndoVisible,
		Expected: fmt.Sprintf("undo control visible=%t", *a.Visible),
		Actual:   fmt.Sprintf("visible=%t", result.UndoVisible),
		Trace:    result.Trace,
	}
}

func assertDisplayedContains(result *Result, a Assertion) error {
	if strings.Contains(result.Displayed, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertDisplayedContains,
		Expected: fmt.Sprintf("displayed text containing %q", a.Text),
		Actual:   fmt.Sprintf("%q", result.Displayed),
	}
}

func assertCurrentPassage(result *Result, a Assertion) error {
	if result.Current == a.Passage {
		return nil
	}
	return &AssertionError{
		Type:     AssertCurrentPassage,
		Expected: a.Passage,
		Actual:   fmt.Sprintf("%q", result.Current),
		Trace:    result.Trace,
	}
}

// assertState compares a state entry. A nil value expects the key to be
// absent or hold None.
func assertState(result *Result, a Assertion) error {
	got, ok := result.State[a.Key]
	if !ok {
		got = nil
	}
	if stateValuesEqual(a.Value, got) {
		return nil
	}
	actual := "absent"
	if ok {
		actual = fmt.Sprintf("%v (%T)", got, got)
	}
	return &AssertionError{
		Type:     AssertState,
		Expected: fmt.Sprintf("%s = %v", a.Key, a.Value),
		Actual:   actual,
	}
}

func assertTraceCount(result *Result, a Assertion) error {
	count := 0
	for _, ev := range result.Trace {
		if ev.Kind == a.Kind {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d %s events", a.Count, a.Kind),
		Actual:   fmt.Sprintf("%d events", count),
		Trace:    result.Trace,
	}
}

// stateValuesEqual compares a YAML-decoded expectation with a state value.
// Integers compare by value whatever their Go width.
func stateValuesEqual(expected, actual any) bool {
	return reflect.DeepEqual(normalize(expected), normalize(actual))
}

func normalize(v any) any {
	switch v := v.(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return float64(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = normalize(e)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = e
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = normalize(e)
		}
		return out
	default:
		return v
	}
}
