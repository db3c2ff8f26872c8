package render

import (
	"errors"
	"fmt"
)

// Stage identifies a pipeline stage.
type Stage string

const (
	StageExpressions Stage = "expressions"
	StageMarkup      Stage = "markup"
	StageLinks       Stage = "links"
)

// RenderError reports a failure in one pipeline stage.
// No partial output accompanies it.
type RenderError struct {
	Passage string
	Stage   Stage
	Err     error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("render %q: %s stage: %v", e.Passage, e.Stage, e.Err)
}

// Unwrap returns the stage error.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// IsRenderError reports whether err is or wraps a RenderError.
func IsRenderError(err error) bool {
	var re *RenderError
	return errors.As(err, &re)
}

// LinkError reports a malformed passage link.
type LinkError struct {
	Raw     string
	Message string
}

// Error implements the error interface.
func (e *LinkError) Error() string {
	return fmt.Sprintf("link [[%s]]: %s", e.Raw, e.Message)
}
