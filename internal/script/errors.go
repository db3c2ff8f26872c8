package script

import (
	"errors"
	"fmt"
)

// TemplateError reports a malformed template.
type TemplateError struct {
	Line    int
	Message string
}

// Error implements the error interface.
func (e *TemplateError) Error() string {
	return fmt.Sprintf("template line %d: %s", e.Line, e.Message)
}

// EvalError reports a Starlark failure inside a template block or script.
type EvalError struct {
	// Source names what was evaluated: a passage name or a script label.
	Source string

	// Line is the template line of the failing block; 0 for scripts.
	Line int

	Err error
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying Starlark error.
func (e *EvalError) Unwrap() error {
	return e.Err
}

// ErrRenderDepth is returned when templates render each other too deeply,
// typically a passage that renders itself.
var ErrRenderDepth = errors.New("template render depth exceeded")
