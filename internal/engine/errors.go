package engine

import (
	"errors"
	"fmt"
)

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("story already started")

// UserScriptError reports a failing user script. It halts Start.
type UserScriptError struct {
	// Index is the zero-based position of the script in the document.
	Index int

	Err error
}

// Error implements the error interface.
func (e *UserScriptError) Error() string {
	return fmt.Sprintf("user script %d: %v", e.Index, e.Err)
}

// Unwrap returns the script failure.
func (e *UserScriptError) Unwrap() error {
	return e.Err
}

// IsUserScriptError reports whether err is or wraps a UserScriptError.
func IsUserScriptError(err error) bool {
	var ue *UserScriptError
	return errors.As(err, &ue)
}

// InvalidArgumentError reports an argument of the wrong type passed to a
// runtime operation from script code.
type InvalidArgumentError struct {
	Op   string
	Want string
	Got  string
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: want %s, got %s", e.Op, e.Want, e.Got)
}

// IsInvalidArgumentError reports whether err is or wraps an
// InvalidArgumentError.
func IsInvalidArgumentError(err error) bool {
	var ie *InvalidArgumentError
	return errors.As(err, &ie)
}
