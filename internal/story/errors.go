package story

import (
	"errors"
	"fmt"
)

// LookupKey identifies which key a failed lookup used.
type LookupKey string

const (
	// LookupByName means the passage was requested by name.
	LookupByName LookupKey = "name"

	// LookupByID means the passage was requested by id.
	LookupByID LookupKey = "id"
)

// LookupError reports that a requested passage does not exist.
// It is recoverable: callers may catch it and carry on.
type LookupError struct {
	By   LookupKey
	Name string
	ID   int
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	if e.By == LookupByID {
		return fmt.Sprintf("passage not found: id %d", e.ID)
	}
	return fmt.Sprintf("passage not found: %q", e.Name)
}

// NewNameLookupError creates a LookupError for a missing passage name.
func NewNameLookupError(name string) *LookupError {
	return &LookupError{By: LookupByName, Name: name}
}

// NewIDLookupError creates a LookupError for a missing passage id.
func NewIDLookupError(id int) *LookupError {
	return &LookupError{By: LookupByID, ID: id}
}

// IsLookupError returns true if err is or wraps a LookupError.
func IsLookupError(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}
