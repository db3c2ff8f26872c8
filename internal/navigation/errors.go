package navigation

import (
	"errors"
	"fmt"
)

// ErrNotStarted is returned when navigation or undo runs before a start
// passage was shown.
var ErrNotStarted = errors.New("navigation not started")

// StartupError reports that the start passage could not be resolved.
// It is fatal: nothing has been displayed.
type StartupError struct {
	StartID int
}

// Error implements the error interface.
func (e *StartupError) Error() string {
	return fmt.Sprintf("start passage id %d not found", e.StartID)
}

// IsStartupError reports whether err is or wraps a StartupError.
func IsStartupError(err error) bool {
	var se *StartupError
	return errors.As(err, &se)
}
