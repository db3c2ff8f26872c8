package events

import "fmt"

// Kind identifies an event kind.
type Kind int

const (
	// KindNavigation is emitted when the reader moves to a passage.
	KindNavigation Kind = iota + 1

	// KindUndo is emitted when the reader asks to step back.
	KindUndo
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNavigation:
		return "navigation"
	case KindUndo:
		return "undo"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a wire name back to its Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "navigation":
		return KindNavigation, true
	case "undo":
		return KindUndo, true
	default:
		return 0, false
	}
}

// Event is a sealed interface: only Navigation and Undo implement it.
type Event interface {
	Kind() Kind
	event() // Sealed
}

// Navigation carries the destination passage name.
type Navigation struct {
	Passage string
}

// Kind implements Event.
func (Navigation) Kind() Kind { return KindNavigation }

func (Navigation) event() {}

// Undo has no payload.
type Undo struct{}

// Kind implements Event.
func (Undo) Kind() Kind { return KindUndo }

func (Undo) event() {}
