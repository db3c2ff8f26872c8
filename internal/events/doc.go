// Package events implements the synchronous event bus that coordinates
// navigation and undo.
//
// The set of events is closed: Navigation and Undo are the only
// implementations of Event. Emit calls every subscriber of the event's kind in
// registration order and returns only after all of them have finished,
// including any events they emit themselves. A re-entrant Emit runs to
// completion before control returns to the remaining subscribers of the outer
// Emit.
//
// There is no queue and no goroutine. A Bus is not safe for concurrent use.
package events
