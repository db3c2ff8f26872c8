package journal

import "sync/atomic"

// Sequencer hands out strictly increasing event sequence numbers.
type Sequencer interface {
	Next() int64
}

// Clock is a monotonic logical clock. The zero value starts at 0 and is
// ready to use; it is safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

var _ Sequencer = (*Clock)(nil)

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose first Next returns start+1, for resuming
// a session's numbering.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next advances the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
