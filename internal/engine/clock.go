package engine

import "sync/atomic"

// Clock is the monotonic revision counter for sketch mutations. Every
// applied mutation is stamped with a strictly increasing revision, which
// orders solve records without relying on wall-clock time.
//
// Thread-safety: atomic, though the single-writer loop means only one
// goroutine normally calls Next().
type Clock struct {
	rev atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming from a known revision, e.g. the
// highest revision already persisted for a store.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.rev.Store(start)
	return c
}

// Next returns the next revision number and advances the clock.
func (c *Clock) Next() int64 {
	return c.rev.Add(1)
}

// Current returns the latest issued revision without advancing.
func (c *Clock) Current() int64 {
	return c.rev.Load()
}
