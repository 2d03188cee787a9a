package engine

import "sync/atomic"

// Clock is a monotonic logical clock numbering background tasks.
//
// Every task an engine starts gets the next generation. Results and failures
// carry their generation, so work finished by a task that has since been
// cancelled is recognised as stale and dropped.
//
// Thread-safety: Clock is safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next generation and advances the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the latest generation handed out, or 0 if none.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
