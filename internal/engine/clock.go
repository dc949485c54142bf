package engine

import (
	"sync/atomic"
	"time"
)

// TimeSource supplies the millisecond timestamps used for meal times and
// elapsed log times. Implementations must be monotonic non-decreasing.
type TimeSource interface {
	NowMs() int64
}

// MonotonicClock reads Go's monotonic clock.
//
// Values are milliseconds since the clock was created, so they never jump
// with wall-clock adjustments.
type MonotonicClock struct {
	origin time.Time
}

// NewMonotonicClock creates a clock whose zero is now.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{origin: time.Now()}
}

// NowMs returns milliseconds since the clock was created.
func (c *MonotonicClock) NowMs() int64 {
	return time.Since(c.origin).Milliseconds()
}

// Clock is a monotonic logical clock for event ordering.
//
// Every printed line is stamped with a strictly increasing seq number from
// this clock, taken while the output lock is held, so seq order equals
// output order.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
