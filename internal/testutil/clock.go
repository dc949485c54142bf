package testutil

import "sync"

// ManualClock is a millisecond time source that only moves when told to.
//
// It implements engine.TimeSource, so monitor and logger tests can place
// meals and deadlines at exact times instead of sleeping.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu  sync.Mutex
	now int64
}

// NewManualClock creates a clock reading start.
func NewManualClock(start int64) *ManualClock {
	return &ManualClock{now: start}
}

// NowMs returns the current reading.
func (c *ManualClock) NowMs() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by ms and returns the new reading.
// Negative values are ignored; the clock never goes backwards.
func (c *ManualClock) Advance(ms int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ms > 0 {
		c.now += ms
	}
	return c.now
}

// Set moves the clock to ms if that is not in the past.
func (c *ManualClock) Set(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ms > c.now {
		c.now = ms
	}
}
