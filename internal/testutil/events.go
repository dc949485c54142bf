package testutil

import (
	"bytes"
	"sync"

	"github.com/erkkaervice/philosophers/internal/ir"
)

// EventCapture collects events handed to it. It implements engine.EventSink.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type EventCapture struct {
	mu     sync.Mutex
	events []ir.Event
}

// NewEventCapture creates an empty capture.
func NewEventCapture() *EventCapture {
	return &EventCapture{}
}

// Record appends ev.
func (c *EventCapture) Record(ev ir.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

// Events returns a copy of the captured events in arrival order.
func (c *EventCapture) Events() []ir.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ir.Event(nil), c.events...)
}

// Count returns how many captured events have the given kind.
func (c *EventCapture) Count(kind ir.EventKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, ev := range c.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// SyncBuffer is a bytes.Buffer that can be written and read concurrently,
// for capturing output while a simulation is still running.
type SyncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns the buffered output so far.
func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
