package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/erkkaervice/philosophers/internal/ir"
)

// EventWriter persists events of a run. Implemented by store.Store.
type EventWriter interface {
	WriteEvent(ctx context.Context, runID string, ev ir.Event) error
}

// Recorder is an EventSink that persists events without slowing the actors.
//
// Record only appends to an unbounded queue. A single writer goroutine,
// started by Start, drains the queue into the EventWriter in seq order.
//
// ERROR HANDLING: a failed write is logged and remembered; draining
// continues so one bad row does not drop the rest of the log. Close returns
// the first error.
type Recorder struct {
	runID  string
	writer EventWriter
	queue  *eventQueue
	done   chan struct{}

	mu     sync.Mutex
	events []ir.Event
	err    error
}

// NewRecorder creates a recorder for runID.
func NewRecorder(runID string, w EventWriter) *Recorder {
	return &Recorder{
		runID:  runID,
		writer: w,
		queue:  newEventQueue(),
		done:   make(chan struct{}),
	}
}

// Record implements EventSink.
func (r *Recorder) Record(ev ir.Event) {
	r.queue.Enqueue(ev)
}

// Start launches the writer goroutine.
func (r *Recorder) Start(ctx context.Context) {
	go r.drain(ctx)
}

// Close stops accepting events, waits until every queued event has been
// written and returns the first write error.
func (r *Recorder) Close() error {
	r.queue.Close()
	<-r.done

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Events returns the events written so far, in seq order.
func (r *Recorder) Events() []ir.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ir.Event(nil), r.events...)
}

func (r *Recorder) drain(ctx context.Context) {
	defer close(r.done)

	for {
		ev, ok := r.queue.TryDequeue()
		if ok {
			r.write(ctx, ev)
			continue
		}

		// The signal channel closes with the queue; an empty closed queue
		// ends the loop.
		if _, open := <-r.queue.Wait(); !open && r.queue.Len() == 0 {
			return
		}
	}
}

func (r *Recorder) write(ctx context.Context, ev ir.Event) {
	err := r.writer.WriteEvent(ctx, r.runID, ev)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		slog.Error("failed to record event",
			"run", r.runID,
			"seq", ev.Seq,
			"error", err,
		)
		if r.err == nil {
			r.err = fmt.Errorf("record event %d: %w", ev.Seq, err)
		}
		return
	}
	r.events = append(r.events, ev)
}
