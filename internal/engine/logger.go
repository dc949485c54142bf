package engine

import (
	"io"
	"sync"

	"github.com/erkkaervice/philosophers/internal/ir"
)

// EventSink receives a copy of every printed event.
//
// Record is called with the output lock held, in output order. It must not
// block and must not call back into the Logger.
type EventSink interface {
	Record(ev ir.Event)
}

// MultiSink fans each event out to several sinks in order.
func MultiSink(sinks ...EventSink) EventSink {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return multiSink(sinks)
}

type multiSink []EventSink

func (m multiSink) Record(ev ir.Event) {
	for _, s := range m {
		s.Record(ev)
	}
}

// Logger serializes event lines to the output stream.
//
// All output goes through one exclusive lock. Under that lock the Logger
// re-checks the StopFlag and drops the line if the simulation has stopped,
// which keeps actor lines from appearing after the death announcement.
// Announce and Halt trip the flag under the same lock.
//
// Lock order: output lock, then StopFlag lock. Nothing takes the output
// lock while holding the StopFlag lock.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	clock TimeSource
	stop  *StopFlag
	seq   *Clock
	sink  EventSink
	start int64
	err   error
}

// NewLogger creates a logger writing to out. sink may be nil.
func NewLogger(out io.Writer, clock TimeSource, stop *StopFlag, sink EventSink) *Logger {
	return &Logger{
		out:   out,
		clock: clock,
		stop:  stop,
		seq:   NewClock(),
		sink:  sink,
	}
}

// begin fixes the timestamp elapsed times are measured from.
func (l *Logger) begin(start int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.start = start
}

// Log prints "<elapsed_ms> <actor_id> <message>" unless the simulation has
// stopped. Returns false if the line was suppressed.
func (l *Logger) Log(actor int, kind ir.EventKind) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stop.IsSet() {
		return false
	}
	l.emit(actor, kind)
	return true
}

// Announce sets the StopFlag and prints the line as one critical section.
// Returns false, printing nothing, if the flag was already set.
func (l *Logger) Announce(actor int, kind ir.EventKind) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.stop.trip() {
		return false
	}
	l.emit(actor, kind)
	return true
}

// Halt sets the StopFlag without printing. Returns true only for the call
// that set it.
func (l *Logger) Halt() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stop.trip()
}

// Lines returns the number of lines printed so far.
func (l *Logger) Lines() int64 {
	return l.seq.Current()
}

// Err returns the first write error, if any.
func (l *Logger) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// emit writes one line. Caller must hold l.mu.
// Elapsed time is read under the lock so printed times never go backwards.
func (l *Logger) emit(actor int, kind ir.EventKind) {
	elapsed := l.clock.NowMs() - l.start
	if elapsed < 0 {
		elapsed = 0
	}
	ev := ir.Event{
		Seq:       l.seq.Next(),
		ElapsedMs: elapsed,
		Actor:     actor,
		Kind:      kind,
	}
	if _, err := io.WriteString(l.out, ev.Line()+"\n"); err != nil && l.err == nil {
		l.err = err
	}
	if l.sink != nil {
		l.sink.Record(ev)
	}
}
