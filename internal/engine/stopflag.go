package engine

import "sync"

// StopFlag is the process-wide "simulation stopped" flag.
//
// It is set at most once and never cleared. Readers poll IsSet before and
// after every blocking step; timed waits select on Done so they wake as soon
// as the flag is set instead of running to the end of their duration.
//
// Only the Logger trips the flag, under its output lock, so the flag
// transition and the death line form one critical section.
type StopFlag struct {
	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

// NewStopFlag creates an unset flag.
func NewStopFlag() *StopFlag {
	return &StopFlag{done: make(chan struct{})}
}

// IsSet reports whether the simulation has stopped.
func (f *StopFlag) IsSet() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// Done returns a channel that is closed once the flag is set.
func (f *StopFlag) Done() <-chan struct{} {
	return f.done
}

// trip sets the flag. Returns true only for the call that changed it.
func (f *StopFlag) trip() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return false
	}
	f.stopped = true
	close(f.done)
	return true
}
