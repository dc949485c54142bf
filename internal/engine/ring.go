package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Fork is one lockable resource of the ring. Its identity is its ring index.
//
// Besides the mutex a Fork records which actor holds it. Taking a fork that
// is recorded as held, or releasing one held by someone else, means mutual
// exclusion is broken; both panic with a FORK_CORRUPTED SimulationError.
type Fork struct {
	index  int
	mu     sync.Mutex
	holder atomic.Int64
}

// Index returns the fork's ring position.
func (f *Fork) Index() int {
	return f.index
}

// Holder returns the id of the actor holding the fork, 0 if it is free.
func (f *Fork) Holder() int {
	return int(f.holder.Load())
}

func (f *Fork) lock(actor int) {
	f.mu.Lock()
	if !f.holder.CompareAndSwap(0, int64(actor)) {
		panic(newForkCorruptedError(f.index, f.Holder(), actor))
	}
}

func (f *Fork) unlock(actor int) {
	if !f.holder.CompareAndSwap(int64(actor), 0) {
		panic(newForkCorruptedError(f.index, f.Holder(), actor))
	}
	f.mu.Unlock()
}

// Ring holds the forks in seat order.
type Ring struct {
	forks []*Fork
}

// NewRing creates n forks. A ring of one actor has exactly one fork.
func NewRing(n int) (*Ring, error) {
	if n < 1 {
		return nil, fmt.Errorf("ring needs at least one fork, got %d", n)
	}
	forks := make([]*Fork, n)
	for i := range forks {
		forks[i] = &Fork{index: i}
	}
	return &Ring{forks: forks}, nil
}

// Len returns the number of forks.
func (r *Ring) Len() int {
	return len(r.forks)
}

// Fork returns the fork at index i.
func (r *Ring) Fork(i int) *Fork {
	return r.forks[i]
}

// Seat returns the forks adjacent to seat i: left = ring[i],
// right = ring[(i+1) mod n]. With one seat both are the same fork.
func (r *Ring) Seat(i int) (left, right *Fork) {
	n := len(r.forks)
	return r.forks[i%n], r.forks[(i+1)%n]
}

// Ordered returns the two forks lower ring index first.
//
// Every actor locks in this order. A total order on fork indices means the
// wait-for graph can never contain a cycle, so the ring cannot deadlock.
func Ordered(left, right *Fork) (first, second *Fork) {
	if right.index < left.index {
		return right, left
	}
	return left, right
}

// Pair is the set of forks an actor currently holds, in acquisition order.
type Pair struct {
	actor int
	forks [2]*Fork
	held  int
}

func newPair(actor int) *Pair {
	return &Pair{actor: actor}
}

// take locks f and appends it to the pair.
func (p *Pair) take(f *Fork) {
	f.lock(p.actor)
	p.forks[p.held] = f
	p.held++
}

// Held returns how many forks the pair holds.
func (p *Pair) Held() int {
	return p.held
}

// Release unlocks held forks in reverse acquisition order.
// Safe to call more than once.
func (p *Pair) Release() {
	for p.held > 0 {
		p.held--
		p.forks[p.held].unlock(p.actor)
		p.forks[p.held] = nil
	}
}
