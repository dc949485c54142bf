// Package engine implements the dining philosophers simulation.
//
// N actors sit in a ring with one fork between each pair of neighbours. An
// actor repeatedly takes both adjacent forks, eats, releases them, sleeps
// and thinks. One that does not start a meal within the death deadline
// dies, which stops the simulation.
//
// ARCHITECTURE:
//
// One goroutine per actor, plus the monitor on the goroutine that called
// Simulation.Run. Run primes every actor with the same start time, starts
// the actors, monitors them and joins them all before returning.
//
// Termination:
// A single StopFlag ends the run. It is tripped by exactly one of:
//   - the monitor announcing a death (Logger.Announce)
//   - the monitor seeing every actor meet the meal quota (Logger.Halt)
//   - the caller's context being cancelled (Logger.Halt)
//
// Every wait in an actor (fork lock aside) races its timer against the
// flag, so all actors exit promptly once it is set.
//
// CRITICAL PATTERNS:
//
// Fork ordering:
// Every actor locks the lower-indexed fork first. The wait graph over forks
// is then acyclic and the ring cannot deadlock; New checks this with
// WaitCycle before building actors.
//
// No post-mortem output:
// All lines go through one output lock in Logger. The flag is re-checked
// under that lock, and the death line trips the flag under the same lock,
// so nothing can be printed after it.
//
// Lock order:
//
//	actor meal lock -> output lock -> StopFlag lock
//
// Nothing acquires a lock to the left while holding one to the right.
package engine
