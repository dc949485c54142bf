// Package ir provides the shared data types for the philosophers simulation.
//
// This package contains type definitions and serialization helpers only.
// All other internal packages import ir; ir imports nothing internal. This
// keeps the event and run types usable by the engine, the store, the harness
// and the CLI without circular dependencies.
//
// Key design constraints:
//   - Times are integer milliseconds (int64), never floats
//   - An Event is exactly one printed log line; Seq preserves output order
//   - All JSON tags use snake_case
package ir
