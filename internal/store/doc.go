// Package store records simulation runs in a SQLite database.
//
// A recording holds:
//   - Runs: the config, start time and, once finished, the summary
//   - Events: every printed line, keyed by (run_id, seq)
//   - Meals: meals eaten per actor at the end of the run
//
// # Ordering
//
// Events are ordered by seq, the position of the line in the output, never
// by elapsed time. Several lines can share an elapsed millisecond.
//
// # Canonical JSON
//
// Config and summary columns hold canonical JSON from ir.MarshalCanonical,
// so two recordings of the same run compare byte for byte.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// A recording is an export of a finished run. Nothing reads it back into a
// later simulation.
package store
