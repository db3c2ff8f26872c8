// Package journal records reader sessions in SQLite.
//
// The journal is an append-only log of what a reader did: one row per
// session and one row per navigation or undo event. It is written while a
// story runs and read back only by tooling (the trace command and the test
// harness); a runtime never restores state from it.
//
// # Ordering
//
// Events are stamped with a logical sequence number from a Sequencer, never
// with wall-clock time. Reads order by (seq, rowid), so a replayed scenario
// yields identical output.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait on lock contention
//   - foreign_keys=ON: events must reference a session
//   - one open connection: SQLite has a single writer
package journal
