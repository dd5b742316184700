// Package store provides SQLite-backed durable storage for the registry's
// event feed. Store implements feed.Log.
//
// The registry keeps no separate records table: its state is a pure
// function of the event log, so a record and the event that produced it
// are committed by the same INSERT.
//
// # Guarantees enforced by the schema
//
//   - seq is the primary key; Append refuses anything but tail+1 (ErrConflict)
//   - record ids are never reused: UNIQUE(record_id) WHERE kind = 'created'
//   - the table is append-only: UPDATE and DELETE abort via triggers
//   - all reads ORDER BY seq ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - _txlock=immediate: BEGIN takes the write lock, so appends from
//     separate processes serialize and a stale seq reports ErrConflict
//
// These are DSN options, so every pooled connection carries them.
package store
