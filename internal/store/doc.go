// Package store provides the SQLite ledger of harness runs.
//
// Every run appends one row. Rows are ordered by a logical sequence number
// assigned at insert time (MAX(seq)+1), never by wall time, so listings are
// deterministic across machines and clock changes.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads while a run is recorded
//   - synchronous=NORMAL
//   - busy_timeout=5000ms: several harness processes may share one ledger
//   - schema versioned with PRAGMA user_version
//
// Artifact lists are stored as canonical JSON arrays.
package store
