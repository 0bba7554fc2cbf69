// Package store keeps the manifests of past generation runs in SQLite.
//
// Each run records, per category, the digest of every synthesised
// conversion. Comparing a fresh run against the latest recorded one shows
// whether generation is still deterministic, and which signatures were
// added, removed or changed when the definitions move.
//
// # Ordering
//
//   - Runs are ordered by seq INTEGER (logical counter), never timestamps
//   - Entry queries use ORDER BY signature COLLATE BINARY
//
// # Connection Pragmas (set through the DSN)
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
