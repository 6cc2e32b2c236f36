// Package store executes compiled queries against a database/sql backend.
//
// Three drivers are registered: sqlite3 (github.com/mattn/go-sqlite3),
// postgres (github.com/lib/pq) and mysql (github.com/go-sql-driver/mysql).
// Dialect reports the placeholder style the query compiler must emit for
// the open driver.
//
// # Database Configuration (sqlite3)
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// SeedSample creates and fills the sample data(id, d1, d2, d3) table used by
// the CLI seed command and the end-to-end tests.
package store
