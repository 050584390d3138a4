// Package sqlite implements the StateStore backed by a SQLite database.
// Implements: docs/ARCHITECTURE § State Store (SQLite backend).
package sqlite

// stateID is the primary key of the only row in the state table.
const stateID = 1

// createState holds at most one row; the CHECK constraints mirror
// types.State.Validate so a corrupt write is rejected by the engine too.
const createState = `CREATE TABLE IF NOT EXISTS state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    schema_version INTEGER NOT NULL CHECK (schema_version >= 1),
    request_count INTEGER NOT NULL CHECK (request_count >= 0),
    last_writer TEXT NOT NULL CHECK (last_writer <> '')
);`

const (
	insertStateIfAbsent = `INSERT OR IGNORE INTO state (id, schema_version, request_count, last_writer)
VALUES (?, ?, ?, ?)`

	selectState = `SELECT schema_version, request_count, last_writer FROM state WHERE id = ?`

	upsertState = `INSERT INTO state (id, schema_version, request_count, last_writer)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    schema_version = excluded.schema_version,
    request_count = excluded.request_count,
    last_writer = excluded.last_writer`
)
