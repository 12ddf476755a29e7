package storage

import (
	"database/sql"
	"fmt"
)

const SchemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS profiles (
    user_id TEXT PRIMARY KEY,
    current_streak INTEGER NOT NULL DEFAULT 0,
    longest_streak INTEGER NOT NULL DEFAULT 0,
    last_entry_date TEXT NOT NULL DEFAULT '',
    total_entries INTEGER NOT NULL DEFAULT 0,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS journal_entries (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL,
    mood TEXT NOT NULL DEFAULT '',
    reference TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journal_entries_user ON journal_entries (user_id, created_at);
`

// Migrate creates the schema on a fresh database and refuses to run against
// a database written by a newer schema.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schemaV1); err != nil {
		return fmt.Errorf("failed to apply schema v1: %w", err)
	}

	var current int
	err := db.QueryRow(`SELECT version FROM schema_versions WHERE component = 'bibled'`).Scan(&current)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, SchemaVersion)
	}

	_, err = db.Exec(`INSERT INTO schema_versions (component, version) VALUES ('bibled', ?)
ON CONFLICT(component) DO UPDATE SET version = excluded.version`, SchemaVersion)
	if err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}
