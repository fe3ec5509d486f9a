// Package storage persists scan results in SQLite so earlier runs can be
// listed and compared.
package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is written to schema_metadata when the schema is created.
const SchemaVersion = "1"

// timeLayout is fixed width so scanned_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// CreateSchema creates all tables and indexes for the scan history.
// Uses a transaction so schema creation succeeds or fails as a whole.
//
// Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create all tables in dependency order
	tables := []struct {
		name string
		ddl  string
	}{
		{"runs", createRunsTable},
		{"tokens", createTokensTable},
		{"methods", createMethodsTable},
		{"schema_metadata", createSchemaMetadataTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		"INSERT INTO schema_metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)",
		SchemaVersion, now,
	); err != nil {
		return fmt.Errorf("failed to bootstrap schema_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	return nil
}

// GetSchemaVersion retrieves the schema version from schema_metadata.
// Returns "0" if the table doesn't exist (new database).
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check schema_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM schema_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in schema_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// Table DDL constants

const createRunsTable = `
CREATE TABLE runs (
    run_id TEXT PRIMARY KEY,                     -- UUID
    file_path TEXT NOT NULL,                     -- Path as given to the analyzer
    grammar TEXT NOT NULL,                       -- Grammar name used for the scan
    line_count INTEGER NOT NULL DEFAULT 0,
    has_symbols INTEGER NOT NULL DEFAULT 0,      -- Boolean: token classification ran
    has_methods INTEGER NOT NULL DEFAULT 0,      -- Boolean: signature extraction ran
    scanned_at TEXT NOT NULL                     -- ISO 8601
)
`

const createTokensTable = `
CREATE TABLE tokens (
    run_id TEXT NOT NULL,
    category TEXT NOT NULL,                      -- keyword, identifier, math_operator, ...
    value TEXT NOT NULL,
    PRIMARY KEY (run_id, category, value),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
)
`

const createMethodsTable = `
CREATE TABLE methods (
    run_id TEXT NOT NULL,
    position INTEGER NOT NULL,                   -- 0-indexed order of discovery
    signature TEXT NOT NULL,
    return_type TEXT NOT NULL,
    PRIMARY KEY (run_id, position),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
)
`

const createSchemaMetadataTable = `
CREATE TABLE schema_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

var indexes = []string{
	"CREATE INDEX idx_runs_file_path ON runs(file_path, scanned_at)",
	"CREATE INDEX idx_runs_scanned_at ON runs(scanned_at)",
	"CREATE INDEX idx_tokens_category ON tokens(category)",
}
