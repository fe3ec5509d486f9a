package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens or creates the history database at dbPath.
// Foreign keys are enabled on every connection and the schema is created
// if needed.
func Open(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Foreign keys go in the DSN so every pooled connection enforces
	// the cascades, not just the first one.
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	version, err := GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check schema version: %w", err)
	}

	if version == "0" {
		if err := CreateSchema(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return db, nil
}

// OpenExisting opens an existing history database for writing.
func OpenExisting(dbPath string) (*sql.DB, error) {
	if err := requireDatabase(dbPath); err != nil {
		return nil, err
	}
	return Open(dbPath)
}

// OpenReadOnly opens an existing history database without creating it.
func OpenReadOnly(dbPath string) (*sql.DB, error) {
	if err := requireDatabase(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func requireDatabase(dbPath string) error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("history database not found at %s, run 'lexis scan --save' first", dbPath)
	}
	return nil
}
