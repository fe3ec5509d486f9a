package storage

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mvp-joe/project-lexis/internal/analyzer"
	"github.com/mvp-joe/project-lexis/internal/lexer"
)

// Writer records analysis results as runs.
type Writer struct {
	db *sql.DB
}

// NewWriter creates a Writer instance.
// DB must have schema already created via CreateSchema().
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// WriteResult stores one file result as a new run and returns its ID.
// The run, its tokens and its methods are written in one transaction.
func (w *Writer) WriteResult(result *analyzer.FileResult) (string, error) {
	if result == nil {
		return "", fmt.Errorf("result is required")
	}

	tx, err := w.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	runID := uuid.New().String()
	scannedAt := result.ScannedAt
	if scannedAt.IsZero() {
		scannedAt = time.Now().UTC()
	}

	_, err = sq.Insert("runs").
		Columns("run_id", "file_path", "grammar", "line_count", "has_symbols", "has_methods", "scanned_at").
		Values(
			runID,
			result.Path,
			result.Grammar,
			result.Lines,
			result.Symbols != nil,
			result.Methods != nil,
			scannedAt.UTC().Format(timeLayout),
		).
		RunWith(tx).
		Exec()
	if err != nil {
		return "", fmt.Errorf("failed to write run for %s: %w", result.Path, err)
	}

	if result.Symbols != nil {
		if err := writeTokens(tx, runID, result.Symbols); err != nil {
			return "", err
		}
	}

	if len(result.Methods) > 0 {
		if err := writeMethods(tx, runID, result); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return runID, nil
}

// WriteResults stores each result as its own run and returns the run IDs
// in input order.
func (w *Writer) WriteResults(results []*analyzer.FileResult) ([]string, error) {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		id, err := w.WriteResult(r)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// DeleteRun removes a run; its tokens and methods cascade.
func (w *Writer) DeleteRun(runID string) error {
	_, err := sq.Delete("runs").
		Where(sq.Eq{"run_id": runID}).
		RunWith(w.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", runID, err)
	}
	return nil
}

// PruneRuns keeps the newest keep runs of each file and deletes the rest.
// An empty filePath prunes every file. Returns the number of runs deleted.
func (w *Writer) PruneRuns(filePath string, keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be non-negative, got %d", keep)
	}

	runs, err := NewReader(w.db).ListRuns(filePath, 0)
	if err != nil {
		return 0, err
	}

	// Runs arrive newest first.
	seen := make(map[string]int)
	deleted := 0
	for _, r := range runs {
		seen[r.FilePath]++
		if seen[r.FilePath] <= keep {
			continue
		}
		if err := w.DeleteRun(r.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func writeTokens(tx *sql.Tx, runID string, symbols *lexer.SymbolTable) error {
	// Build the query once with Squirrel, then prepare it for the batch
	sqlStr, _, err := sq.Insert("tokens").
		Columns("run_id", "category", "value").
		Values("", "", "").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	stmt, err := tx.Prepare(sqlStr)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, category := range lexer.Categories {
		for _, value := range symbols.Values(category) {
			if _, err := stmt.Exec(runID, category.Key(), value); err != nil {
				return fmt.Errorf("failed to write %s token %q: %w", category.Key(), value, err)
			}
		}
	}

	return nil
}

func writeMethods(tx *sql.Tx, runID string, result *analyzer.FileResult) error {
	sqlStr, _, err := sq.Insert("methods").
		Columns("run_id", "position", "signature", "return_type").
		Values("", 0, "", "").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	stmt, err := tx.Prepare(sqlStr)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, m := range result.Methods {
		if _, err := stmt.Exec(runID, i, m.Signature, m.ReturnType); err != nil {
			return fmt.Errorf("failed to write method %s: %w", m.Signature, err)
		}
	}

	return nil
}
