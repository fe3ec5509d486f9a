package storage

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/project-lexis/internal/analyzer"
	"github.com/mvp-joe/project-lexis/internal/lexer"
	"github.com/mvp-joe/project-lexis/internal/signature"
)

// Run is a stored analysis result.
type Run struct {
	ID     string
	Result *analyzer.FileResult
}

// RunSummary describes a run without loading its tokens or methods.
type RunSummary struct {
	ID          string    `json:"run_id"`
	FilePath    string    `json:"file_path"`
	Grammar     string    `json:"grammar"`
	Lines       int       `json:"lines"`
	TokenCount  int       `json:"token_count"`
	MethodCount int       `json:"method_count"`
	ScannedAt   time.Time `json:"scanned_at"`
}

// Reader reads runs back from the history database.
type Reader struct {
	db *sql.DB
}

// NewReader creates a Reader instance.
// DB should have schema already created.
func NewReader(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// GetRun loads a run with its tokens and methods.
// Returns (nil, nil) if the run is not found.
func (r *Reader) GetRun(runID string) (*Run, error) {
	return r.queryRun(sq.Eq{"run_id": runID})
}

// LatestRun loads the most recent run for filePath.
// Returns (nil, nil) if the file was never saved.
func (r *Reader) LatestRun(filePath string) (*Run, error) {
	return r.queryRun(sq.Eq{"file_path": filePath})
}

// ListRuns returns run summaries, newest first. An empty filePath lists
// runs for every file. A limit of zero or less means no limit.
func (r *Reader) ListRuns(filePath string, limit int) ([]*RunSummary, error) {
	query := sq.Select(
		"r.run_id", "r.file_path", "r.grammar", "r.line_count", "r.scanned_at",
		"(SELECT COUNT(*) FROM tokens t WHERE t.run_id = r.run_id)",
		"(SELECT COUNT(*) FROM methods m WHERE m.run_id = r.run_id)",
	).
		From("runs r").
		OrderBy("r.scanned_at DESC", "r.rowid DESC")

	if filePath != "" {
		query = query.Where(sq.Eq{"r.file_path": filePath})
	}
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	rows, err := query.RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var summaries []*RunSummary
	for rows.Next() {
		s := &RunSummary{}
		var scannedAt string
		if err := rows.Scan(&s.ID, &s.FilePath, &s.Grammar, &s.Lines, &scannedAt, &s.TokenCount, &s.MethodCount); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		s.ScannedAt, _ = time.Parse(timeLayout, scannedAt)
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return summaries, nil
}

func (r *Reader) queryRun(where sq.Eq) (*Run, error) {
	run := &Run{Result: &analyzer.FileResult{}}
	var scannedAt string
	var hasSymbols, hasMethods bool

	err := sq.Select("run_id", "file_path", "grammar", "line_count", "has_symbols", "has_methods", "scanned_at").
		From("runs").
		Where(where).
		OrderBy("scanned_at DESC", "rowid DESC").
		Limit(1).
		RunWith(r.db).
		QueryRow().
		Scan(&run.ID, &run.Result.Path, &run.Result.Grammar, &run.Result.Lines, &hasSymbols, &hasMethods, &scannedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.Result.ScannedAt, _ = time.Parse(timeLayout, scannedAt)

	if hasSymbols {
		symbols, err := r.loadTokens(run.ID)
		if err != nil {
			return nil, err
		}
		run.Result.Symbols = symbols
	}

	if hasMethods {
		methods, err := r.loadMethods(run.ID)
		if err != nil {
			return nil, err
		}
		run.Result.Methods = methods
	}

	return run, nil
}

func (r *Reader) loadTokens(runID string) (*lexer.SymbolTable, error) {
	rows, err := sq.Select("category", "value").
		From("tokens").
		Where(sq.Eq{"run_id": runID}).
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens for run %s: %w", runID, err)
	}
	defer rows.Close()

	symbols := lexer.NewSymbolTable()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan token row: %w", err)
		}
		category, ok := lexer.ParseCategory(key)
		if !ok {
			return nil, fmt.Errorf("unknown token category %q in run %s", key, runID)
		}
		symbols.Add(category, value)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tokens: %w", err)
	}

	return symbols, nil
}

func (r *Reader) loadMethods(runID string) ([]signature.Record, error) {
	rows, err := sq.Select("signature", "return_type").
		From("methods").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("position").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query methods for run %s: %w", runID, err)
	}
	defer rows.Close()

	methods := []signature.Record{}
	for rows.Next() {
		var m signature.Record
		if err := rows.Scan(&m.Signature, &m.ReturnType); err != nil {
			return nil, fmt.Errorf("failed to scan method row: %w", err)
		}
		methods = append(methods, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating methods: %w", err)
	}

	return methods, nil
}
