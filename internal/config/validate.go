package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mvp-joe/project-lexis/internal/lexer"
	"github.com/mvp-joe/project-lexis/internal/report"
)

var (
	// ErrInvalidGrammar indicates a grammar name that is neither built in nor declared
	ErrInvalidGrammar = errors.New("invalid grammar")

	// ErrInvalidNumericMode indicates an unsupported numeric classification mode
	ErrInvalidNumericMode = errors.New("invalid numeric mode")

	// ErrInvalidFormat indicates an unsupported output format
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrNothingToExtract indicates both symbols and methods are disabled
	ErrNothingToExtract = errors.New("nothing to extract")

	// ErrEmptyTable indicates a custom grammar whose tables resolve to nothing
	ErrEmptyTable = errors.New("empty grammar table")

	// ErrEmptyDatabase indicates a missing storage database path
	ErrEmptyDatabase = errors.New("empty storage database")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateAnalysis(cfg); err != nil {
		errs = append(errs, err)
	}

	if err := validateGrammars(cfg.Grammars); err != nil {
		errs = append(errs, err)
	}

	if err := validateOutput(&cfg.Output); err != nil {
		errs = append(errs, err)
	}

	if err := validateStorage(&cfg.Storage); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateAnalysis(cfg *Config) error {
	var errs []error

	name := cfg.GrammarName()
	if name != GrammarAuto {
		_, custom := cfg.Grammars[name]
		if _, err := lexer.LookupGrammar(name); err != nil && !custom {
			errs = append(errs, fmt.Errorf("%w: must be 'auto', a built-in (%s) or a declared grammar, got '%s'",
				ErrInvalidGrammar, strings.Join(lexer.GrammarNames(), ", "), cfg.Analysis.Grammar))
		}
	}

	if _, err := lexer.ParseNumericMode(cfg.Analysis.NumericMode); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidNumericMode, err))
	}

	if !cfg.Analysis.Symbols && !cfg.Analysis.Methods {
		errs = append(errs, fmt.Errorf("%w: enable analysis.symbols or analysis.methods", ErrNothingToExtract))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateGrammars(grammars map[string]GrammarConfig) error {
	var errs []error

	for name, gc := range grammars {
		if strings.TrimSpace(name) == "" || strings.EqualFold(name, GrammarAuto) {
			errs = append(errs, fmt.Errorf("%w: reserved or empty grammar name '%s'", ErrInvalidGrammar, name))
			continue
		}
		if gc.Base != "" {
			if _, err := lexer.LookupGrammar(gc.Base); err != nil {
				errs = append(errs, fmt.Errorf("%w: grammar %s has unknown base '%s'", ErrInvalidGrammar, name, gc.Base))
				continue
			}
		}
		tables := map[string][]string{
			"keywords":        gc.Keywords,
			"math_operators":  gc.MathOperators,
			"logic_operators": gc.LogicOperators,
			"punctuation":     gc.Punctuation,
		}
		for table, entries := range tables {
			for _, entry := range entries {
				if strings.TrimSpace(entry) == "" || strings.ContainsAny(entry, " \t") {
					errs = append(errs, fmt.Errorf("%w: grammar %s %s contains blank or whitespace entry %q", ErrEmptyTable, name, table, entry))
				}
			}
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateOutput(cfg *OutputConfig) error {
	if _, err := report.ParseFormat(cfg.Format); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return nil
}

func validateStorage(cfg *StorageConfig) error {
	if strings.TrimSpace(cfg.Database) == "" {
		return fmt.Errorf("%w: storage.database is required", ErrEmptyDatabase)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
// Every error stays wrapped so the sentinels match with errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	args := make([]any, len(errs))
	for i, err := range errs {
		args[i] = err
	}

	return fmt.Errorf("validation failed:"+strings.Repeat("\n  - %w", len(errs)), args...)
}
