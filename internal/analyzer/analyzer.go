// Package analyzer runs the token classifier and the signature extractor
// over files. Each file gets its own classifier and extractor; nothing is
// shared between files.
package analyzer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/mvp-joe/project-lexis/internal/lexer"
	"github.com/mvp-joe/project-lexis/internal/report"
	"github.com/mvp-joe/project-lexis/internal/signature"
	"github.com/mvp-joe/project-lexis/internal/source"
)

// GrammarAuto selects the grammar from the file extension.
const GrammarAuto = "auto"

// Config holds everything the analyzer needs.
type Config struct {
	RootDir        string
	CodePatterns   []string
	IgnorePatterns []string

	// Grammar is "auto", a built-in name, or a key of Grammars.
	Grammar     string
	Grammars    map[string]lexer.Grammar
	NumericMode lexer.NumericMode

	Symbols bool
	Methods bool
}

// FileResult is the outcome of analyzing one input.
type FileResult struct {
	Path      string
	Grammar   string
	Lines     int
	ScannedAt time.Time

	// Symbols is nil when token classification is disabled.
	Symbols *lexer.SymbolTable
	// Methods is nil when signature extraction is disabled.
	Methods []signature.Record
}

// Entry converts the result for the report package.
func (r *FileResult) Entry() report.Entry {
	return report.Entry{
		Path:        r.Path,
		Grammar:     r.Grammar,
		Symbols:     r.Symbols,
		Methods:     r.Methods,
		ShowSymbols: r.Symbols != nil,
		ShowMethods: r.Methods != nil,
	}
}

// Stats summarises a batch.
type Stats struct {
	Files    int
	Lines    int
	Tokens   int
	Methods  int
	Duration time.Duration
}

// Analyzer runs batch analysis.
type Analyzer struct {
	config    *Config
	discovery *FileDiscovery
	progress  ProgressReporter
}

// New validates cfg and prepares file discovery.
func New(cfg *Config, progress ProgressReporter) (*Analyzer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("analyzer config is required")
	}
	if !cfg.Symbols && !cfg.Methods {
		return nil, fmt.Errorf("at least one of symbols or methods must be enabled")
	}
	if cfg.NumericMode == "" {
		cfg.NumericMode = lexer.NumericLoose
	}
	if cfg.Grammar == "" {
		cfg.Grammar = GrammarAuto
	}
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}

	rootDir := cfg.RootDir
	if rootDir == "" {
		rootDir = "."
	}
	discovery, err := NewFileDiscovery(rootDir, cfg.CodePatterns, cfg.IgnorePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to compile path patterns: %w", err)
	}

	a := &Analyzer{
		config:    cfg,
		discovery: discovery,
		progress:  progress,
	}

	// Fail early on an unknown fixed grammar.
	if cfg.Grammar != GrammarAuto {
		if _, err := a.GrammarFor(""); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() *Config {
	return a.config
}

// Discovery returns the file discovery used for directory targets.
func (a *Analyzer) Discovery() *FileDiscovery {
	return a.discovery
}

// GrammarFor returns the grammar used for path. In auto mode ".java" files
// use the java grammar and everything else uses c.
func (a *Analyzer) GrammarFor(path string) (lexer.Grammar, error) {
	name := a.config.Grammar
	if name == GrammarAuto {
		name = "c"
		if strings.EqualFold(filepath.Ext(path), ".java") {
			name = "java"
		}
	}
	if g, ok := a.config.Grammars[name]; ok {
		return g.Clone(), nil
	}
	return lexer.LookupGrammar(name)
}

// Targets expands command-line arguments into files. Directories are
// walked with the configured patterns; files are taken as given. With no
// arguments the whole root is discovered.
func (a *Analyzer) Targets(args []string) ([]string, error) {
	a.progress.OnDiscoveryStart()

	var files []string
	if len(args) == 0 {
		found, err := a.discovery.DiscoverFiles()
		if err != nil {
			return nil, fmt.Errorf("failed to discover files: %w", err)
		}
		files = found
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", source.ErrUnavailable, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := a.discovery.discoverUnder(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to discover files in %s: %w", arg, err)
		}
		files = append(files, found...)
	}

	a.progress.OnDiscoveryComplete(len(files))
	return files, nil
}

// Analyze analyzes every path in order. It stops at the first input that
// cannot be read and returns the results gathered so far with the error.
// Cancellation is checked between files.
func (a *Analyzer) Analyze(ctx context.Context, paths []string) ([]*FileResult, error) {
	start := time.Now()
	a.progress.OnFileProcessingStart(len(paths))

	results := make([]*FileResult, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := a.AnalyzeFile(path)
		if err != nil {
			return results, fmt.Errorf("failed to analyze %s: %w", path, err)
		}
		results = append(results, result)
		a.progress.OnFileProcessed(path)
	}

	a.progress.OnComplete(Summarize(results, time.Since(start)))
	return results, nil
}

// AnalyzeFile opens path, analyzes it and closes it.
func (a *Analyzer) AnalyzeFile(path string) (*FileResult, error) {
	grammar, err := a.GrammarFor(path)
	if err != nil {
		return nil, err
	}

	f, err := source.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return a.analyze(f.Reader, grammar)
}

// AnalyzeReader analyzes text from r with the grammar chosen for name.
func (a *Analyzer) AnalyzeReader(name string, r io.Reader) (*FileResult, error) {
	grammar, err := a.GrammarFor(name)
	if err != nil {
		return nil, err
	}
	return a.analyze(source.NewReader(name, r), grammar)
}

// AnalyzeReaderWithGrammar analyzes text from r with an explicit grammar.
func (a *Analyzer) AnalyzeReaderWithGrammar(name string, r io.Reader, grammar lexer.Grammar) (*FileResult, error) {
	return a.analyze(source.NewReader(name, r), grammar)
}

func (a *Analyzer) analyze(src *source.Reader, grammar lexer.Grammar) (*FileResult, error) {
	// Both pipelines read the same lines, so buffer them once.
	lines := slices.Collect(src.Lines())
	if err := src.Err(); err != nil {
		return nil, err
	}

	result := &FileResult{
		Path:      src.Name(),
		Grammar:   grammar.Name,
		Lines:     len(lines),
		ScannedAt: time.Now().UTC(),
	}

	if a.config.Symbols {
		classifier := lexer.NewClassifier(grammar, lexer.WithNumericMode(a.config.NumericMode))
		if err := classifier.Scan(slices.Values(lines)); err != nil {
			return nil, err
		}
		result.Symbols = classifier.Symbols()
	}

	if a.config.Methods {
		extractor, err := signature.NewExtractor(grammar)
		if err != nil {
			return nil, err
		}
		if err := extractor.Scan(slices.Values(lines)); err != nil {
			return nil, err
		}
		result.Methods = extractor.Records()
	}

	return result, nil
}

// Summarize totals a batch of results.
func Summarize(results []*FileResult, elapsed time.Duration) *Stats {
	stats := &Stats{Files: len(results), Duration: elapsed}
	for _, r := range results {
		stats.Lines += r.Lines
		if r.Symbols != nil {
			stats.Tokens += r.Symbols.Total()
		}
		stats.Methods += len(r.Methods)
	}
	return stats
}
