package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-lexis/internal/analyzer"
	"github.com/mvp-joe/project-lexis/internal/config"
	"github.com/mvp-joe/project-lexis/internal/report"
	"github.com/mvp-joe/project-lexis/internal/storage"
)

// scanOptions are the scan command inputs after flag parsing.
type scanOptions struct {
	RootDir     string
	Paths       []string
	Grammar     string
	Format      string
	NumericMode string
	Watch       bool
	Quiet       bool
	Save        bool
}

var scanOpts scanOptions

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Classify tokens and extract method signatures",
	Long: `Scan reads each source file line by line and prints its symbol table
(keywords, identifiers, math operators, logical operators, numerical values
and others) followed by the method signatures found in it.

Directories are walked using paths.code and paths.ignore from the
configuration. With no arguments the whole project is scanned.

Examples:
  # Scan the project with the grammar picked per file
  lexis scan

  # Scan one file as Java and print JSON
  lexis scan --grammar java --format json src/Calc.java

  # Keep results in the history database
  lexis scan --save

  # Re-scan files as they change
  lexis scan --watch
`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVarP(&scanOpts.Grammar, "grammar", "g", "", "Grammar: auto, c, java or a configured grammar")
	scanCmd.Flags().StringVarP(&scanOpts.Format, "format", "f", "", "Output format: text or json")
	scanCmd.Flags().StringVar(&scanOpts.NumericMode, "numeric-mode", "", "Numeric rule: loose or strict")
	scanCmd.Flags().BoolVarP(&scanOpts.Watch, "watch", "w", false, "Watch for file changes and re-scan")
	scanCmd.Flags().BoolVarP(&scanOpts.Quiet, "quiet", "q", false, "Disable progress output")
	scanCmd.Flags().BoolVarP(&scanOpts.Save, "save", "s", false, "Save results to the history database")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	opts := scanOpts
	opts.RootDir = rootDir
	opts.Paths = args
	return scan(ctx, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// scan runs one batch and, with Watch set, keeps re-scanning until ctx ends.
// Results gathered before an unreadable file are still printed and saved.
func scan(ctx context.Context, opts scanOptions, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(opts.RootDir)
	if err != nil {
		return err
	}
	if err := applyOverrides(cfg, opts.Grammar, opts.Format, opts.NumericMode); err != nil {
		return err
	}

	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	analyzerConfig, err := cfg.ToAnalyzerConfig(opts.RootDir)
	if err != nil {
		return err
	}

	progress := NewCLIProgressReporter(stderr, opts.Quiet)
	a, err := analyzer.New(analyzerConfig, progress)
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}

	var db *sql.DB
	if opts.Save {
		db, err = storage.Open(databasePath(opts.RootDir, cfg))
		if err != nil {
			return err
		}
		defer db.Close()
	}

	emit := func(results []*analyzer.FileResult) error {
		results = relativeResults(opts.RootDir, results)
		if err := writeResults(stdout, format, results); err != nil {
			return err
		}
		if db != nil {
			ids, err := storage.NewWriter(db).WriteResults(results)
			if err != nil {
				return fmt.Errorf("failed to save results: %w", err)
			}
			if !opts.Quiet {
				fmt.Fprintf(stderr, "Saved %d run(s) to %s\n", len(ids), cfg.Storage.Database)
			}
		}
		return nil
	}

	targets, err := a.Targets(opts.Paths)
	if err != nil {
		return err
	}

	if len(targets) == 0 {
		if !opts.Quiet {
			fmt.Fprintln(stderr, "No source files found")
		}
	} else {
		results, analyzeErr := a.Analyze(ctx, targets)
		if len(results) > 0 {
			if err := emit(results); err != nil {
				return err
			}
		}
		if analyzeErr != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("scan cancelled")
			}
			return analyzeErr
		}
	}

	if !opts.Watch {
		return nil
	}

	watcher, err := analyzer.NewWatcher(a, func(results []*analyzer.FileResult) {
		if err := emit(results); err != nil {
			log.Printf("Warning: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	if !opts.Quiet {
		fmt.Fprintln(stderr, "Watching for changes (Ctrl+C to stop)...")
	}
	watcher.Start(ctx)
	<-ctx.Done()
	watcher.Stop()

	if !opts.Quiet {
		fmt.Fprintln(stderr, "Watch mode stopped")
	}
	return nil
}

// applyOverrides applies non-empty command-line values and re-validates.
func applyOverrides(cfg *config.Config, grammar, format, numericMode string) error {
	if grammar != "" {
		cfg.Analysis.Grammar = grammar
	}
	if format != "" {
		cfg.Output.Format = format
	}
	if numericMode != "" {
		cfg.Analysis.NumericMode = numericMode
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

func writeResults(w io.Writer, format report.Format, results []*analyzer.FileResult) error {
	entries := make([]report.Entry, 0, len(results))
	for _, r := range results {
		entries = append(entries, r.Entry())
	}
	return report.Write(w, format, entries)
}

// relativeResults returns copies of results whose paths are relative to
// rootDir when they lie inside it.
func relativeResults(rootDir string, results []*analyzer.FileResult) []*analyzer.FileResult {
	out := make([]*analyzer.FileResult, 0, len(results))
	for _, r := range results {
		c := *r
		c.Path = relativePath(rootDir, r.Path)
		out = append(out, &c)
	}
	return out
}

func relativePath(rootDir, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(rootDir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted! Cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
