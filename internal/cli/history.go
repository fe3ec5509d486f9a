package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-lexis/internal/analyzer"
	"github.com/mvp-joe/project-lexis/internal/report"
	"github.com/mvp-joe/project-lexis/internal/storage"
)

// historyOptions are the history command inputs after flag parsing.
type historyOptions struct {
	RootDir string
	File    string
	Limit   int
	Format  string
	Show    bool
	Diff    bool
	Prune   int
}

var historyOpts historyOptions

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [file]",
	Short: "List saved scan runs",
	Long: `History lists runs saved with 'lexis scan --save', newest first.
With a file argument only that file's runs are listed; --show prints the
full report of its latest run instead, and --diff compares its two most
recent runs. --prune N deletes all but the newest N runs of each file
(or of the given file).

Examples:
  lexis history
  lexis history src/Calc.java --limit 5
  lexis history src/Calc.java --show
  lexis history src/Calc.java --diff
  lexis history --prune 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		opts := historyOpts
		opts.RootDir = rootDir
		if len(args) == 1 {
			opts.File = args[0]
		}
		return showHistory(opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyOpts.Limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	historyCmd.Flags().StringVarP(&historyOpts.Format, "format", "f", "", "Output format: text or json")
	historyCmd.Flags().BoolVar(&historyOpts.Show, "show", false, "Print the latest saved report for the file")
	historyCmd.Flags().BoolVar(&historyOpts.Diff, "diff", false, "Diff the two most recent saved reports for the file")
	historyCmd.Flags().IntVar(&historyOpts.Prune, "prune", 0, "Keep only the newest N runs per file and delete the rest")
}

func showHistory(opts historyOptions, w io.Writer) error {
	cfg, err := loadConfig(opts.RootDir)
	if err != nil {
		return err
	}
	if err := applyOverrides(cfg, "", opts.Format, ""); err != nil {
		return err
	}
	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	file := opts.File
	if file != "" {
		file = relativePath(opts.RootDir, file)
	}

	if opts.Prune < 0 {
		return fmt.Errorf("--prune must be positive, got %d", opts.Prune)
	}
	if opts.Prune > 0 {
		return pruneHistory(databasePath(opts.RootDir, cfg), file, opts.Prune, w)
	}

	db, err := storage.OpenReadOnly(databasePath(opts.RootDir, cfg))
	if err != nil {
		return err
	}
	defer db.Close()
	reader := storage.NewReader(db)

	if opts.Show {
		if file == "" {
			return fmt.Errorf("--show requires a file argument")
		}
		run, err := reader.LatestRun(file)
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("no saved runs for %s", file)
		}
		return writeResults(w, format, []*analyzer.FileResult{run.Result})
	}

	if opts.Diff {
		if file == "" {
			return fmt.Errorf("--diff requires a file argument")
		}
		return diffLatest(reader, file, w)
	}

	runs, err := reader.ListRuns(file, opts.Limit)
	if err != nil {
		return err
	}

	if format == report.FormatJSON {
		if runs == nil {
			runs = []*storage.RunSummary{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No saved runs")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tSCANNED AT\tGRAMMAR\tLINES\tTOKENS\tMETHODS\tFILE")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID[:8],
			r.ScannedAt.Local().Format(time.DateTime),
			r.Grammar,
			formatNumber(r.Lines),
			formatNumber(r.TokenCount),
			formatNumber(r.MethodCount),
			r.FilePath,
		)
	}
	return tw.Flush()
}

// diffLatest prints a unified diff between the two newest runs of file.
func diffLatest(reader *storage.Reader, file string, w io.Writer) error {
	summaries, err := reader.ListRuns(file, 2)
	if err != nil {
		return err
	}
	if len(summaries) < 2 {
		return fmt.Errorf("need at least two saved runs for %s, found %d", file, len(summaries))
	}

	newer, err := reader.GetRun(summaries[0].ID)
	if err != nil {
		return err
	}
	older, err := reader.GetRun(summaries[1].ID)
	if err != nil {
		return err
	}
	if newer == nil || older == nil {
		return fmt.Errorf("saved run for %s disappeared", file)
	}

	out, err := report.Diff(
		"run "+older.ID[:8], "run "+newer.ID[:8],
		older.Result.Entry(), newer.Result.Entry(),
	)
	if err != nil {
		return err
	}
	if out == "" {
		fmt.Fprintln(w, "No changes")
		return nil
	}
	_, err = io.WriteString(w, out)
	return err
}

// pruneHistory deletes all but the newest keep runs per file.
func pruneHistory(dbPath, file string, keep int, w io.Writer) error {
	db, err := storage.OpenExisting(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	deleted, err := storage.NewWriter(db).PruneRuns(file, keep)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Pruned %s runs\n", formatNumber(deleted))
	return nil
}
