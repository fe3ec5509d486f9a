package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-lexis/internal/analyzer"
	"github.com/mvp-joe/project-lexis/internal/report"
)

var (
	methodsGrammar string
	methodsFormat  string
)

// methodsCmd represents the methods command
var methodsCmd = &cobra.Command{
	Use:   "methods <file>",
	Short: "Print the method signatures found in a file",
	Long: `Methods prints every single-line method header of the form
"<visibility> [static] <return type> <name>(" with its return type.
Methods named main are skipped.

Example:
  lexis methods src/Calc.java`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		return printMethods(rootDir, args[0], methodsGrammar, methodsFormat, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(methodsCmd)
	methodsCmd.Flags().StringVarP(&methodsGrammar, "grammar", "g", "", "Grammar: auto, c, java or a configured grammar")
	methodsCmd.Flags().StringVarP(&methodsFormat, "format", "f", "", "Output format: text or json")
}

// printMethods runs only the signature extractor over path.
func printMethods(rootDir, path, grammar, format string, w io.Writer) error {
	cfg, err := loadConfig(rootDir)
	if err != nil {
		return err
	}
	cfg.Analysis.Symbols = false
	cfg.Analysis.Methods = true
	if err := applyOverrides(cfg, grammar, format, ""); err != nil {
		return err
	}

	outFormat, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	analyzerConfig, err := cfg.ToAnalyzerConfig(rootDir)
	if err != nil {
		return err
	}

	a, err := analyzer.New(analyzerConfig, nil)
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}

	result, err := a.AnalyzeFile(path)
	if err != nil {
		return fmt.Errorf("failed to analyze %s: %w", path, err)
	}

	return writeResults(w, outFormat, relativeResults(rootDir, []*analyzer.FileResult{result}))
}
