package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mvp-joe/project-lexis/internal/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lexis",
	Short: "Lexis - token classification and method signature extraction",
	Long: `Lexis splits source lines into keywords, identifiers, math operators,
logical operators, numerical values and punctuation using ordered symbol
tables, and extracts single-line Java-style method signatures.

Configuration is read from .lexis/config.yml with LEXIS_* environment
variable overrides.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .lexis/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initLogging silences informational log output unless --verbose is set.
func initLogging() {
	if !viper.GetBool("verbose") {
		log.SetOutput(io.Discard)
	}
}

// loadConfig loads configuration for rootDir, honouring --config.
func loadConfig(rootDir string) (*config.Config, error) {
	path := viper.GetString("config")
	if path == "" {
		path = cfgFile
	}

	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.NewFileLoader(rootDir, path).Load()
	} else {
		cfg, err = config.LoadConfigFromDir(rootDir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Using grammar %s, numeric mode %s\n", cfg.Analysis.Grammar, cfg.Analysis.NumericMode)
	}
	return cfg, nil
}

// databasePath resolves the configured database relative to rootDir.
func databasePath(rootDir string, cfg *config.Config) string {
	if filepath.IsAbs(cfg.Storage.Database) {
		return cfg.Storage.Database
	}
	return filepath.Join(rootDir, cfg.Storage.Database)
}
