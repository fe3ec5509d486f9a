package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-lexis/internal/analyzer"
	"github.com/mvp-joe/project-lexis/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for token classification",
	Long: `Start the Model Context Protocol (MCP) server so coding assistants can
classify tokens and extract method signatures.

The MCP server:
- Provides the lexis_classify and lexis_methods tools
- Resolves file paths against the current directory
- Communicates via stdio (standard MCP transport)

Example:
  lexis mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	projectPath, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	cfg, err := loadConfig(projectPath)
	if err != nil {
		return err
	}

	analyzerConfig, err := cfg.ToAnalyzerConfig(projectPath)
	if err != nil {
		return err
	}

	a, err := analyzer.New(analyzerConfig, nil)
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Lexis MCP Server\n")
	fmt.Fprintf(os.Stderr, "Project: %s\n\n", projectPath)

	server, err := mcp.NewServer(a, Version)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	return server.Serve(ctx)
}
