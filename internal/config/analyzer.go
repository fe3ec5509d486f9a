package config

import (
	"fmt"

	"github.com/mvp-joe/project-lexis/internal/analyzer"
	"github.com/mvp-joe/project-lexis/internal/lexer"
)

// ToAnalyzerConfig converts a Config to an analyzer.Config.
// The rootDir parameter specifies the root directory of the project.
func (c *Config) ToAnalyzerConfig(rootDir string) (*analyzer.Config, error) {
	grammars, err := c.ResolveGrammars()
	if err != nil {
		return nil, err
	}

	mode, err := lexer.ParseNumericMode(c.Analysis.NumericMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNumericMode, err)
	}

	return &analyzer.Config{
		RootDir:        rootDir,
		CodePatterns:   c.Paths.Code,
		IgnorePatterns: c.Paths.Ignore,
		Grammar:        c.GrammarName(),
		Grammars:       grammars,
		NumericMode:    mode,
		Symbols:        c.Analysis.Symbols,
		Methods:        c.Analysis.Methods,
	}, nil
}
