package config

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/project-lexis/internal/lexer"
)

// GrammarAuto picks the grammar from each file's extension.
const GrammarAuto = "auto"

// Config represents the complete lexis configuration.
// It can be loaded from .lexis/config.yml with environment variable overrides.
type Config struct {
	Analysis AnalysisConfig           `yaml:"analysis" mapstructure:"analysis"`
	Grammars map[string]GrammarConfig `yaml:"grammars" mapstructure:"grammars"`
	Paths    PathsConfig              `yaml:"paths" mapstructure:"paths"`
	Output   OutputConfig             `yaml:"output" mapstructure:"output"`
	Storage  StorageConfig            `yaml:"storage" mapstructure:"storage"`
}

// AnalysisConfig selects what is extracted and how.
type AnalysisConfig struct {
	Grammar     string `yaml:"grammar" mapstructure:"grammar"`           // "auto", "c", "java" or a key of Grammars
	NumericMode string `yaml:"numeric_mode" mapstructure:"numeric_mode"` // "loose" or "strict"
	Symbols     bool   `yaml:"symbols" mapstructure:"symbols"`           // classify tokens
	Methods     bool   `yaml:"methods" mapstructure:"methods"`           // extract method signatures
}

// GrammarConfig declares a custom grammar. Empty tables are inherited
// from Base.
type GrammarConfig struct {
	Base           string   `yaml:"base" mapstructure:"base"`
	Keywords       []string `yaml:"keywords" mapstructure:"keywords"`
	MathOperators  []string `yaml:"math_operators" mapstructure:"math_operators"`
	LogicOperators []string `yaml:"logic_operators" mapstructure:"logic_operators"`
	Punctuation    []string `yaml:"punctuation" mapstructure:"punctuation"`
	Visibility     []string `yaml:"visibility" mapstructure:"visibility"`
	ReturnTypes    []string `yaml:"return_types" mapstructure:"return_types"`
}

// PathsConfig defines which files to analyze and which to ignore.
type PathsConfig struct {
	Code   []string `yaml:"code" mapstructure:"code"`     // glob patterns for source files
	Ignore []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns to ignore
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // "text" or "json"
}

// StorageConfig controls the scan history database.
type StorageConfig struct {
	Database string `yaml:"database" mapstructure:"database"` // relative to the project root unless absolute
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Grammar:     GrammarAuto,
			NumericMode: string(lexer.NumericLoose),
			Symbols:     true,
			Methods:     true,
		},
		Grammars: map[string]GrammarConfig{},
		Paths: PathsConfig{
			Code: []string{
				"**/*.c",
				"**/*.h",
				"**/*.java",
			},
			Ignore: []string{
				".git/**",
				"build/**",
				"target/**",
				"vendor/**",
			},
		},
		Output: OutputConfig{
			Format: "text",
		},
		Storage: StorageConfig{
			Database: ".lexis/history.db",
		},
	}
}

// GrammarName returns analysis.grammar as the analyzer expects it. "auto"
// and built-in names match case-insensitively; declared grammars match as
// written.
func (c *Config) GrammarName() string {
	name := strings.TrimSpace(c.Analysis.Grammar)
	if _, ok := c.Grammars[name]; ok {
		return name
	}
	return strings.ToLower(name)
}

// ResolveGrammars returns every custom grammar merged onto its base.
func (c *Config) ResolveGrammars() (map[string]lexer.Grammar, error) {
	out := make(map[string]lexer.Grammar, len(c.Grammars))
	for name, gc := range c.Grammars {
		baseName := gc.Base
		if baseName == "" {
			baseName = "c"
		}
		base, err := lexer.LookupGrammar(baseName)
		if err != nil {
			return nil, fmt.Errorf("grammar %s: %w", name, err)
		}
		custom := lexer.Grammar{
			Name:           name,
			Keywords:       gc.Keywords,
			MathOperators:  gc.MathOperators,
			LogicOperators: gc.LogicOperators,
			Punctuation:    gc.Punctuation,
			Visibility:     gc.Visibility,
			ReturnTypes:    gc.ReturnTypes,
		}
		out[name] = custom.Extend(base)
	}
	return out, nil
}
