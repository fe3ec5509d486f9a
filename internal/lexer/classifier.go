package lexer

import (
	"errors"
	"iter"
	"strings"
)

// ErrAlreadyScanned is returned when Scan is called on a classifier that
// has already completed a scan.
var ErrAlreadyScanned = errors.New("classifier has already scanned its input")

// Classifier partitions the tokens of a source text into a SymbolTable.
// One instance serves one scan; it is not safe for concurrent use.
type Classifier struct {
	grammar Grammar
	numeric NumericMode
	symbols *SymbolTable
	scanned bool
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithNumericMode overrides the default NumericLoose rule.
func WithNumericMode(mode NumericMode) Option {
	return func(c *Classifier) {
		c.numeric = mode
	}
}

// NewClassifier creates a classifier over a private copy of grammar.
func NewClassifier(grammar Grammar, opts ...Option) *Classifier {
	c := &Classifier{
		grammar: grammar.Clone(),
		numeric: NumericLoose,
		symbols: NewSymbolTable(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Grammar returns the grammar the classifier was built with.
func (c *Classifier) Grammar() Grammar {
	return c.grammar.Clone()
}

// Symbols returns the accumulated symbol table.
func (c *Classifier) Symbols() *SymbolTable {
	return c.symbols
}

// Scan classifies every line of lines. It runs once; later calls return
// ErrAlreadyScanned and leave the table untouched.
func (c *Classifier) Scan(lines iter.Seq[string]) error {
	if c.scanned {
		return ErrAlreadyScanned
	}
	c.scanned = true

	for line := range lines {
		c.ClassifyLine(line)
	}
	return nil
}

// ClassifyLine classifies a single line into the symbol table.
//
// Passes run in a fixed order: keywords, logical operators, math
// operators, punctuation, numerics. Whatever survives all five passes is
// an identifier. Matching is by substring, so "doSomething" yields the
// keyword "do" and the identifier "Something".
func (c *Classifier) ClassifyLine(line string) {
	fragments := strings.Fields(strings.TrimSpace(line))
	if len(fragments) == 0 {
		return
	}

	fragments = SplitFragments(fragments, c.grammar.Keywords, c.recorder(CategoryKeyword))
	fragments = SplitFragments(fragments, c.grammar.LogicOperators, c.recorder(CategoryLogicOperator))
	fragments = SplitFragments(fragments, c.grammar.MathOperators, c.recorder(CategoryMathOperator))
	fragments = SplitFragments(fragments, c.grammar.Punctuation, c.recorder(CategoryPunctuation))
	fragments = c.splitNumerics(fragments)

	for _, f := range fragments {
		c.symbols.Add(CategoryIdentifier, f)
	}
}

func (c *Classifier) recorder(category Category) func(string) {
	return func(token string) {
		c.symbols.Add(category, token)
	}
}

// splitNumerics removes numeric fragments and returns the rest.
func (c *Classifier) splitNumerics(fragments []string) []string {
	rest := fragments[:0]
	for _, f := range fragments {
		if c.numeric.IsNumeric(f) {
			c.symbols.Add(CategoryNumeric, f)
			continue
		}
		rest = append(rest, f)
	}
	return rest
}
