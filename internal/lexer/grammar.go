package lexer

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownGrammar indicates a grammar name with no built-in definition.
var ErrUnknownGrammar = errors.New("unknown grammar")

// Grammar holds the ordered category tables for one source language.
// Within each table, earlier entries win: a fragment is split on the first
// entry it contains, so longer operators must precede their prefixes
// ("+=" before "+").
type Grammar struct {
	Name           string   `yaml:"name" json:"name" mapstructure:"name"`
	Keywords       []string `yaml:"keywords" json:"keywords" mapstructure:"keywords"`
	MathOperators  []string `yaml:"math_operators" json:"math_operators" mapstructure:"math_operators"`
	LogicOperators []string `yaml:"logic_operators" json:"logic_operators" mapstructure:"logic_operators"`
	Punctuation    []string `yaml:"punctuation" json:"punctuation" mapstructure:"punctuation"`

	// Visibility and ReturnTypes drive method signature extraction.
	Visibility  []string `yaml:"visibility" json:"visibility" mapstructure:"visibility"`
	ReturnTypes []string `yaml:"return_types" json:"return_types" mapstructure:"return_types"`
}

var (
	commonMathOperators  = []string{"++", "--", "+=", "-=", "*=", "/=", "%=", "+", "-", "*", "/", "%", "="}
	commonLogicOperators = []string{"&&", "||", "<=", ">=", "==", "!=", "&", "|", "<", ">", "^", "!", "~"}
	commonPunctuation    = []string{",", ";", ":", `"`, "'", "(", ")", "{", "}", "[", "]"}
	javaVisibility       = []string{"public", "private", "protected"}
	javaReturnTypes      = []string{"void", "boolean", "char", "byte", "short", "int", "long", "float", "double"}
)

var builtinGrammars = map[string]Grammar{
	"c": {
		Name: "c",
		Keywords: []string{
			"int", "long", "float", "double", "char", "bool", "if", "else", "do", "for", "while", "switch",
			"case", "continue", "break", "default", "signed", "unsigned", "return", "void",
		},
		MathOperators:  commonMathOperators,
		LogicOperators: commonLogicOperators,
		Punctuation:    commonPunctuation,
		Visibility:     javaVisibility,
		ReturnTypes:    javaReturnTypes,
	},
	// Longer keywords come first where one contains another
	// (double/do, finally/final, throws/throw).
	"java": {
		Name: "java",
		Keywords: []string{
			"boolean", "double", "float", "short", "long", "byte", "char", "int", "void",
			"if", "else", "switch", "case", "default", "while", "for", "do", "continue", "break", "return",
			"public", "private", "protected", "static", "finally", "final", "abstract", "class",
			"throws", "throw", "try", "catch", "new", "this", "super", "null", "true", "false",
		},
		MathOperators:  commonMathOperators,
		LogicOperators: commonLogicOperators,
		Punctuation:    commonPunctuation,
		Visibility:     javaVisibility,
		ReturnTypes:    javaReturnTypes,
	},
}

// LookupGrammar returns a copy of the named built-in grammar.
func LookupGrammar(name string) (Grammar, error) {
	g, ok := builtinGrammars[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Grammar{}, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownGrammar, name, strings.Join(GrammarNames(), ", "))
	}
	return g.Clone(), nil
}

// GrammarNames lists the built-in grammar names in sorted order.
func GrammarNames() []string {
	names := make([]string, 0, len(builtinGrammars))
	for name := range builtinGrammars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy so callers cannot mutate shared tables.
func (g Grammar) Clone() Grammar {
	return Grammar{
		Name:           g.Name,
		Keywords:       cloneTable(g.Keywords),
		MathOperators:  cloneTable(g.MathOperators),
		LogicOperators: cloneTable(g.LogicOperators),
		Punctuation:    cloneTable(g.Punctuation),
		Visibility:     cloneTable(g.Visibility),
		ReturnTypes:    cloneTable(g.ReturnTypes),
	}
}

// Extend returns a copy of base with every non-empty table of g replacing
// the corresponding base table. Used for grammars declared in config.
func (g Grammar) Extend(base Grammar) Grammar {
	out := base.Clone()
	if g.Name != "" {
		out.Name = g.Name
	}
	override := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = cloneTable(src)
		}
	}
	override(&out.Keywords, g.Keywords)
	override(&out.MathOperators, g.MathOperators)
	override(&out.LogicOperators, g.LogicOperators)
	override(&out.Punctuation, g.Punctuation)
	override(&out.Visibility, g.Visibility)
	override(&out.ReturnTypes, g.ReturnTypes)
	return out
}

func cloneTable(table []string) []string {
	if table == nil {
		return nil
	}
	out := make([]string, len(table))
	copy(out, table)
	return out
}
