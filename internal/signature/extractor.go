// Package signature finds method declarations in source lines with a single
// heuristic pattern: visibility, optional "static", a primitive return
// type, a name and an opening parenthesis.
//
// It is not a parser. Declarations split across lines, generic or object
// return types, and names containing digits are not recognised.
package signature

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strings"

	"github.com/mvp-joe/project-lexis/internal/lexer"
)

// ErrAlreadyScanned is returned when Scan is called twice on one extractor.
var ErrAlreadyScanned = errors.New("extractor has already scanned its input")

// excludedName is the entry point, which is never recorded.
const excludedName = "main"

// Record is one extracted method: the name with everything from the first
// "(" of the line onward, and the declared return type.
type Record struct {
	Signature  string `json:"signature"`
	ReturnType string `json:"return_type"`
}

// String renders the record the way the method report prints it.
func (r Record) String() string {
	return fmt.Sprintf("%s, return type: %s", r.Signature, r.ReturnType)
}

// Extractor collects method records in encounter order. Duplicates are kept.
type Extractor struct {
	pattern *regexp.Regexp
	records []Record
	scanned bool
}

// NewExtractor builds the declaration pattern from the grammar's
// visibility modifiers and return types.
func NewExtractor(grammar lexer.Grammar) (*Extractor, error) {
	if len(grammar.Visibility) == 0 {
		return nil, fmt.Errorf("grammar %q defines no visibility modifiers", grammar.Name)
	}
	if len(grammar.ReturnTypes) == 0 {
		return nil, fmt.Errorf("grammar %q defines no return types", grammar.Name)
	}

	// Groups:
	//   1: visibility
	//   2: return type
	//   3: method name
	expr := `(` + alternation(grammar.Visibility) + `)(?: +static)? +` +
		`(` + alternation(grammar.ReturnTypes) + `) +` +
		`(_?[a-zA-Z]+) *\(`

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to compile signature pattern: %w", err)
	}

	return &Extractor{pattern: re, records: []Record{}}, nil
}

// ExtractLine matches a single line. It does not touch the record list.
func (e *Extractor) ExtractLine(line string) (Record, bool) {
	line = strings.TrimSpace(line)

	for _, m := range e.pattern.FindAllStringSubmatchIndex(line, -1) {
		name := line[m[6]:m[7]]
		if name == excludedName {
			continue
		}

		open := strings.IndexByte(line, '(')
		return Record{
			Signature:  strings.Join(strings.Fields(name+line[open:]), " "),
			ReturnType: line[m[4]:m[5]],
		}, true
	}

	return Record{}, false
}

// Scan extracts records from every line. It runs once; later calls return
// ErrAlreadyScanned.
func (e *Extractor) Scan(lines iter.Seq[string]) error {
	if e.scanned {
		return ErrAlreadyScanned
	}
	e.scanned = true

	for line := range lines {
		if rec, ok := e.ExtractLine(line); ok {
			e.records = append(e.records, rec)
		}
	}
	return nil
}

// Records returns a copy of the records found so far.
func (e *Extractor) Records() []Record {
	out := make([]Record, len(e.records))
	copy(out, e.records)
	return out
}

func alternation(words []string) string {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	return strings.Join(quoted, "|")
}
