package lexer

import "sort"

// Category identifies one of the six lexical classes.
type Category int

const (
	CategoryKeyword Category = iota
	CategoryIdentifier
	CategoryMathOperator
	CategoryLogicOperator
	CategoryNumeric
	CategoryPunctuation

	numCategories = iota
)

// Categories lists every category in report order.
var Categories = []Category{
	CategoryKeyword,
	CategoryIdentifier,
	CategoryMathOperator,
	CategoryLogicOperator,
	CategoryNumeric,
	CategoryPunctuation,
}

// String returns the report heading for the category.
func (c Category) String() string {
	switch c {
	case CategoryKeyword:
		return "Keywords"
	case CategoryIdentifier:
		return "Identifiers"
	case CategoryMathOperator:
		return "Math Operators"
	case CategoryLogicOperator:
		return "Logical Operators"
	case CategoryNumeric:
		return "Numerical Values"
	case CategoryPunctuation:
		return "Others"
	default:
		return "Unknown"
	}
}

// Key returns a stable machine-readable name, used for JSON and storage.
func (c Category) Key() string {
	switch c {
	case CategoryKeyword:
		return "keyword"
	case CategoryIdentifier:
		return "identifier"
	case CategoryMathOperator:
		return "math_operator"
	case CategoryLogicOperator:
		return "logic_operator"
	case CategoryNumeric:
		return "numeric"
	case CategoryPunctuation:
		return "punctuation"
	default:
		return "unknown"
	}
}

// ParseCategory is the inverse of Key.
func ParseCategory(key string) (Category, bool) {
	for _, c := range Categories {
		if c.Key() == key {
			return c, true
		}
	}
	return 0, false
}

// SymbolTable holds the deduplicated tokens found in each category.
// It only grows.
type SymbolTable struct {
	sets [numCategories]map[string]struct{}
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	t := &SymbolTable{}
	for i := range t.sets {
		t.sets[i] = make(map[string]struct{})
	}
	return t
}

// Add records value under category. Empty values are ignored.
func (t *SymbolTable) Add(c Category, value string) {
	if value == "" || !c.valid() {
		return
	}
	t.sets[c][value] = struct{}{}
}

// Contains reports whether value was recorded under category.
func (t *SymbolTable) Contains(c Category, value string) bool {
	if !c.valid() {
		return false
	}
	_, ok := t.sets[c][value]
	return ok
}

// Len returns the number of distinct tokens in category.
func (t *SymbolTable) Len(c Category) int {
	if !c.valid() {
		return 0
	}
	return len(t.sets[c])
}

// Total returns the number of distinct tokens across all categories.
func (t *SymbolTable) Total() int {
	n := 0
	for _, set := range t.sets {
		n += len(set)
	}
	return n
}

// Values returns the tokens of category in sorted order.
func (t *SymbolTable) Values(c Category) []string {
	if !c.valid() {
		return nil
	}
	out := make([]string, 0, len(t.sets[c]))
	for v := range t.sets[c] {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Merge adds every token of other into t.
func (t *SymbolTable) Merge(other *SymbolTable) {
	if other == nil {
		return
	}
	for i, set := range other.sets {
		for v := range set {
			t.sets[i][v] = struct{}{}
		}
	}
}

func (t *SymbolTable) Keywords() []string       { return t.Values(CategoryKeyword) }
func (t *SymbolTable) Identifiers() []string    { return t.Values(CategoryIdentifier) }
func (t *SymbolTable) MathOperators() []string  { return t.Values(CategoryMathOperator) }
func (t *SymbolTable) LogicOperators() []string { return t.Values(CategoryLogicOperator) }
func (t *SymbolTable) NumericValues() []string  { return t.Values(CategoryNumeric) }
func (t *SymbolTable) Punctuation() []string    { return t.Values(CategoryPunctuation) }

func (c Category) valid() bool {
	return c >= CategoryKeyword && c <= CategoryPunctuation
}
