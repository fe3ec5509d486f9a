package report

import (
	"fmt"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// diffContext is the number of context lines in unified hunks.
const diffContext = 3

// Diff renders both entries as text and returns a unified diff from a to b.
// An empty string means the reports are identical.
func Diff(aName, bName string, a, b Entry) (string, error) {
	u := difflib.UnifiedDiff{
		A:        difflib.SplitLines(renderText(a)),
		B:        difflib.SplitLines(renderText(b)),
		FromFile: aName,
		ToFile:   bName,
		Context:  diffContext,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return "", fmt.Errorf("failed to diff reports: %w", err)
	}
	return s, nil
}

// renderText renders a single entry without the path header.
func renderText(e Entry) string {
	var out string
	if e.ShowSymbols && e.Symbols != nil {
		out += FormatSymbolTable(e.Symbols) + "\n"
	}
	if e.ShowMethods {
		out += FormatMethods(e.Methods) + "\n"
	}
	return out
}
