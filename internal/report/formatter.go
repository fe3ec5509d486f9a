// Package report renders analysis results for people (text) and tools (JSON).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mvp-joe/project-lexis/internal/lexer"
	"github.com/mvp-joe/project-lexis/internal/signature"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name. Empty means FormatText.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid output format %q (valid: text, json)", s)
	}
}

// Entry is the result for one analyzed input.
type Entry struct {
	Path    string
	Grammar string
	Symbols *lexer.SymbolTable
	Methods []signature.Record

	// ShowSymbols and ShowMethods choose which sections are rendered.
	ShowSymbols bool
	ShowMethods bool
}

// Document is the JSON shape of an Entry.
type Document struct {
	Path    string              `json:"path"`
	Grammar string              `json:"grammar"`
	Symbols map[string][]string `json:"symbols,omitempty"`
	Methods []signature.Record  `json:"methods,omitempty"`
}

// FormatSymbolTable renders one line per category. "Others" is joined with
// spaces, every other category with ", ".
func FormatSymbolTable(table *lexer.SymbolTable) string {
	var sb strings.Builder
	for i, c := range lexer.Categories {
		if i > 0 {
			sb.WriteString("\n")
		}
		sep := ", "
		if c == lexer.CategoryPunctuation {
			sep = " "
		}
		sb.WriteString(fmt.Sprintf("%s: %s", c, strings.Join(table.Values(c), sep)))
	}
	return sb.String()
}

// FormatMethods renders the "Methods:" header followed by one record per line.
func FormatMethods(records []signature.Record) string {
	var sb strings.Builder
	sb.WriteString("Methods:")
	for _, r := range records {
		sb.WriteString("\n")
		sb.WriteString(r.String())
	}
	return sb.String()
}

// NewDocument converts an entry for JSON output.
func NewDocument(e Entry) Document {
	doc := Document{Path: e.Path, Grammar: e.Grammar}
	if e.ShowSymbols && e.Symbols != nil {
		doc.Symbols = SymbolMap(e.Symbols)
	}
	if e.ShowMethods {
		doc.Methods = e.Methods
	}
	return doc
}

// SymbolMap keys every category's sorted values by Category.Key.
func SymbolMap(table *lexer.SymbolTable) map[string][]string {
	out := make(map[string][]string, len(lexer.Categories))
	for _, c := range lexer.Categories {
		out[c.Key()] = table.Values(c)
	}
	return out
}

// Write renders entries in the given format. Text output prefixes each
// entry with its path when there is more than one.
func Write(w io.Writer, format Format, entries []Entry) error {
	if format == FormatJSON {
		docs := make([]Document, 0, len(entries))
		for _, e := range entries {
			docs = append(docs, NewDocument(e))
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(docs); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return nil
	}

	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		if len(entries) > 1 {
			sb.WriteString(fmt.Sprintf("== %s (%s) ==\n", e.Path, e.Grammar))
		}
		sb.WriteString(renderText(e))
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
