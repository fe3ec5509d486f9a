package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mvp-joe/project-lexis/internal/analyzer"
	"github.com/mvp-joe/project-lexis/internal/lexer"
	"github.com/mvp-joe/project-lexis/internal/source"
)

// inputRequest is shared by every tool: exactly one of Text or FilePath.
type inputRequest struct {
	Text     string `json:"text,omitempty"`
	FilePath string `json:"file_path,omitempty"`
	Grammar  string `json:"grammar,omitempty"`
}

// errUser marks errors that are reported to the client as tool errors
// instead of failing the call.
var errUser = errors.New("invalid request")

// input is an opened tool input. Close must be called.
type input struct {
	// name is what responses report: "input" for text, the client's
	// root-relative path for files.
	name    string
	reader  *source.Reader
	file    *source.File
	grammar lexer.Grammar
}

func (in *input) Close() {
	if in.file != nil {
		in.file.Close()
	}
}

// openInput resolves the grammar and opens the text or file named by req.
// File paths are resolved against the project root and may not escape it.
func openInput(a *analyzer.Analyzer, req inputRequest) (*input, error) {
	hasText := req.Text != ""
	hasFile := strings.TrimSpace(req.FilePath) != ""
	if hasText == hasFile {
		return nil, fmt.Errorf("%w: provide exactly one of text or file_path", errUser)
	}

	name := "input"
	var path string
	if hasFile {
		resolved, err := resolvePath(a.Config().RootDir, req.FilePath)
		if err != nil {
			return nil, err
		}
		path = resolved
		name = filepath.ToSlash(filepath.Clean(req.FilePath))
	}

	grammar, err := resolveGrammar(a, req.Grammar, name)
	if err != nil {
		return nil, err
	}

	if !hasFile {
		return &input{
			name:    name,
			reader:  source.NewReader(name, strings.NewReader(req.Text)),
			grammar: grammar,
		}, nil
	}

	f, err := source.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUser, err)
	}
	return &input{name: name, reader: f.Reader, file: f, grammar: grammar}, nil
}

// resolveGrammar picks the named grammar, or the analyzer's choice for
// path when name is empty.
func resolveGrammar(a *analyzer.Analyzer, name, path string) (lexer.Grammar, error) {
	if name == "" {
		g, err := a.GrammarFor(path)
		if err != nil {
			return lexer.Grammar{}, err
		}
		return g, nil
	}
	if g, ok := a.Config().Grammars[name]; ok {
		return g.Clone(), nil
	}
	g, err := lexer.LookupGrammar(name)
	if err != nil {
		return lexer.Grammar{}, fmt.Errorf("%w: %v", errUser, err)
	}
	return g, nil
}

func resolvePath(rootDir, path string) (string, error) {
	if rootDir == "" {
		rootDir = "."
	}
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project root: %w", err)
	}

	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(root, path)
	}
	full = filepath.Clean(full)

	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside project root", errUser, path)
	}
	return full, nil
}

// toolError converts user errors to tool results and passes system errors
// through.
func toolError(err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, errUser) || errors.Is(err, lexer.ErrUnknownGrammar) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}

// marshalToolResponse marshals a response object to JSON and returns it as an MCP tool result.
func marshalToolResponse(response interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
