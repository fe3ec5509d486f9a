package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/project-lexis/internal/analyzer"
	"github.com/mvp-joe/project-lexis/internal/lexer"
	"github.com/mvp-joe/project-lexis/internal/report"
)

// ClassifyRequest holds the lexis_classify arguments.
type ClassifyRequest struct {
	Text        string `json:"text,omitempty"`
	FilePath    string `json:"file_path,omitempty"`
	Grammar     string `json:"grammar,omitempty"`
	NumericMode string `json:"numeric_mode,omitempty"`
}

// ClassifyResponse is the lexis_classify result.
type ClassifyResponse struct {
	Path    string              `json:"path"`
	Grammar string              `json:"grammar"`
	Symbols map[string][]string `json:"symbols"`
	Total   int                 `json:"total"`
}

// AddClassifyTool registers the lexis_classify tool with an MCP server.
func AddClassifyTool(s *server.MCPServer, a *analyzer.Analyzer) {
	tool := mcp.NewTool(
		"lexis_classify",
		mcp.WithDescription("Classify the tokens of source text into keywords, identifiers, math operators, logical operators, numerical values and others. Each category is a set of distinct tokens."),
		mcp.WithString("text",
			mcp.Description("Source text to classify. Provide this or file_path.")),
		mcp.WithString("file_path",
			mcp.Description("File to classify, relative to the project root. Provide this or text.")),
		mcp.WithString("grammar",
			mcp.Description("Grammar name: c, java or a configured grammar (default: chosen from the file extension)")),
		mcp.WithString("numeric_mode",
			mcp.Description("Numeric rule: loose (default, anything containing '.') or strict")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createClassifyHandler(a))
}

// createClassifyHandler creates the handler function for the lexis_classify tool.
func createClassifyHandler(a *analyzer.Analyzer) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, ok := request.GetRawArguments().(map[string]interface{}); !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		var req ClassifyRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		mode := a.Config().NumericMode
		if req.NumericMode != "" {
			parsed, err := lexer.ParseNumericMode(req.NumericMode)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			mode = parsed
		}

		in, err := openInput(a, inputRequest{Text: req.Text, FilePath: req.FilePath, Grammar: req.Grammar})
		if err != nil {
			return toolError(err)
		}
		defer in.Close()

		classifier := lexer.NewClassifier(in.grammar, lexer.WithNumericMode(mode))
		if err := classifier.Scan(in.reader.Lines()); err != nil {
			return nil, err
		}
		if err := in.reader.Err(); err != nil {
			return toolError(fmt.Errorf("%w: %v", errUser, err))
		}

		symbols := classifier.Symbols()
		return marshalToolResponse(&ClassifyResponse{
			Path:    in.name,
			Grammar: in.grammar.Name,
			Symbols: report.SymbolMap(symbols),
			Total:   symbols.Total(),
		})
	}
}
