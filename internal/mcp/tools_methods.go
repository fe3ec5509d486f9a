package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/project-lexis/internal/analyzer"
	"github.com/mvp-joe/project-lexis/internal/signature"
)

// MethodsResponse is the lexis_methods result.
type MethodsResponse struct {
	Path    string             `json:"path"`
	Grammar string             `json:"grammar"`
	Methods []signature.Record `json:"methods"`
	Total   int                `json:"total"`
}

// AddMethodsTool registers the lexis_methods tool with an MCP server.
func AddMethodsTool(s *server.MCPServer, a *analyzer.Analyzer) {
	tool := mcp.NewTool(
		"lexis_methods",
		mcp.WithDescription("Extract method signatures with their return types from single-line method headers. Methods named main are excluded."),
		mcp.WithString("text",
			mcp.Description("Source text to scan. Provide this or file_path.")),
		mcp.WithString("file_path",
			mcp.Description("File to scan, relative to the project root. Provide this or text.")),
		mcp.WithString("grammar",
			mcp.Description("Grammar name supplying visibility and return type tables (default: chosen from the file extension)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createMethodsHandler(a))
}

// createMethodsHandler creates the handler function for the lexis_methods tool.
func createMethodsHandler(a *analyzer.Analyzer) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, ok := request.GetRawArguments().(map[string]interface{}); !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		var req inputRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		in, err := openInput(a, req)
		if err != nil {
			return toolError(err)
		}
		defer in.Close()

		extractor, err := signature.NewExtractor(in.grammar)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := extractor.Scan(in.reader.Lines()); err != nil {
			return nil, err
		}
		if err := in.reader.Err(); err != nil {
			return toolError(fmt.Errorf("%w: %v", errUser, err))
		}

		methods := extractor.Records()
		return marshalToolResponse(&MethodsResponse{
			Path:    in.name,
			Grammar: in.grammar.Name,
			Methods: methods,
			Total:   len(methods),
		})
	}
}
