package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mvp-joe/project-lexis/internal/analyzer"
	"github.com/mvp-joe/project-lexis/internal/lexer"
	"github.com/mvp-joe/project-lexis/internal/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for MCP tools:
// - NewServer registers both tools and rejects a nil analyzer
// - lexis_classify classifies inline text with the default grammar
// - lexis_classify reads files relative to the project root and picks java for .java
// - lexis_classify honours an explicit numeric_mode
// - lexis_methods extracts records, keeps duplicates and excludes main
// - Requests with neither or both inputs are tool errors
// - Unknown grammars, missing files and paths outside the root are tool errors
// - String-typed arguments are coerced by bindArguments

func newTestAnalyzer(t *testing.T) (*analyzer.Analyzer, string) {
	t.Helper()
	root := t.TempDir()
	a, err := analyzer.New(&analyzer.Config{
		RootDir:      root,
		CodePatterns: []string{"**/*.c", "**/*.java"},
		Grammar:      analyzer.GrammarAuto,
		Grammars: map[string]lexer.Grammar{
			"mini": {Name: "mini", Keywords: []string{"let"}},
		},
		Symbols: true,
		Methods: true,
	}, nil)
	require.NoError(t, err)
	return a, root
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	result, err := handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "expected text content")
	return textContent.Text
}

func decodeResult[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, result.IsError, resultText(t, result))
	var out T
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	return out
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	a, _ := newTestAnalyzer(t)
	s, err := NewServer(a, "test")
	require.NoError(t, err)
	require.NotNil(t, s.MCPServer())

	tools := s.MCPServer().ListTools()
	assert.Contains(t, tools, "lexis_classify")
	assert.Contains(t, tools, "lexis_methods")

	_, err = NewServer(nil, "test")
	assert.Error(t, err)
}

func TestClassifyHandler_Text(t *testing.T) {
	t.Parallel()

	a, _ := newTestAnalyzer(t)
	result := callTool(t, createClassifyHandler(a), map[string]interface{}{
		"text": "int x = 5;\nif (x == 5) { x++; }",
	})

	resp := decodeResult[ClassifyResponse](t, result)
	assert.Equal(t, "input", resp.Path)
	assert.Equal(t, "c", resp.Grammar)
	assert.Equal(t, []string{"if", "int"}, resp.Symbols["keyword"])
	assert.Equal(t, []string{"x"}, resp.Symbols["identifier"])
	assert.Equal(t, []string{"++", "="}, resp.Symbols["math_operator"])
	assert.Equal(t, []string{"=="}, resp.Symbols["logic_operator"])
	assert.Equal(t, []string{"5"}, resp.Symbols["numeric"])
	assert.Len(t, resp.Symbols["punctuation"], 5)
	assert.Equal(t, 12, resp.Total)
}

func TestClassifyHandler_File(t *testing.T) {
	t.Parallel()

	a, root := newTestAnalyzer(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "A.java"), []byte("double d;"), 0644))

	result := callTool(t, createClassifyHandler(a), map[string]interface{}{
		"file_path": "src/A.java",
	})

	resp := decodeResult[ClassifyResponse](t, result)
	assert.Equal(t, "src/A.java", resp.Path)
	assert.Equal(t, "java", resp.Grammar)
	// The java table tries "double" before "do".
	assert.Equal(t, []string{"double"}, resp.Symbols["keyword"])
	assert.Equal(t, []string{"d"}, resp.Symbols["identifier"])
}

func TestClassifyHandler_GrammarAndNumericMode(t *testing.T) {
	t.Parallel()

	a, _ := newTestAnalyzer(t)
	handler := createClassifyHandler(a)

	loose := decodeResult[ClassifyResponse](t, callTool(t, handler, map[string]interface{}{
		"text": "v 1.2.3",
	}))
	assert.Equal(t, []string{"1.2.3"}, loose.Symbols["numeric"])

	strict := decodeResult[ClassifyResponse](t, callTool(t, handler, map[string]interface{}{
		"text":         "v 1.2.3",
		"numeric_mode": "strict",
	}))
	assert.Empty(t, strict.Symbols["numeric"])
	assert.Contains(t, strict.Symbols["identifier"], "1.2.3")

	custom := decodeResult[ClassifyResponse](t, callTool(t, handler, map[string]interface{}{
		"text":    "let y",
		"grammar": "mini",
	}))
	assert.Equal(t, "mini", custom.Grammar)
	assert.Equal(t, []string{"let"}, custom.Symbols["keyword"])
}

func TestMethodsHandler(t *testing.T) {
	t.Parallel()

	a, root := newTestAnalyzer(t)
	src := "public class Calc {\n" +
		"  public static int add(int a, int b) {\n" +
		"  public static void main(String[] args) {\n" +
		"  public static int add(int a, int b) {\n" +
		"}\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "Calc.java"), []byte(src), 0644))

	resp := decodeResult[MethodsResponse](t, callTool(t, createMethodsHandler(a), map[string]interface{}{
		"file_path": "Calc.java",
	}))

	want := signature.Record{Signature: "add(int a, int b) {", ReturnType: "int"}
	assert.Equal(t, "Calc.java", resp.Path)
	assert.Equal(t, "java", resp.Grammar)
	assert.Equal(t, []signature.Record{want, want}, resp.Methods)
	assert.Equal(t, 2, resp.Total)

	empty := decodeResult[MethodsResponse](t, callTool(t, createMethodsHandler(a), map[string]interface{}{
		"text": "int x = 5;",
	}))
	assert.Empty(t, empty.Methods)
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, "input", empty.Path)
}

func TestHandlers_ReportRootRelativePath(t *testing.T) {
	t.Parallel()

	a, root := newTestAnalyzer(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg", "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "sub", "B.java"),
		[]byte("public int size() {\n"), 0644))

	args := map[string]interface{}{"file_path": "pkg/./sub/B.java"}

	classified := decodeResult[ClassifyResponse](t, callTool(t, createClassifyHandler(a), args))
	assert.Equal(t, "pkg/sub/B.java", classified.Path)
	assert.NotContains(t, classified.Path, root)

	methods := decodeResult[MethodsResponse](t, callTool(t, createMethodsHandler(a), args))
	assert.Equal(t, "pkg/sub/B.java", methods.Path)
	require.Len(t, methods.Methods, 1)
	assert.Equal(t, "size() {", methods.Methods[0].Signature)
}

func TestHandlers_ToolErrors(t *testing.T) {
	t.Parallel()

	a, _ := newTestAnalyzer(t)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"no input", map[string]interface{}{}, "exactly one of text or file_path"},
		{"both inputs", map[string]interface{}{"text": "x", "file_path": "a.c"}, "exactly one of text or file_path"},
		{"unknown grammar", map[string]interface{}{"text": "x", "grammar": "cobol"}, "unknown grammar"},
		{"missing file", map[string]interface{}{"file_path": "missing.c"}, "missing.c"},
		{"outside root", map[string]interface{}{"file_path": "../etc/passwd"}, "outside project root"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			for _, handler := range []func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
				createClassifyHandler(a),
				createMethodsHandler(a),
			} {
				result := callTool(t, handler, tt.args)
				assert.True(t, result.IsError)
				assert.Contains(t, resultText(t, result), tt.want)
			}
		})
	}
}

func TestClassifyHandler_InvalidNumericMode(t *testing.T) {
	t.Parallel()

	a, _ := newTestAnalyzer(t)
	result := callTool(t, createClassifyHandler(a), map[string]interface{}{
		"text":         "x",
		"numeric_mode": "fuzzy",
	})
	assert.True(t, result.IsError)
}

func TestHandlers_InvalidArgumentsFormat(t *testing.T) {
	t.Parallel()

	a, _ := newTestAnalyzer(t)
	result, err := createMethodsHandler(a)(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: "not a map"},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "invalid arguments format")
}

type fakeArgs map[string]interface{}

func (f fakeArgs) GetArguments() map[string]interface{} { return f }

func TestBindArguments_CoercesStrings(t *testing.T) {
	t.Parallel()

	var out struct {
		Text   string   `json:"text"`
		Limit  int      `json:"limit,omitempty"`
		Strict bool     `json:"strict,omitempty"`
		Tags   []string `json:"tags,omitempty"`
	}

	err := bindArguments(fakeArgs{
		"text":   "int x;",
		"limit":  "10",
		"strict": "true",
		"tags":   `["a", "b"]`,
	}, &out)
	require.NoError(t, err)

	assert.Equal(t, "int x;", out.Text)
	assert.Equal(t, 10, out.Limit)
	assert.True(t, out.Strict)
	assert.Equal(t, []string{"a", "b"}, out.Tags)
}
