package signature

import (
	"slices"
	"testing"

	"github.com/mvp-joe/project-lexis/internal/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Extractor:
// - Static method: name, parameters and trailing brace are kept, whitespace collapsed
// - Instance method without "static" matches
// - main is excluded, but names that merely contain "main" are not
// - Lines without visibility, with object return types or with digits in the name are skipped
// - Underscore-prefixed names match
// - Record order and duplicates are preserved
// - Scan is one-shot
// - Grammar without visibility or return types is rejected

func newJavaExtractor(t *testing.T) *Extractor {
	t.Helper()
	g, err := lexer.LookupGrammar("java")
	require.NoError(t, err)
	e, err := NewExtractor(g)
	require.NoError(t, err)
	return e
}

func TestExtractLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		want    Record
		matched bool
	}{
		{
			name:    "static method",
			line:    "public static int add(int a, int b) {",
			want:    Record{Signature: "add(int a, int b) {", ReturnType: "int"},
			matched: true,
		},
		{
			name:    "collapses whitespace",
			line:    "   private   void   reset (  int   x )   {   ",
			want:    Record{Signature: "reset( int x ) {", ReturnType: "void"},
			matched: true,
		},
		{
			name:    "protected boolean",
			line:    "protected boolean isEmpty() { return size == 0; }",
			want:    Record{Signature: "isEmpty() { return size == 0; }", ReturnType: "boolean"},
			matched: true,
		},
		{
			name:    "underscore prefix",
			line:    "public double _scale(double f);",
			want:    Record{Signature: "_scale(double f);", ReturnType: "double"},
			matched: true,
		},
		{
			name:    "domain is not main",
			line:    "public long domain() {",
			want:    Record{Signature: "domain() {", ReturnType: "long"},
			matched: true,
		},
		{name: "main excluded", line: "public static void main(String[] args) {"},
		{name: "object return type", line: "public String name() {"},
		{name: "no visibility", line: "static int helper(int x) {"},
		{name: "digit in name", line: "public int add2(int a) {"},
		{name: "field declaration", line: "private int count = 0;"},
		{name: "empty", line: ""},
	}

	e := newJavaExtractor(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.ExtractLine(tt.line)
			assert.Equal(t, tt.matched, ok)
			if tt.matched {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestScan_PreservesOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	e := newJavaExtractor(t)
	require.NoError(t, e.Scan(slices.Values([]string{
		"public class Calc {",
		"    public int add(int a, int b) {",
		"        return a + b;",
		"    }",
		"    public static void main(String[] args) {",
		"    private float ratio() {",
		"    public int add(int a, int b) {",
		"}",
	})))

	assert.Equal(t, []Record{
		{Signature: "add(int a, int b) {", ReturnType: "int"},
		{Signature: "ratio() {", ReturnType: "float"},
		{Signature: "add(int a, int b) {", ReturnType: "int"},
	}, e.Records())
}

func TestScan_IsOneShot(t *testing.T) {
	t.Parallel()

	e := newJavaExtractor(t)
	require.NoError(t, e.Scan(slices.Values([]string{"public void a() {"})))

	err := e.Scan(slices.Values([]string{"public void b() {"}))
	assert.ErrorIs(t, err, ErrAlreadyScanned)
	assert.Len(t, e.Records(), 1)
}

func TestRecord_String(t *testing.T) {
	t.Parallel()

	r := Record{Signature: "add(int a, int b) {", ReturnType: "int"}
	assert.Equal(t, "add(int a, int b) {, return type: int", r.String())
}

func TestNewExtractor_RequiresTables(t *testing.T) {
	t.Parallel()

	_, err := NewExtractor(lexer.Grammar{Name: "bare", ReturnTypes: []string{"int"}})
	assert.Error(t, err)

	_, err = NewExtractor(lexer.Grammar{Name: "bare", Visibility: []string{"public"}})
	assert.Error(t, err)
}
