package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mvp-joe/project-lexis/internal/report"
	"github.com/mvp-joe/project-lexis/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for CLI commands:
// - scan prints the symbol table and methods for a single file
// - scan over a directory uses patterns and prints one section per file
// - scan --format json emits one document per file
// - scan --grammar overrides auto selection; invalid overrides are rejected
// - scan --save writes runs that history lists and --show replays
// - history --diff compares the two newest runs of a file
// - history --prune keeps the newest runs per file
// - scan on an unreadable path fails
// - methods prints only the method report
// - history without a database explains how to create one
// - formatNumber inserts thousands separators
// - version prints the build information

const twoLineFixture = "int x = 5;\nif (x == 5) { x++; }\n"

const javaFixture = `public class Calc {
    public static int add(int a, int b) {
        return a + b;
    }
    public static void main(String[] args) {
    }
}
`

func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.c"), []byte(twoLineFixture), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "Calc.java"), []byte(javaFixture), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# readme\n"), 0644))
	return root
}

func runScanForTest(t *testing.T, opts scanOptions) (string, error) {
	t.Helper()
	opts.Quiet = true
	var stdout, stderr bytes.Buffer
	err := scan(context.Background(), opts, &stdout, &stderr)
	return stdout.String(), err
}

func TestScan_SingleFileText(t *testing.T) {
	t.Parallel()

	root := setupProject(t)
	out, err := runScanForTest(t, scanOptions{
		RootDir: root,
		Paths:   []string{filepath.Join(root, "main.c")},
	})
	require.NoError(t, err)

	expected := "Keywords: if, int\n" +
		"Identifiers: x\n" +
		"Math Operators: ++, =\n" +
		"Logical Operators: ==\n" +
		"Numerical Values: 5\n" +
		"Others: ( ) ; { }\n" +
		"Methods:\n"
	assert.Equal(t, expected, out)
}

func TestScan_DirectoryText(t *testing.T) {
	t.Parallel()

	root := setupProject(t)
	out, err := runScanForTest(t, scanOptions{RootDir: root})
	require.NoError(t, err)

	assert.Contains(t, out, "== main.c (c) ==")
	assert.Contains(t, out, "== src/Calc.java (java) ==")
	assert.Contains(t, out, "add(int a, int b) {, return type: int")
	assert.NotContains(t, out, "README")
	assert.NotContains(t, out, "main(String")
}

func TestScan_JSON(t *testing.T) {
	t.Parallel()

	root := setupProject(t)
	out, err := runScanForTest(t, scanOptions{RootDir: root, Format: "json"})
	require.NoError(t, err)

	var docs []report.Document
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 2)

	assert.Equal(t, "main.c", docs[0].Path)
	assert.Equal(t, []string{"if", "int"}, docs[0].Symbols["keyword"])

	assert.Equal(t, "src/Calc.java", docs[1].Path)
	assert.Equal(t, "java", docs[1].Grammar)
	require.Len(t, docs[1].Methods, 1)
	assert.Equal(t, "add(int a, int b) {", docs[1].Methods[0].Signature)
	assert.Equal(t, "int", docs[1].Methods[0].ReturnType)
}

func TestScan_Overrides(t *testing.T) {
	t.Parallel()

	root := setupProject(t)

	// "finally" is a keyword only in the java table.
	path := filepath.Join(root, "f.c")
	require.NoError(t, os.WriteFile(path, []byte("finally;"), 0644))
	out, err := runScanForTest(t, scanOptions{RootDir: root, Paths: []string{path}})
	require.NoError(t, err)
	assert.Contains(t, out, "Keywords: \n")
	assert.Contains(t, out, "Identifiers: finally\n")

	out, err = runScanForTest(t, scanOptions{RootDir: root, Paths: []string{path}, Grammar: "java"})
	require.NoError(t, err)
	assert.Contains(t, out, "Keywords: finally\n")
	assert.Contains(t, out, "Identifiers: \n")

	_, err = runScanForTest(t, scanOptions{RootDir: root, Grammar: "cobol"})
	assert.Error(t, err)

	_, err = runScanForTest(t, scanOptions{RootDir: root, Format: "xml"})
	assert.Error(t, err)

	_, err = runScanForTest(t, scanOptions{RootDir: root, NumericMode: "fuzzy"})
	assert.Error(t, err)
}

func TestScan_UnreadablePath(t *testing.T) {
	t.Parallel()

	root := setupProject(t)
	_, err := runScanForTest(t, scanOptions{RootDir: root, Paths: []string{filepath.Join(root, "missing.c")}})
	assert.Error(t, err)
}

func TestScan_SaveAndHistory(t *testing.T) {
	t.Parallel()

	root := setupProject(t)
	_, err := runScanForTest(t, scanOptions{RootDir: root, Save: true})
	require.NoError(t, err)

	db, err := storage.Open(filepath.Join(root, ".lexis", "history.db"))
	require.NoError(t, err)
	runs, err := storage.NewReader(db).ListRuns("", 0)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.Len(t, runs, 2)

	var out bytes.Buffer
	require.NoError(t, showHistory(historyOptions{RootDir: root, Limit: 10}, &out))
	assert.Contains(t, out.String(), "RUN ID")
	assert.Contains(t, out.String(), "src/Calc.java")
	assert.Contains(t, out.String(), "main.c")

	out.Reset()
	require.NoError(t, showHistory(historyOptions{RootDir: root, File: filepath.Join(root, "src", "Calc.java"), Format: "json"}, &out))
	var summaries []storage.RunSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "src/Calc.java", summaries[0].FilePath)
	assert.Equal(t, 1, summaries[0].MethodCount)

	out.Reset()
	require.NoError(t, showHistory(historyOptions{RootDir: root, File: "main.c", Show: true}, &out))
	assert.True(t, strings.HasPrefix(out.String(), "Keywords: if, int\n"), out.String())

	err = showHistory(historyOptions{RootDir: root, File: "other.c", Show: true}, &out)
	assert.ErrorContains(t, err, "no saved runs")
}

func TestHistory_Diff(t *testing.T) {
	t.Parallel()

	root := setupProject(t)
	mainPath := filepath.Join(root, "main.c")
	save := func() {
		_, err := runScanForTest(t, scanOptions{RootDir: root, Paths: []string{mainPath}, Save: true})
		require.NoError(t, err)
	}

	var out bytes.Buffer
	save()
	err := showHistory(historyOptions{RootDir: root, File: "main.c", Diff: true}, &out)
	assert.ErrorContains(t, err, "need at least two saved runs")

	save()
	out.Reset()
	require.NoError(t, showHistory(historyOptions{RootDir: root, File: "main.c", Diff: true}, &out))
	assert.Equal(t, "No changes\n", out.String())

	require.NoError(t, os.WriteFile(mainPath, []byte("int x = 5;\nint y = 7;\n"), 0644))
	save()
	out.Reset()
	require.NoError(t, showHistory(historyOptions{RootDir: root, File: "main.c", Diff: true}, &out))
	assert.Contains(t, out.String(), "--- run ")
	assert.Contains(t, out.String(), "+++ run ")
	assert.Contains(t, out.String(), "-Keywords: if, int\n")
	assert.Contains(t, out.String(), "+Keywords: int\n")
	assert.Contains(t, out.String(), "+Identifiers: x, y\n")

	err = showHistory(historyOptions{RootDir: root, Diff: true}, &out)
	assert.ErrorContains(t, err, "requires a file")
}

func TestHistory_Prune(t *testing.T) {
	t.Parallel()

	root := setupProject(t)

	var out bytes.Buffer
	err := showHistory(historyOptions{RootDir: root, Prune: 1}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lexis scan --save")

	for i := 0; i < 3; i++ {
		_, err := runScanForTest(t, scanOptions{RootDir: root, Save: true})
		require.NoError(t, err)
	}

	err = showHistory(historyOptions{RootDir: root, Prune: -1}, &out)
	assert.ErrorContains(t, err, "--prune must be positive")

	out.Reset()
	require.NoError(t, showHistory(historyOptions{RootDir: root, File: "main.c", Prune: 1}, &out))
	assert.Equal(t, "Pruned 2 runs\n", out.String())

	out.Reset()
	require.NoError(t, showHistory(historyOptions{RootDir: root, Prune: 2}, &out))
	assert.Equal(t, "Pruned 1 runs\n", out.String())

	out.Reset()
	require.NoError(t, showHistory(historyOptions{RootDir: root, Format: "json"}, &out))
	var summaries []storage.RunSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summaries))
	require.Len(t, summaries, 3)

	perFile := map[string]int{}
	for _, s := range summaries {
		perFile[s.FilePath]++
	}
	assert.Equal(t, map[string]int{"main.c": 1, "src/Calc.java": 2}, perFile)
}

func TestHistory_MissingDatabase(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := showHistory(historyOptions{RootDir: t.TempDir()}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lexis scan --save")
}

func TestPrintMethods(t *testing.T) {
	t.Parallel()

	root := setupProject(t)
	var out bytes.Buffer
	require.NoError(t, printMethods(root, filepath.Join(root, "src", "Calc.java"), "", "", &out))
	assert.Equal(t, "Methods:\nadd(int a, int b) {, return type: int\n", out.String())

	err := printMethods(root, filepath.Join(root, "missing.java"), "", "", &out)
	assert.Error(t, err)
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.n))
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)

	assert.Contains(t, out.String(), "Lexis dev")
	assert.Contains(t, out.String(), "Git commit: none")
}
