package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Watcher:
// - NewWatcher fails for a missing root directory
// - Writing a matching file triggers re-analysis with fresh results
// - Non-matching and ignored files are filtered out
// - Stop is idempotent and context cancellation ends the loop

func TestNewWatcher_MissingRoot(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer(t, filepath.Join(t.TempDir(), "missing"))
	_, err := NewWatcher(a, nil)
	assert.Error(t, err)
}

func TestWatcher_ReanalyzesChangedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "main.c", "int a;")

	a := newTestAnalyzer(t, dir)
	changes := make(chan []*FileResult, 4)
	w, err := NewWatcher(a, func(results []*FileResult) { changes <- results })
	require.NoError(t, err)
	w.debounceTime = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("float b = 2.5;"), 0644))

	select {
	case results := <-changes:
		require.Len(t, results, 1)
		assert.Equal(t, path, results[0].Path)
		assert.Equal(t, []string{"float"}, results[0].Symbols.Keywords())
		assert.Equal(t, []string{"2.5"}, results[0].Symbols.NumericValues())
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for re-analysis")
	}
}

func TestWatcher_ShouldProcessEvent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := newTestAnalyzer(t, dir)
	w, err := NewWatcher(a, nil)
	require.NoError(t, err)
	defer w.Stop()

	assert.True(t, w.shouldProcessEvent(fsnotify.Event{Name: filepath.Join(dir, "x.c"), Op: fsnotify.Write}))
	assert.True(t, w.shouldProcessEvent(fsnotify.Event{Name: filepath.Join(dir, "src", "X.java"), Op: fsnotify.Create}))
	assert.False(t, w.shouldProcessEvent(fsnotify.Event{Name: filepath.Join(dir, "x.c"), Op: fsnotify.Remove}))
	assert.False(t, w.shouldProcessEvent(fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Write}))
	assert.False(t, w.shouldProcessEvent(fsnotify.Event{Name: filepath.Join(dir, "build", "gen.c"), Op: fsnotify.Write}))
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer(t, t.TempDir())
	w, err := NewWatcher(a, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		w.Stop()
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
