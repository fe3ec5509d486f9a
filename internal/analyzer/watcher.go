package analyzer

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeHandler receives the results of a re-analysis.
type ChangeHandler func(results []*FileResult)

// Watcher watches the root directory and re-analyzes changed source files.
type Watcher struct {
	analyzer     *Analyzer
	rootDir      string
	watcher      *fsnotify.Watcher
	onChange     ChangeHandler
	debounceTime time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
	stopOnce     sync.Once
	started      atomic.Bool
}

// NewWatcher creates a watcher over the analyzer's root directory.
func NewWatcher(a *Analyzer, onChange ChangeHandler) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	rootDir := a.discovery.rootDir
	w := &Watcher{
		analyzer:     a,
		rootDir:      rootDir,
		watcher:      watcher,
		onChange:     onChange,
		debounceTime: 500 * time.Millisecond,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}

	if _, err := os.Stat(rootDir); err != nil {
		watcher.Close()
		return nil, err
	}
	if err := w.addDirectoriesRecursively(rootDir); err != nil {
		watcher.Close()
		return nil, err
	}

	return w, nil
}

// Start begins watching for file changes.
func (w *Watcher) Start(ctx context.Context) {
	if w.started.CompareAndSwap(false, true) {
		go w.watch(ctx)
	}
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.started.Load() {
			<-w.doneCh
		}
		w.watcher.Close()
	})
}

// watch is the main event loop with debouncing logic.
func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	var debounceTimer *time.Timer
	reanalyzeCh := make(chan struct{}, 1)
	changedFiles := make(map[string]bool)

	stopTimer := func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return

		case <-w.stopCh:
			stopTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// New directories must be added explicitly.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if w.shouldWatchDirectory(event.Name) {
						if err := w.addDirectoriesRecursively(event.Name); err != nil {
							log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
						}
					}
					continue
				}
			}

			if !w.shouldProcessEvent(event) {
				continue
			}
			changedFiles[event.Name] = true

			stopTimer()
			debounceTimer = time.AfterFunc(w.debounceTime, func() {
				select {
				case reanalyzeCh <- struct{}{}:
				default:
				}
			})

		case <-reanalyzeCh:
			w.reanalyze(ctx, changedFiles)
			changedFiles = make(map[string]bool)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

// reanalyze analyzes the changed files that still exist.
func (w *Watcher) reanalyze(ctx context.Context, changedFiles map[string]bool) {
	paths := make([]string, 0, len(changedFiles))
	for path := range changedFiles {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			paths = append(paths, path)
		}
	}
	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	log.Printf("Re-analyzing %d changed file(s)...", len(paths))

	results := make([]*FileResult, 0, len(paths))
	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		result, err := w.analyzer.AnalyzeFile(path)
		if err != nil {
			log.Printf("Warning: failed to analyze %s: %v", path, err)
			continue
		}
		results = append(results, result)
	}

	if len(results) > 0 && w.onChange != nil {
		w.onChange(results)
	}
}

// shouldProcessEvent checks if an event should trigger re-analysis.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}

	relPath, err := filepath.Rel(w.rootDir, event.Name)
	if err != nil {
		return false
	}

	return w.analyzer.discovery.Matches(filepath.ToSlash(relPath))
}

// shouldWatchDirectory checks if a directory should be watched.
func (w *Watcher) shouldWatchDirectory(path string) bool {
	relPath, err := filepath.Rel(w.rootDir, path)
	if err != nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)
	if relPath == "." {
		return true
	}
	return !w.analyzer.discovery.shouldIgnore(relPath)
}

// addDirectoriesRecursively adds all directories in the tree to the watcher.
func (w *Watcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Log but continue - don't fail the entire watch for one directory
			log.Printf("Warning: error accessing %s: %v", path, err)
			return nil
		}

		if !info.IsDir() {
			return nil
		}

		if !w.shouldWatchDirectory(path) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to watch directory %s: %v", path, err)
			return nil
		}

		return nil
	})
}
