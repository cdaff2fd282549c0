// Package watcher emits debounced batches of changed Rust source files.
package watcher

import (
	"crypto/sha256"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	"usetidy/internal/shared/observability"
)

// Watcher watches directory trees recursively and reports modified files
// through a callback once the debounce window closes. Include and exclude
// patterns are matched against paths relative to the project root, using
// '/' as separator on every platform.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	root       string
	include    []glob.Glob
	exclude    []glob.Glob
	onChange   func([]string)
	callbackMu sync.Mutex

	debounce  time.Duration
	pending   map[string]time.Time
	pendingMu sync.Mutex
	timer     *time.Timer

	// hashes holds the last seen content digest per file so editor saves
	// that do not change bytes (and our own rewrites, via Prime) are
	// dropped before they reach the callback.
	hashes   map[string][sha256.Size]byte
	hashesMu sync.Mutex
}

// NewWatcher compiles the glob filters and prepares a watcher rooted at root.
// The callback receives absolute paths as passed to Watch.
func NewWatcher(root string, include, exclude []string, debounce time.Duration, onChange func([]string)) (*Watcher, error) {
	if onChange == nil {
		return nil, os.ErrInvalid
	}

	compiledInclude := make([]glob.Glob, 0, len(include))
	for _, pattern := range include {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		compiledInclude = append(compiledInclude, g)
	}

	compiledExclude := make([]glob.Glob, 0, len(exclude))
	for _, pattern := range exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		compiledExclude = append(compiledExclude, g)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher: fsw,
		root:      root,
		include:   compiledInclude,
		exclude:   compiledExclude,
		debounce:  debounce,
		onChange:  onChange,
		pending:   make(map[string]time.Time),
		hashes:    make(map[string][sha256.Size]byte),
	}, nil
}

// SetDebounce adjusts the debounce window, e.g. after a config reload.
func (w *Watcher) SetDebounce(debounce time.Duration) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	w.debounce = debounce
}

// Watch registers the given directories recursively and starts the event loop.
func (w *Watcher) Watch(paths []string) error {
	for _, path := range paths {
		if err := w.watchRecursive(path); err != nil {
			return err
		}
	}

	go w.run()
	return nil
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if w.shouldExcludeDir(path) {
				return filepath.SkipDir
			}
			return w.fsWatcher.Add(path)
		}

		return nil
	})
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()

			if event.Op&fsnotify.Create == fsnotify.Create {
				info, err := os.Stat(event.Name)
				if err == nil && info.IsDir() {
					if !w.shouldExcludeDir(event.Name) {
						if err := w.watchRecursive(event.Name); err != nil {
							slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
						} else {
							w.enqueueExistingFiles(event.Name)
						}
					}
					continue
				}
			}

			if w.shouldExcludeFile(event.Name) {
				continue
			}

			switch {
			case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
				if w.contentChanged(event.Name) {
					w.scheduleChange(event.Name)
				}
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				w.forget(event.Name)
				w.scheduleChange(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

// Prime records content as the known state of path. The organize loop calls
// it right before rewriting a file so the resulting fsnotify event is not
// reported back as a fresh change.
func (w *Watcher) Prime(path string, content []byte) {
	w.hashesMu.Lock()
	defer w.hashesMu.Unlock()
	w.hashes[filepath.Clean(path)] = sha256.Sum256(content)
}

func (w *Watcher) contentChanged(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		// Gone between event and read. Report it and let the run skip it.
		w.forget(path)
		return true
	}

	sum := sha256.Sum256(data)

	w.hashesMu.Lock()
	defer w.hashesMu.Unlock()
	key := filepath.Clean(path)
	if prev, ok := w.hashes[key]; ok && prev == sum {
		return false
	}
	w.hashes[key] = sum
	return true
}

func (w *Watcher) forget(path string) {
	w.hashesMu.Lock()
	defer w.hashesMu.Unlock()
	delete(w.hashes, filepath.Clean(path))
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = time.Now()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		w.flushChanges()
	})
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]time.Time)
	w.pendingMu.Unlock()

	if len(paths) > 0 {
		w.callbackMu.Lock()
		defer w.callbackMu.Unlock()
		w.onChange(paths)
	}
}

// relPath maps an absolute event path onto the slash-separated form the
// configured globs are written against.
func (w *Watcher) relPath(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(filepath.Clean(path))
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) shouldExcludeDir(path string) bool {
	rel := w.relPath(path)
	if rel == "." {
		return false
	}
	// Trailing slash lets "target/**" style patterns match the directory
	// itself, not only its children.
	return matchAny(w.exclude, rel+"/")
}

func (w *Watcher) shouldExcludeFile(path string) bool {
	rel := w.relPath(path)
	if matchAny(w.exclude, rel) {
		return true
	}
	if len(w.include) > 0 && !matchAny(w.include, rel) {
		return true
	}
	return false
}

func matchAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

func (w *Watcher) Close() error {
	if w.timer != nil {
		w.timer.Stop()
	}
	return w.fsWatcher.Close()
}

func (w *Watcher) enqueueExistingFiles(root string) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		if w.shouldExcludeFile(path) {
			return nil
		}
		if w.contentChanged(path) {
			w.scheduleChange(path)
		}
		return nil
	})
}
