// Package watch re-runs a callback when files under a plugin source change.
// Bursts of events are coalesced: the callback runs once the tree has been
// quiet for the debounce interval.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// DefaultDebounce is the quiet period before the callback runs
const DefaultDebounce = 300 * time.Millisecond

var (
	// ErrNotDirectory indicates the watch root is not a directory
	ErrNotDirectory = errors.New("watch path is not a directory")

	// ErrInvalidPattern indicates an exclude pattern could not be compiled
	ErrInvalidPattern = errors.New("invalid exclude pattern")
)

// DefaultExcludes are never worth a re-sync
var DefaultExcludes = []string{".git", "node_modules", "*.swp", "*~", ".DS_Store"}

// Config configures a Watcher
type Config struct {
	// Root is the directory watched recursively
	Root string

	// ExcludePatterns are globs matched against the relative path and the base name
	ExcludePatterns []string

	Debounce time.Duration
}

// Handler receives the relative paths that changed since the last call
type Handler func(ctx context.Context, changed []string)

// Watcher watches a directory tree with fsnotify
type Watcher struct {
	config   Config
	watcher  *fsnotify.Watcher
	excludes []glob.Glob
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	fire    chan struct{}
}

// New creates a Watcher; a nil logger uses the default
func New(config Config, logger *slog.Logger) (*Watcher, error) {
	info, err := os.Stat(config.Root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, ErrNotDirectory
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	patterns := append(append([]string{}, DefaultExcludes...), config.ExcludePatterns...)
	excludes := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, errors.Join(ErrInvalidPattern, err)
		}
		excludes = append(excludes, g)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		config:   config,
		watcher:  fw,
		excludes: excludes,
		logger:   logger,
		pending:  make(map[string]struct{}),
		fire:     make(chan struct{}, 1),
	}, nil
}

// Run watches until ctx is cancelled. fn runs on the calling goroutine,
// so invocations never overlap.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	defer w.close()

	if err := w.addRecursive(w.config.Root); err != nil {
		return err
	}
	w.logger.Debug("watching", "root", w.config.Root, "debounce", w.config.Debounce)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		case <-w.fire:
			if changed := w.drain(); len(changed) > 0 {
				fn(ctx, changed)
			}
		}
	}
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.config.Root && w.excluded(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) handle(event fsnotify.Event) {
	if w.excluded(event.Name) {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(event.Name)
		}
	}

	rel, err := filepath.Rel(w.config.Root, event.Name)
	if err != nil {
		rel = event.Name
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[filepath.ToSlash(rel)] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.config.Debounce, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	w.pending = make(map[string]struct{})
	sort.Strings(changed)
	return changed
}

// excluded matches the path relative to the root, and each of its segments
func (w *Watcher) excluded(path string) bool {
	rel, err := filepath.Rel(w.config.Root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, g := range w.excludes {
		if g.Match(rel) {
			return true
		}
		for dir := rel; dir != "." && dir != "/" && dir != ""; dir = filepath.ToSlash(filepath.Dir(dir)) {
			if g.Match(filepath.Base(dir)) {
				return true
			}
		}
	}
	return false
}

func (w *Watcher) close() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	_ = w.watcher.Close()
}
