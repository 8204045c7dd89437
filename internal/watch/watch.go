// Package watch keeps the document store in step with a source tree. It
// recursively watches a directory with fsnotify, filters out ignored
// directories and non C/C++ files, and debounces bursts of events per path
// before re-serializing or forgetting the file.
package watch

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jward/cppdriver"
	"github.com/jward/cppdriver/internal/parser"
)

// DefaultDebounce is how long a path must be quiet before it is handled.
const DefaultDebounce = 50 * time.Millisecond

// Indexer is what the watcher drives. *cppdriver.Driver implements it.
type Indexer interface {
	IndexFiles(ctx context.Context, paths []string) (cppdriver.IndexResult, error)
	RemoveFile(path string) error
}

// Event reports one handled path.
type Event struct {
	Path    string
	Removed bool
	Err     error
}

// Watcher watches one directory tree.
type Watcher struct {
	fw       *fsnotify.Watcher
	idx      Indexer
	log      *slog.Logger
	debounce time.Duration
	ignore   map[string]bool
	notify   func(Event)

	root    string
	ctx     context.Context
	mu      sync.Mutex
	timers  map[string]*time.Timer
	done    chan struct{}
	stopped bool
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithIgnore adds directory names to skip on top of cppdriver.SkipDir.
func WithIgnore(names ...string) Option {
	return func(w *Watcher) {
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				w.ignore[n] = true
			}
		}
	}
}

// WithNotify calls fn after each handled path, from the handling
// goroutine.
func WithNotify(fn func(Event)) Option {
	return func(w *Watcher) {
		w.notify = fn
	}
}

// New creates a Watcher feeding idx.
func New(idx Indexer, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fw:       fw,
		idx:      idx,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		debounce: DefaultDebounce,
		ignore:   make(map[string]bool),
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch starts monitoring root recursively. It returns once every existing
// directory is registered; events are handled in the background until ctx
// is done or Stop is called.
func (w *Watcher) Watch(ctx context.Context, root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	w.root = absRoot
	w.ctx = ctx

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != absRoot && w.ignoredDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fw.Add(path)
	})
	if err != nil {
		return err
	}

	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "err", err)

		case <-ctx.Done():
			go w.Stop()
			return

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if w.ignoredPath(path) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.fw.Add(path); err != nil {
				w.log.Warn("watch directory", "path", path, "err", err)
			}
			return
		}
	}

	if _, ok := parser.DialectForFile(path); !ok {
		return
	}
	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.schedule(path)
	}
}

// schedule (re)starts path's quiet-period timer.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() { w.flush(path) })
}

func (w *Watcher) flush(path string) {
	w.mu.Lock()
	delete(w.timers, path)
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	ev := Event{Path: path}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		ev.Removed = true
		ev.Err = w.idx.RemoveFile(path)
	} else {
		_, ev.Err = w.idx.IndexFiles(w.ctx, []string{path})
	}

	if ev.Err != nil {
		w.log.Warn("file not updated", "path", path, "removed", ev.Removed, "err", ev.Err)
	} else {
		w.log.Debug("file updated", "path", path, "removed", ev.Removed)
	}
	if w.notify != nil {
		w.notify(ev)
	}
}

// Stop ends monitoring, drops pending events and waits for in-flight
// handling to finish. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	close(w.done)
	w.mu.Unlock()

	err := w.fw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) ignoredDir(name string) bool {
	return cppdriver.SkipDir(name) || w.ignore[name]
}

// ignoredPath reports whether any directory between the root and path is
// ignored.
func (w *Watcher) ignoredPath(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return true
	}
	parts := strings.Split(filepath.Dir(rel), string(filepath.Separator))
	for _, part := range parts {
		if part != "." && w.ignoredDir(part) {
			return true
		}
	}
	return false
}
