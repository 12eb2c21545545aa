// Package watcher reports changes to source units under a directory tree.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

// Event represents a file system event
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// ChangeHandler is called with each debounced batch of changes.
type ChangeHandler func(events []Event)

// Config contains watcher configuration
type Config struct {
	Debounce   time.Duration
	Extensions []string // source file extensions; matched case-insensitively
	Exclude    []string // directory names that are not watched
}

// DefaultConfig returns the default watcher configuration
func DefaultConfig() Config {
	return Config{
		Debounce:   500 * time.Millisecond,
		Extensions: []string{".scar"},
		Exclude:    []string{".git", ".scardoc"},
	}
}

// Watcher watches directory trees for changes to source files.
type Watcher struct {
	config  Config
	logger  *slog.Logger
	fsw     *fsnotify.Watcher
	batch   *BatchDebouncer
	mu      sync.RWMutex
	dirs    map[string]bool
	closeMu sync.Once
}

// New creates a watcher. handler runs on a timer goroutine.
func New(config Config, logger *slog.Logger, handler ChangeHandler) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultConfig().Debounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		config: config,
		logger: logger,
		fsw:    fsw,
		dirs:   make(map[string]bool),
	}
	w.batch = NewBatchDebouncer(config.Debounce, func(events []Event) {
		w.logger.Debug("Source changes detected", "events", len(events))
		if handler != nil {
			handler(events)
		}
	})
	return w, nil
}

// Add watches root and every directory below it that is not excluded.
func (w *Watcher) Add(root string) error {
	_, err := w.addTree(root)
	return err
}

// addTree watches the tree at root and returns the relevant files already in
// it.
func (w *Watcher) addTree(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if w.Relevant(path) {
				files = append(files, path)
			}
			return nil
		}
		if path != root && slices.Contains(w.config.Exclude, d.Name()) {
			return filepath.SkipDir
		}
		return w.addDir(path)
	})
	return files, err
}

func (w *Watcher) addDir(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dirs[dir] {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return err
	}
	w.dirs[dir] = true
	w.logger.Debug("Watching directory", "path", dir)
	return nil
}

// Run delivers events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			w.batch.Cancel()
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	now := time.Now()

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if slices.Contains(w.config.Exclude, info.Name()) {
				return
			}
			// Files may land in a new directory before its watch exists.
			files, err := w.addTree(ev.Name)
			if err != nil {
				w.logger.Warn("Failed to watch directory", "path", ev.Name, "error", err)
			}
			for _, f := range files {
				w.batch.Add(Event{Type: EventCreate, Path: f, Timestamp: now})
			}
			return
		}
	}

	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		w.mu.Lock()
		delete(w.dirs, ev.Name)
		w.mu.Unlock()
	}

	if !w.Relevant(ev.Name) {
		return
	}
	typ, ok := eventType(ev.Op)
	if !ok {
		return
	}
	w.batch.Add(Event{Type: typ, Path: ev.Name, Timestamp: now})
}

func eventType(op fsnotify.Op) (EventType, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return EventCreate, true
	case op.Has(fsnotify.Write):
		return EventModify, true
	case op.Has(fsnotify.Remove):
		return EventDelete, true
	case op.Has(fsnotify.Rename):
		return EventRename, true
	}
	return 0, false
}

// Relevant reports whether path is a source file the watcher reports on.
func (w *Watcher) Relevant(path string) bool {
	ext := filepath.Ext(path)
	matched := false
	for _, e := range w.config.Extensions {
		if strings.EqualFold(ext, e) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(path)), "/") {
		if slices.Contains(w.config.Exclude, part) {
			return false
		}
	}
	return true
}

// WatchedDirs returns the watched directories in lexical order.
func (w *Watcher) WatchedDirs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	dirs := make([]string, 0, len(w.dirs))
	for d := range w.dirs {
		dirs = append(dirs, d)
	}
	slices.Sort(dirs)
	return dirs
}

// Close stops watching and drops pending events.
func (w *Watcher) Close() error {
	var err error
	w.closeMu.Do(func() {
		w.batch.Cancel()
		err = w.fsw.Close()
	})
	return err
}
