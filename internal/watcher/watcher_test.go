package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      string
	}{
		{EventCreate, "create"},
		{EventModify, "modify"},
		{EventDelete, "delete"},
		{EventRename, "rename"},
		{EventType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.eventType.String()
			if got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Debounce != 500*time.Millisecond {
		t.Errorf("Debounce = %v, want 500ms", config.Debounce)
	}
	if len(config.Extensions) != 1 || config.Extensions[0] != ".scar" {
		t.Errorf("Extensions = %v, want [.scar]", config.Extensions)
	}
}

func TestWatcherRelevant(t *testing.T) {
	w, err := New(DefaultConfig(), nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	tests := []struct {
		path     string
		relevant bool
	}{
		{"scar/util.scar", true},
		{"scar/UTIL.SCAR", true},
		{"scar/notes.txt", false},
		{".git/hooks/x.scar", false},
		{"game/.scardoc/cached.scar", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := w.Relevant(filepath.FromSlash(tt.path)); got != tt.relevant {
				t.Errorf("Relevant(%q) = %v, want %v", tt.path, got, tt.relevant)
			}
		})
	}
}

func TestWatcherAddSkipsExcluded(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"ai", ".git", ".git/objects"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}

	w, err := New(DefaultConfig(), nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	got := w.WatchedDirs()
	if len(got) != 2 || got[0] != root || got[1] != filepath.Join(root, "ai") {
		t.Errorf("WatchedDirs() = %v", got)
	}
}

// collector gathers batches delivered to a ChangeHandler.
type collector struct {
	mu     sync.Mutex
	events []Event
	notify chan struct{}
}

func newCollector() *collector {
	return &collector{notify: make(chan struct{}, 16)}
}

func (c *collector) handle(events []Event) {
	c.mu.Lock()
	c.events = append(c.events, events...)
	c.mu.Unlock()
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *collector) waitFor(t *testing.T, path string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		c.mu.Lock()
		for _, e := range c.events {
			if e.Path == path {
				c.mu.Unlock()
				return
			}
		}
		c.mu.Unlock()
		select {
		case <-c.notify:
		case <-deadline:
			t.Fatalf("no event for %s", path)
		}
	}
}

func TestWatcherRun(t *testing.T) {
	root := t.TempDir()
	c := newCollector()

	cfg := DefaultConfig()
	cfg.Debounce = 20 * time.Millisecond
	w, err := New(cfg, nil, c.handle)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Add(root); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	file := filepath.Join(root, "util.scar")
	if err := os.WriteFile(file, []byte("function Util_A()\nend\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c.waitFor(t, file)

	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	sub := filepath.Join(root, "ai")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(sub, "squad.scar")
	if err := os.WriteFile(nested, []byte("function Squad_A()\nend\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c.waitFor(t, nested)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.events {
		if filepath.Ext(e.Path) != ".scar" {
			t.Errorf("unexpected event for %s", e.Path)
		}
	}
}

func TestNewBatchDebouncer(t *testing.T) {
	b := NewBatchDebouncer(100*time.Millisecond, func(events []Event) {})

	if b == nil {
		t.Fatal("NewBatchDebouncer() returned nil")
	}
	if b.delay != 100*time.Millisecond {
		t.Errorf("delay = %v, want 100ms", b.delay)
	}
	if b.events == nil {
		t.Error("events should be initialized")
	}
}

func TestBatchDebouncerAdd(t *testing.T) {
	var received []Event
	var mu sync.Mutex

	emit := func(events []Event) {
		mu.Lock()
		received = events
		mu.Unlock()
	}

	b := NewBatchDebouncer(50*time.Millisecond, emit)

	b.Add(Event{Type: EventCreate, Path: "file1.scar"})
	b.Add(Event{Type: EventModify, Path: "file2.scar"})
	b.Add(Event{Type: EventDelete, Path: "file3.scar"})

	if b.EventCount() != 3 {
		t.Errorf("EventCount() = %d, want 3", b.EventCount())
	}

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	if len(received) != 3 {
		t.Errorf("Should have received 3 events, got %d", len(received))
	}
	mu.Unlock()
}

func TestBatchDebouncerCollapsesPath(t *testing.T) {
	b := NewBatchDebouncer(time.Hour, nil)
	defer b.Cancel()

	b.Add(Event{Type: EventCreate, Path: "a.scar"})
	b.Add(Event{Type: EventModify, Path: "b.scar"})
	b.Add(Event{Type: EventModify, Path: "a.scar"})

	if b.EventCount() != 2 {
		t.Fatalf("EventCount() = %d, want 2", b.EventCount())
	}
	b.mu.Lock()
	first := b.events[0]
	b.mu.Unlock()
	if first.Path != "a.scar" || first.Type != EventModify {
		t.Errorf("first event = %+v, want latest event for a.scar", first)
	}
}

func TestBatchDebouncerCancel(t *testing.T) {
	var called bool
	var mu sync.Mutex

	emit := func(events []Event) {
		mu.Lock()
		called = true
		mu.Unlock()
	}

	b := NewBatchDebouncer(50*time.Millisecond, emit)
	b.Add(Event{Type: EventCreate, Path: "file.scar"})
	b.Cancel()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	if called {
		t.Error("Emit should not be called after cancel")
	}
	mu.Unlock()

	if b.EventCount() != 0 {
		t.Errorf("EventCount() = %d, want 0 after cancel", b.EventCount())
	}
}

func TestBatchDebouncerFlush(t *testing.T) {
	var received []Event
	var mu sync.Mutex

	emit := func(events []Event) {
		mu.Lock()
		received = events
		mu.Unlock()
	}

	b := NewBatchDebouncer(500*time.Millisecond, emit)
	b.Add(Event{Type: EventCreate, Path: "file.scar"})
	b.Flush()

	mu.Lock()
	if len(received) != 1 {
		t.Errorf("Should have received 1 event, got %d", len(received))
	}
	mu.Unlock()

	if b.EventCount() != 0 {
		t.Errorf("EventCount() = %d, want 0 after flush", b.EventCount())
	}
}

func TestBatchDebouncerNoEmitWithNoEvents(t *testing.T) {
	var called bool
	var mu sync.Mutex

	emit := func(events []Event) {
		mu.Lock()
		called = true
		mu.Unlock()
	}

	b := NewBatchDebouncer(10*time.Millisecond, emit)
	b.Flush()

	mu.Lock()
	if called {
		t.Error("Emit should not be called with no events")
	}
	mu.Unlock()
}
