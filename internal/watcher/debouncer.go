package watcher

import (
	"sync"
	"time"
)

// BatchDebouncer collects events and emits them as one batch once no new
// event has arrived for the delay. Repeated events for a path collapse into
// the latest one, keeping the position of the first.
type BatchDebouncer struct {
	delay  time.Duration
	timer  *time.Timer
	mu     sync.Mutex
	events []Event
	index  map[string]int
	emit   func([]Event)
}

// NewBatchDebouncer creates a new batch debouncer
func NewBatchDebouncer(delay time.Duration, emit func([]Event)) *BatchDebouncer {
	return &BatchDebouncer{
		delay:  delay,
		events: make([]Event, 0),
		index:  make(map[string]int),
		emit:   emit,
	}
}

// Add adds an event to the batch and restarts the quiet period.
func (b *BatchDebouncer) Add(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i, ok := b.index[event.Path]; ok {
		b.events[i] = event
	} else {
		b.index[event.Path] = len(b.events)
		b.events = append(b.events, event)
	}

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, b.flush)
}

func (b *BatchDebouncer) flush() {
	b.mu.Lock()
	events := b.events
	b.events = make([]Event, 0)
	b.index = make(map[string]int)
	b.timer = nil
	b.mu.Unlock()

	if len(events) > 0 && b.emit != nil {
		b.emit(events)
	}
}

// Cancel drops pending events without emitting them.
func (b *BatchDebouncer) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.events = make([]Event, 0)
	b.index = make(map[string]int)
}

// Flush immediately emits any pending events
func (b *BatchDebouncer) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()

	b.flush()
}

// EventCount returns the number of pending events
func (b *BatchDebouncer) EventCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}
