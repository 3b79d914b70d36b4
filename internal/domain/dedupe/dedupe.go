// Package dedupe defines the interface for event-id idempotency tracking.
package dedupe

import (
	"context"
	"sync"
)

// Default deduper configuration constants.
const (
	defaultMaxSize = 500_000
)

// Deduper records seen event IDs so replayed or double-delivered events are
// processed at most once per run.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Size returns the number of currently tracked ids.
	Size() int64

	// Reset drops all tracked ids, e.g. between batch runs.
	Reset()
}

// InMemoryDeduper implements Deduper with a bounded seen-set. When the set
// is full the oldest recorded id is evicted first.
type InMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string // ring buffer of insertion order
	head    int
	maxSize int
}

// NewInMemoryDeduper creates a deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) *InMemoryDeduper {
	d := &InMemoryDeduper{
		maxSize: defaultMaxSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{}, d.maxSize)
	d.order = make([]string, 0, d.maxSize)

	return d
}

// SeenAndRecord atomically checks and records an id.
func (d *InMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if len(d.seen) >= d.maxSize {
		// Evict the oldest id.
		oldest := d.order[d.head]
		delete(d.seen, oldest)
		d.order[d.head] = id
		d.head = (d.head + 1) % d.maxSize
	} else {
		d.order = append(d.order, id)
	}
	d.seen[id] = struct{}{}

	return false
}

// Size returns the number of tracked ids.
func (d *InMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}

// Reset drops all tracked ids.
func (d *InMemoryDeduper) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = make(map[string]struct{}, d.maxSize)
	d.order = d.order[:0]
	d.head = 0
}
