// Package dedupe defines the interface for event-id idempotency tracking.
package dedupe

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*InMemoryDeduper)

// WithMaxSize bounds the number of tracked ids.
func WithMaxSize(size int) Option {
	return func(d *InMemoryDeduper) {
		if size > 0 {
			d.maxSize = size
		}
	}
}
