// Package normalize maps heterogeneous activity events into uniform
// per-user, per-week tallies.
package normalize

import (
	"time"

	"github.com/okian/cadence/internal/domain/dedupe"
	"github.com/okian/cadence/pkg/logger"
)

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithAnchor sets the weekday weeks are anchored on.
func WithAnchor(anchor time.Weekday) Option {
	return func(n *Normalizer) {
		n.anchor = anchor
	}
}

// WithDeduper enables duplicate event-id skipping.
func WithDeduper(d dedupe.Deduper) Option {
	return func(n *Normalizer) {
		if d != nil {
			n.deduper = d
		}
	}
}

// WithLogger sets a custom logger for the normalizer.
func WithLogger(log logger.Logger) Option {
	return func(n *Normalizer) {
		if log != nil {
			n.log = log
		}
	}
}
