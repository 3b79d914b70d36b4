package resolve

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/cadence/internal/domain/model"
)

// OverrideLog records manual status decisions per user-week. Every
// submission is retained; only the latest by submission time is applied,
// preserving auditability of the automated judgment and of prior
// decisions.
type OverrideLog struct {
	mu      sync.RWMutex
	entries map[overrideKey][]model.Override
}

type overrideKey struct {
	userID string
	week   time.Time
}

// NewOverrideLog creates an empty override log.
func NewOverrideLog() *OverrideLog {
	return &OverrideLog{
		entries: make(map[overrideKey][]model.Override),
	}
}

// Submit records an override. A missing ID gets a generated one; a missing
// submission time is stamped now. Reason is mandatory.
func (l *OverrideLog) Submit(o model.Override) (model.Override, error) {
	if o.UserID == "" || o.WeekStart.IsZero() {
		return model.Override{}, fmt.Errorf("%w: user id and week start are required", ErrInvalidOverride)
	}
	if o.Reason == "" {
		return model.Override{}, fmt.Errorf("%w: a reason is required", ErrInvalidOverride)
	}
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.SubmittedAt.IsZero() {
		o.SubmittedAt = time.Now().UTC()
	}

	key := overrideKey{userID: o.UserID, week: o.WeekStart}

	l.mu.Lock()
	l.entries[key] = append(l.entries[key], o)
	l.mu.Unlock()

	return o, nil
}

// Latest returns the override applied to a user-week: the most recent by
// submission time, or nil when none exist.
func (l *OverrideLog) Latest(userID string, week time.Time) *model.Override {
	l.mu.RLock()
	defer l.mu.RUnlock()

	history := l.entries[overrideKey{userID: userID, week: week}]
	if len(history) == 0 {
		return nil
	}

	latest := history[0]
	for _, o := range history[1:] {
		if o.SubmittedAt.After(latest.SubmittedAt) {
			latest = o
		}
	}
	return &latest
}

// History returns every override ever submitted for a user-week, in
// submission order.
func (l *OverrideLog) History(userID string, week time.Time) []model.Override {
	l.mu.RLock()
	defer l.mu.RUnlock()

	history := l.entries[overrideKey{userID: userID, week: week}]
	out := make([]model.Override, len(history))
	copy(out, history)
	return out
}
