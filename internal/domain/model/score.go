package model

import "time"

// Override is a manual status decision attached to a user-week after the
// fact. It never mutates the automated raw status; both are retained.
type Override struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	WeekStart   time.Time `json:"week_start"`
	Status      Status    `json:"status"`
	Reason      string    `json:"reason"`
	SubmittedBy string    `json:"submitted_by"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// WeeklyScore is the computed record for one user-week. Keyed uniquely by
// (UserID, WeekStart); append-only once the week is closed.
type WeeklyScore struct {
	UserID    string    `json:"user_id"`
	WeekStart time.Time `json:"week_start"` // anchored week start, UTC

	Tally ActivityTally `json:"tally"`

	CompositeScore    float64 `json:"composite_score"`
	BaselineScore     float64 `json:"baseline_score,omitempty"`
	BaselineAvailable bool    `json:"baseline_available"`

	Trend       Trend      `json:"trend"`
	RawStatus   Status     `json:"raw_status"`
	FinalStatus Status     `json:"final_status"`
	Flags       []FlagKind `json:"flags,omitempty"`
	Override    *Override  `json:"override,omitempty"`
}

// Suppressed reports whether the final status was capped below the raw one
// by an active context flag.
func (w WeeklyScore) Suppressed() bool {
	return w.FinalStatus < w.RawStatus && w.Override == nil
}

// HasFlag reports whether the week carries the given flag kind.
func (w WeeklyScore) HasFlag(kind FlagKind) bool {
	for _, f := range w.Flags {
		if f == kind {
			return true
		}
	}
	return false
}
