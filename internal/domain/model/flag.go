package model

import "time"

// FlagKind identifies a context flag attached to a user.
type FlagKind string

// Context flag kinds. All except manual_override suppress alerts while
// active; manual_override marks a week carrying an explicit decision.
const (
	FlagPTO            FlagKind = "pto"
	FlagOnboarding     FlagKind = "onboarding"
	FlagRoleChange     FlagKind = "role_change"
	FlagOnCall         FlagKind = "on_call"
	FlagManualOverride FlagKind = "manual_override"
)

// ContextFlag is a time-bounded annotation on a user. The range is
// inclusive of From and Until at day granularity.
type ContextFlag struct {
	Kind  FlagKind  `json:"kind"`
	From  time.Time `json:"from"`
	Until time.Time `json:"until"`
}

// ActiveIn reports whether the flag's date range overlaps the week
// starting at week. A zero Until means open-ended.
func (f ContextFlag) ActiveIn(week time.Time) bool {
	weekEnd := AddWeeks(week, 1)
	if !f.Until.IsZero() && f.Until.Before(week) {
		return false
	}
	return f.From.Before(weekEnd)
}

// Suppressing reports whether this flag kind caps the final status.
func (f ContextFlag) Suppressing() bool {
	switch f.Kind {
	case FlagPTO, FlagOnboarding, FlagRoleChange, FlagOnCall:
		return true
	default:
		return false
	}
}
