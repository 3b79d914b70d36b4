// Package baseline maintains a rolling reference score per user from
// trailing weekly history.
package baseline

import (
	"time"

	"github.com/okian/cadence/internal/domain/model"
)

// Default calculator configuration constants.
const (
	defaultWindowWeeks = 8
	defaultMinWeeks    = 4
	defaultGraceWeeks  = 2
)

// Result is a computed baseline. When Available is false the user has
// insufficient eligible history and no baseline value may be used; a zero
// Score must never stand in for a real one.
type Result struct {
	Score         float64
	Available     bool
	EligibleWeeks int
}

// Calculator computes trailing baselines. Pure over the history slice;
// never reads the week being scored or anything after it.
type Calculator struct {
	window     int // trailing weeks averaged
	minWeeks   int // eligible weeks required for a usable baseline
	graceWeeks int // weeks after a role change that stay excluded
}

// New creates a Calculator with configuration options.
func New(opts ...Option) *Calculator {
	c := &Calculator{
		window:     defaultWindowWeeks,
		minWeeks:   defaultMinWeeks,
		graceWeeks: defaultGraceWeeks,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Compute returns the baseline for the week starting at week, from history
// ordered most recent last. Weeks at or after week are ignored, as are
// weeks flagged pto, onboarding, or role_change and weeks inside the
// role-change grace period: none of those represent normal capacity.
func (c *Calculator) Compute(week time.Time, history []model.WeeklyScore) Result {
	graceUntil := roleChangeGraceEnds(history, c.graceWeeks)

	eligible := make([]float64, 0, c.window)
	// Walk newest to oldest so the trailing window fills from the most
	// recent eligible weeks.
	for i := len(history) - 1; i >= 0 && len(eligible) < c.window; i-- {
		w := history[i]
		if !w.WeekStart.Before(week) {
			continue
		}
		if excludedByFlags(w) {
			continue
		}
		if !graceUntil.IsZero() && w.WeekStart.Before(graceUntil) && !w.WeekStart.Before(graceStart(graceUntil, c.graceWeeks)) {
			continue
		}
		eligible = append(eligible, w.CompositeScore)
	}

	if len(eligible) < c.minWeeks {
		return Result{Available: false, EligibleWeeks: len(eligible)}
	}

	sum := 0.0
	for _, s := range eligible {
		sum += s
	}
	return Result{
		Score:         sum / float64(len(eligible)),
		Available:     true,
		EligibleWeeks: len(eligible),
	}
}

func excludedByFlags(w model.WeeklyScore) bool {
	return w.HasFlag(model.FlagPTO) ||
		w.HasFlag(model.FlagOnboarding) ||
		w.HasFlag(model.FlagRoleChange)
}

// roleChangeGraceEnds returns the first week start no longer inside the
// grace period after the most recent role change, or zero when none.
func roleChangeGraceEnds(history []model.WeeklyScore, graceWeeks int) time.Time {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].HasFlag(model.FlagRoleChange) {
			return model.AddWeeks(history[i].WeekStart, graceWeeks+1)
		}
	}
	return time.Time{}
}

func graceStart(graceUntil time.Time, graceWeeks int) time.Time {
	return model.AddWeeks(graceUntil, -(graceWeeks + 1))
}
