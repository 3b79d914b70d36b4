// Package resolve layers exception suppression and manual overrides over
// classifier output.
//
// Suppression and override are two independent, composable decisions: an
// ordered pipeline of pure transforms raw -> capped -> final. The raw
// status is never mutated; a manager always sees both the signal and the
// context.
package resolve

import (
	"time"

	"github.com/okian/cadence/internal/domain/model"
)

// Decision is the resolver output for one user-week.
type Decision struct {
	Final      model.Status
	Flags      []model.FlagKind // flags active in the evaluated week
	Suppressed bool             // a context flag capped the status
	Override   *model.Override  // applied override, if any
}

// ActiveFlags returns the kinds of flags whose date range overlaps the
// week, in the order given.
func ActiveFlags(flags []model.ContextFlag, week time.Time) []model.FlagKind {
	var active []model.FlagKind
	for _, f := range flags {
		if f.ActiveIn(week) {
			active = append(active, f.Kind)
		}
	}
	return active
}

// Resolve applies the exception pipeline to a raw status. Any suppressing
// flag caps the final status at healthy; a manual override then takes
// precedence over both the raw status and the cap.
func Resolve(raw model.Status, flags []model.ContextFlag, week time.Time, override *model.Override) Decision {
	d := Decision{Final: raw, Flags: ActiveFlags(flags, week)}

	for _, f := range flags {
		if f.Suppressing() && f.ActiveIn(week) {
			if d.Final > model.StatusHealthy {
				d.Suppressed = true
			}
			d.Final = model.StatusHealthy
			break
		}
	}

	if override != nil {
		d.Final = override.Status
		d.Override = override
		d.Suppressed = false
		d.Flags = append(d.Flags, model.FlagManualOverride)
	}

	return d
}
