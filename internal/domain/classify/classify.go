// Package classify applies the engagement rule set to a user's current
// week and trailing history.
//
// The trailing history itself is the classifier's only state: every verdict
// is a pure function over the current week and a bounded slice of prior
// closed weeks, which keeps re-aggregation idempotent.
package classify

import (
	"time"

	"github.com/okian/cadence/internal/domain/baseline"
	"github.com/okian/cadence/internal/domain/model"
)

// Default rule thresholds. All externally configurable.
const (
	defaultLowEngagementThreshold = 0.3
	defaultSuddenDropThreshold    = 0.4
	defaultWatchWeeks             = 2
	defaultNeedsReviewWeeks       = 3
	defaultInactivityWeeks        = 2
	defaultInactivityEpsilon      = 1e-9
	defaultTrendBand              = 0.1
)

// Rule names surfaced in verdicts.
const (
	RuleSuddenDrop       = "sudden_drop"
	RuleSustainedLow     = "sustained_low_engagement"
	RuleLowCollaboration = "low_collaboration"
	RuleInactivity       = "sustained_inactivity"
)

// Input is everything the classifier reads for one user-week. History
// holds the trailing closed weeks, most recent last, strictly before Week.
type Input struct {
	Week      time.Time
	Composite float64
	Tally     model.ActivityTally
	Baseline  baseline.Result
	History   []model.WeeklyScore
}

// Verdict is the classifier output before exception resolution.
type Verdict struct {
	RawStatus           model.Status
	Trend               model.Trend
	InsufficientHistory bool
	FiredRules          []string
}

// Classifier evaluates the engagement rule set.
type Classifier struct {
	lowThreshold     float64 // sustained-low cutoff as a fraction of baseline
	suddenDrop       float64 // single-week drop fraction vs baseline
	watchWeeks       int
	needsReviewWeeks int
	collabWindow     int // weeks scanned by the low-collaboration rule
	inactivityWeeks  int
	epsilon          float64
	trendBand        float64
}

// New creates a Classifier with configuration options.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		lowThreshold:     defaultLowEngagementThreshold,
		suddenDrop:       defaultSuddenDropThreshold,
		watchWeeks:       defaultWatchWeeks,
		needsReviewWeeks: defaultNeedsReviewWeeks,
		inactivityWeeks:  defaultInactivityWeeks,
		epsilon:          defaultInactivityEpsilon,
		trendBand:        defaultTrendBand,
	}

	for _, opt := range opts {
		opt(c)
	}

	// The collaboration window defaults to the sustained-low window.
	if c.collabWindow <= 0 {
		c.collabWindow = c.needsReviewWeeks
	}

	return c
}

// Classify evaluates every rule and returns the highest severity that
// fired. A user without a usable baseline gets no verdict: the status is
// healthy and the week is marked insufficient-history.
func (c *Classifier) Classify(in Input) Verdict {
	if !in.Baseline.Available {
		return Verdict{
			RawStatus:           model.StatusHealthy,
			Trend:               model.TrendStable,
			InsufficientHistory: true,
		}
	}

	v := Verdict{
		RawStatus: model.StatusHealthy,
		Trend:     c.trend(in.Composite, in.Baseline.Score),
	}

	if status, ok := c.suddenDropRule(in); ok {
		v.RawStatus = v.RawStatus.Max(status)
		v.FiredRules = append(v.FiredRules, RuleSuddenDrop)
	}
	if status, ok := c.sustainedLowRule(in); ok {
		v.RawStatus = v.RawStatus.Max(status)
		v.FiredRules = append(v.FiredRules, RuleSustainedLow)
	}
	if status, ok := c.lowCollaborationRule(in); ok {
		v.RawStatus = v.RawStatus.Max(status)
		v.FiredRules = append(v.FiredRules, RuleLowCollaboration)
	}
	if status, ok := c.inactivityRule(in); ok {
		v.RawStatus = v.RawStatus.Max(status)
		v.FiredRules = append(v.FiredRules, RuleInactivity)
	}

	return v
}

// suddenDropRule flags a single-week collapse against the baseline.
func (c *Classifier) suddenDropRule(in Input) (model.Status, bool) {
	if in.Composite < in.Baseline.Score*(1-c.suddenDrop) {
		return model.StatusWatch, true
	}
	return model.StatusHealthy, false
}

// sustainedLowRule counts consecutive closed weeks, ending at the current
// one, strictly below the low-engagement fraction of their own baselines.
func (c *Classifier) sustainedLowRule(in Input) (model.Status, bool) {
	if !(in.Composite < in.Baseline.Score*c.lowThreshold) {
		return model.StatusHealthy, false
	}

	consecutive := 1
	for i := len(in.History) - 1; i >= 0; i-- {
		w := in.History[i]
		if !w.BaselineAvailable || !(w.CompositeScore < w.BaselineScore*c.lowThreshold) {
			break
		}
		consecutive++
	}

	switch {
	case consecutive >= c.needsReviewWeeks:
		return model.StatusNeedsReview, true
	case consecutive >= c.watchWeeks:
		return model.StatusWatch, true
	default:
		return model.StatusHealthy, false
	}
}

// lowCollaborationRule fires when the user authored PRs across the
// evaluation window but reviewed none at all.
func (c *Classifier) lowCollaborationRule(in Input) (model.Status, bool) {
	authored := in.Tally.PRsAuthored
	reviewed := in.Tally.PRsReviewed
	weeks := 1

	for i := len(in.History) - 1; i >= 0 && weeks < c.collabWindow; i-- {
		authored += in.History[i].Tally.PRsAuthored
		reviewed += in.History[i].Tally.PRsReviewed
		weeks++
	}

	// A single week of activity is not yet a pattern.
	if weeks < c.watchWeeks {
		return model.StatusHealthy, false
	}
	if authored > 0 && reviewed == 0 {
		return model.StatusWatch, true
	}
	return model.StatusHealthy, false
}

// inactivityRule fires when all work-output metrics sit at or near zero
// for enough consecutive weeks.
func (c *Classifier) inactivityRule(in Input) (model.Status, bool) {
	if !in.Tally.Inactive(c.epsilon) {
		return model.StatusHealthy, false
	}

	consecutive := 1
	for i := len(in.History) - 1; i >= 0; i-- {
		if !in.History[i].Tally.Inactive(c.epsilon) {
			break
		}
		consecutive++
	}

	if consecutive >= c.inactivityWeeks {
		return model.StatusNeedsReview, true
	}
	return model.StatusHealthy, false
}

func (c *Classifier) trend(composite, base float64) model.Trend {
	switch {
	case composite < base*(1-c.trendBand):
		return model.TrendDeclining
	case composite > base*(1+c.trendBand):
		return model.TrendImproving
	default:
		return model.TrendStable
	}
}
