package classify

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithLowEngagementThreshold sets the sustained-low cutoff fraction.
func WithLowEngagementThreshold(f float64) Option {
	return func(c *Classifier) {
		if f > 0 && f < 1 {
			c.lowThreshold = f
		}
	}
}

// WithSuddenDropThreshold sets the single-week drop fraction.
func WithSuddenDropThreshold(f float64) Option {
	return func(c *Classifier) {
		if f > 0 && f < 1 {
			c.suddenDrop = f
		}
	}
}

// WithWatchWeeks sets the consecutive low weeks that trigger watch.
func WithWatchWeeks(weeks int) Option {
	return func(c *Classifier) {
		if weeks > 0 {
			c.watchWeeks = weeks
		}
	}
}

// WithNeedsReviewWeeks sets the consecutive low weeks that trigger
// needs_review.
func WithNeedsReviewWeeks(weeks int) Option {
	return func(c *Classifier) {
		if weeks > 0 {
			c.needsReviewWeeks = weeks
		}
	}
}

// WithCollaborationWindow sets the weeks scanned by the low-collaboration
// rule. Defaults to the needs-review window.
func WithCollaborationWindow(weeks int) Option {
	return func(c *Classifier) {
		if weeks > 0 {
			c.collabWindow = weeks
		}
	}
}

// WithInactivityWeeks sets the consecutive inactive weeks that trigger
// needs_review.
func WithInactivityWeeks(weeks int) Option {
	return func(c *Classifier) {
		if weeks > 0 {
			c.inactivityWeeks = weeks
		}
	}
}

// WithInactivityEpsilon sets the near-zero cutoff for activity metrics.
func WithInactivityEpsilon(eps float64) Option {
	return func(c *Classifier) {
		if eps >= 0 {
			c.epsilon = eps
		}
	}
}

// WithTrendBand sets the dead band around the baseline for trend labels.
func WithTrendBand(band float64) Option {
	return func(c *Classifier) {
		if band > 0 && band < 1 {
			c.trendBand = band
		}
	}
}
