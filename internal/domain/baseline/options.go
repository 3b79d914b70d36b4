// Package baseline maintains a rolling reference score per user from
// trailing weekly history.
package baseline

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithWindow sets the number of trailing weeks averaged.
func WithWindow(weeks int) Option {
	return func(c *Calculator) {
		if weeks > 0 {
			c.window = weeks
		}
	}
}

// WithMinWeeks sets the eligible weeks required before a baseline is usable.
func WithMinWeeks(weeks int) Option {
	return func(c *Calculator) {
		if weeks > 0 {
			c.minWeeks = weeks
		}
	}
}

// WithGraceWeeks sets the role-change grace period length.
func WithGraceWeeks(weeks int) Option {
	return func(c *Calculator) {
		if weeks >= 0 {
			c.graceWeeks = weeks
		}
	}
}
