package profile

// Option configures a Roster.
type Option func(*Roster)

// WithGraceWeeks sets how many weeks an open-ended role_change flag stays
// active. Values below zero are ignored.
func WithGraceWeeks(n int) Option {
	return func(r *Roster) {
		if n >= 0 {
			r.graceWeeks = n
		}
	}
}
