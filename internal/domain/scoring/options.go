// Package scoring computes composite weekly scores from activity tallies
// using role-specific weights.
package scoring

// Option applies a configuration option to the WeightedScorer.
type Option func(*WeightedScorer)

// WithProfile sets the role weight profile.
func WithProfile(p Profile) Option {
	return func(s *WeightedScorer) {
		if len(p) > 0 {
			s.profile = p
		}
	}
}

// WithSaturation overlays per-metric saturation ceilings on the defaults.
func WithSaturation(scales Saturation) Option {
	return func(s *WeightedScorer) {
		for m, v := range scales {
			s.scales[m] = v
		}
	}
}
