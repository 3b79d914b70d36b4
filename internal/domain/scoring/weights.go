package scoring

import (
	"fmt"
	"math"

	"github.com/okian/cadence/internal/domain/model"
)

// weightSumEpsilon bounds the allowed drift of a role's weight sum from 1.0.
const weightSumEpsilon = 1e-6

// Weights maps metric names to their share of the composite score.
type Weights map[model.Metric]float64

// Profile maps a role to its metric weights. Looked up by the user's role
// at scoring time; validated once at startup.
type Profile map[string]Weights

// DefaultProfile returns the built-in role weight profile. Weights per role
// sum to 1.0.
func DefaultProfile() Profile {
	return Profile{
		"backend": {
			model.MetricTickets:     0.25,
			model.MetricStoryPoints: 0.20,
			model.MetricPRsAuthored: 0.15,
			model.MetricPRsReviewed: 0.15,
			model.MetricCommits:     0.10,
			model.MetricDocs:        0.10,
			model.MetricMeetings:    0.05,
		},
		"frontend": {
			model.MetricTickets:     0.25,
			model.MetricStoryPoints: 0.20,
			model.MetricPRsAuthored: 0.15,
			model.MetricPRsReviewed: 0.15,
			model.MetricCommits:     0.10,
			model.MetricDocs:        0.10,
			model.MetricMeetings:    0.05,
		},
		"devops": {
			model.MetricTickets:     0.20,
			model.MetricStoryPoints: 0.15,
			model.MetricPRsAuthored: 0.15,
			model.MetricPRsReviewed: 0.15,
			model.MetricCommits:     0.15,
			model.MetricDocs:        0.15,
			model.MetricMeetings:    0.05,
		},
		"manager": {
			model.MetricTickets:     0.15,
			model.MetricStoryPoints: 0.10,
			model.MetricPRsAuthored: 0.10,
			model.MetricPRsReviewed: 0.10,
			model.MetricCommits:     0.05,
			model.MetricDocs:        0.20,
			model.MetricMeetings:    0.30,
		},
	}
}

// Validate checks every role's weights: known metrics only, no negative
// weights, sum 1.0 within epsilon. Fails fast at startup.
func (p Profile) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("%w: no roles configured", ErrInvalidProfile)
	}

	valid := make(map[model.Metric]bool, len(model.Metrics()))
	for _, m := range model.Metrics() {
		valid[m] = true
	}

	for role, weights := range p {
		if len(weights) == 0 {
			return fmt.Errorf("%w: role %q has no weights", ErrInvalidProfile, role)
		}
		sum := 0.0
		for m, w := range weights {
			if !valid[m] {
				return fmt.Errorf("%w: role %q references unknown metric %q", ErrInvalidProfile, role, m)
			}
			if w < 0 {
				return fmt.Errorf("%w: role %q has negative weight for %q", ErrInvalidProfile, role, m)
			}
			sum += w
		}
		if math.Abs(sum-1.0) > weightSumEpsilon {
			return fmt.Errorf("%w: role %q weights sum to %.6f, want 1.0", ErrInvalidProfile, role, sum)
		}
	}
	return nil
}

// WeightsFor returns weights for a role, or ErrUnknownRole.
func (p Profile) WeightsFor(role string) (Weights, error) {
	w, ok := p[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return w, nil
}
