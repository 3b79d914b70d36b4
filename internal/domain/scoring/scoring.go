// Package scoring computes composite weekly scores from activity tallies
// using role-specific weights.
package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/cadence/internal/domain/model"
	"github.com/okian/cadence/pkg/metrics"
)

// maxScore is the upper bound of the composite scale.
const maxScore = 100.0

// Input carries the fields needed to score one user-week.
type Input struct {
	UserID string
	Role   string
	Tally  model.ActivityTally
}

// Result is the computed composite score for one user-week.
type Result struct {
	UserID    string
	Composite float64
}

// Scorer computes a composite score from a weekly tally.
type Scorer interface {
	// Score computes the composite score, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (Result, error)
}

// Saturation maps each metric to the tally value at which it saturates.
// Values at or above the ceiling contribute their full weight; this bounds
// outlier influence on the composite.
type Saturation map[model.Metric]float64

// DefaultSaturation returns the built-in per-metric reference scales.
func DefaultSaturation() Saturation {
	return Saturation{
		model.MetricTickets:     8,
		model.MetricStoryPoints: 20,
		model.MetricPRsAuthored: 5,
		model.MetricPRsReviewed: 8,
		model.MetricCommits:     30,
		model.MetricDocs:        4,
		model.MetricMeetings:    15,
	}
}

// Validate checks that every metric has a positive ceiling.
func (s Saturation) Validate() error {
	for _, m := range model.Metrics() {
		if s[m] <= 0 {
			return fmt.Errorf("%w: metric %q needs a positive ceiling", ErrInvalidScale, m)
		}
	}
	return nil
}

// WeightedScorer implements Scorer with saturation normalization. Same
// tally and profile always yield the same score.
type WeightedScorer struct {
	profile Profile
	scales  Saturation
}

// NewWeightedScorer creates a scorer after validating its configuration.
func NewWeightedScorer(opts ...Option) (*WeightedScorer, error) {
	s := &WeightedScorer{
		profile: DefaultProfile(),
		scales:  DefaultSaturation(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.profile.Validate(); err != nil {
		return nil, err
	}
	if err := s.scales.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Score computes composite = Σ w[m] * normalized(tally[m]) * 100, where
// normalized clamps against the metric's saturation ceiling.
func (s *WeightedScorer) Score(ctx context.Context, in Input) (Result, error) {
	start := time.Now()
	defer func() {
		metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	select {
	case <-ctx.Done():
		return Result{}, fmt.Errorf("scoring cancelled: %w", ctx.Err())
	default:
	}

	weights, err := s.profile.WeightsFor(in.Role)
	if err != nil {
		metrics.RecordScoringError()
		return Result{}, err
	}

	score := 0.0
	for m, w := range weights {
		score += w * s.normalized(m, in.Tally.Value(m)) * maxScore
	}
	if score > maxScore {
		score = maxScore
	}

	return Result{UserID: in.UserID, Composite: score}, nil
}

func (s *WeightedScorer) normalized(m model.Metric, v float64) float64 {
	ceiling := s.scales[m]
	if v <= 0 {
		return 0
	}
	if v >= ceiling {
		return 1
	}
	return v / ceiling
}
