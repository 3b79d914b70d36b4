package scoring_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/cadence/internal/domain/model"
	"github.com/okian/cadence/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestProfileValidation(t *testing.T) {
	Convey("Given role weight profiles", t, func() {
		Convey("The default profile validates", func() {
			So(scoring.DefaultProfile().Validate(), ShouldBeNil)
		})

		Convey("Weights must sum to 1.0 within epsilon", func() {
			p := scoring.Profile{
				"backend": {model.MetricTickets: 0.5, model.MetricCommits: 0.4},
			}
			err := p.Validate()
			So(err, ShouldNotBeNil)
			So(errors.Is(err, scoring.ErrInvalidProfile), ShouldBeTrue)
		})

		Convey("Unknown metric names are rejected", func() {
			p := scoring.Profile{
				"backend": {model.Metric("velocity"): 1.0},
			}
			So(errors.Is(p.Validate(), scoring.ErrInvalidProfile), ShouldBeTrue)
		})

		Convey("Negative weights are rejected", func() {
			p := scoring.Profile{
				"backend": {model.MetricTickets: 1.2, model.MetricCommits: -0.2},
			}
			So(errors.Is(p.Validate(), scoring.ErrInvalidProfile), ShouldBeTrue)
		})

		Convey("An empty profile is rejected", func() {
			So(errors.Is(scoring.Profile{}.Validate(), scoring.ErrInvalidProfile), ShouldBeTrue)
		})
	})
}

func TestWeightedScorer(t *testing.T) {
	Convey("Given a scorer with default configuration", t, func() {
		ctx := context.Background()
		scorer, err := scoring.NewWeightedScorer()
		So(err, ShouldBeNil)

		Convey("A zero tally yields composite 0", func() {
			res, err := scorer.Score(ctx, scoring.Input{UserID: "u1", Role: "backend"})
			So(err, ShouldBeNil)
			So(res.Composite, ShouldEqual, 0)
		})

		Convey("A tally at every saturation ceiling yields the full scale", func() {
			full := model.ActivityTally{
				TicketsCompleted: 8,
				StoryPoints:      20,
				PRsAuthored:      5,
				PRsReviewed:      8,
				Commits:          30,
				DocsAuthored:     4,
				MeetingHours:     15,
			}
			res, err := scorer.Score(ctx, scoring.Input{UserID: "u1", Role: "backend", Tally: full})
			So(err, ShouldBeNil)
			So(res.Composite, ShouldAlmostEqual, 100, 1e-9)
		})

		Convey("Values above the ceiling saturate instead of inflating", func() {
			outlier := model.ActivityTally{Commits: 3000}
			capped := model.ActivityTally{Commits: 30}
			a, _ := scorer.Score(ctx, scoring.Input{UserID: "u1", Role: "backend", Tally: outlier})
			b, _ := scorer.Score(ctx, scoring.Input{UserID: "u1", Role: "backend", Tally: capped})
			So(a.Composite, ShouldAlmostEqual, b.Composite, 1e-9)
		})

		Convey("Scoring is deterministic", func() {
			in := scoring.Input{UserID: "u1", Role: "devops", Tally: model.ActivityTally{TicketsCompleted: 3, Commits: 11, StoryPoints: 7.5}}
			a, _ := scorer.Score(ctx, in)
			b, _ := scorer.Score(ctx, in)
			So(a.Composite, ShouldEqual, b.Composite)
		})

		Convey("Roles weight the same tally differently", func() {
			tally := model.ActivityTally{MeetingHours: 15}
			eng, _ := scorer.Score(ctx, scoring.Input{UserID: "u1", Role: "backend", Tally: tally})
			mgr, _ := scorer.Score(ctx, scoring.Input{UserID: "u2", Role: "manager", Tally: tally})
			So(mgr.Composite, ShouldBeGreaterThan, eng.Composite)
		})

		Convey("An unrecognized role fails with ErrUnknownRole", func() {
			_, err := scorer.Score(ctx, scoring.Input{UserID: "u1", Role: "astronaut"})
			So(errors.Is(err, scoring.ErrUnknownRole), ShouldBeTrue)
		})
	})

	Convey("Given invalid configuration", t, func() {
		Convey("Construction fails fast on a bad profile", func() {
			_, err := scoring.NewWeightedScorer(scoring.WithProfile(scoring.Profile{
				"backend": {model.MetricTickets: 0.9},
			}))
			So(errors.Is(err, scoring.ErrInvalidProfile), ShouldBeTrue)
		})

		Convey("Construction fails fast on a bad scale", func() {
			_, err := scoring.NewWeightedScorer(scoring.WithSaturation(scoring.Saturation{
				model.MetricTickets: -1,
			}))
			So(errors.Is(err, scoring.ErrInvalidScale), ShouldBeTrue)
		})
	})
}
