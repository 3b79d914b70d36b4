package classify_test

import (
	"testing"
	"time"

	"github.com/okian/cadence/internal/domain/baseline"
	"github.com/okian/cadence/internal/domain/classify"
	"github.com/okian/cadence/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var week0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// closedWeek builds one prior closed week with its recorded baseline.
func closedWeek(i int, composite, base float64, tally model.ActivityTally) model.WeeklyScore {
	return model.WeeklyScore{
		UserID:            "u1",
		WeekStart:         model.AddWeeks(week0, i),
		CompositeScore:    composite,
		BaselineScore:     base,
		BaselineAvailable: true,
		Tally:             tally,
	}
}

func active() model.ActivityTally {
	return model.ActivityTally{TicketsCompleted: 3, PRsAuthored: 1, PRsReviewed: 2, Commits: 10}
}

func TestSuddenDrop(t *testing.T) {
	Convey("Given a user with composite history 80, 82, 79 and baseline 80", t, func() {
		c := classify.New()
		history := []model.WeeklyScore{
			closedWeek(0, 80, 80, active()),
			closedWeek(1, 82, 80, active()),
			closedWeek(2, 79, 80, active()),
		}

		Convey("A week at 20 is a sudden drop but not yet sustained", func() {
			v := c.Classify(classify.Input{
				Week:      model.AddWeeks(week0, 3),
				Composite: 20,
				Tally:     active(),
				Baseline:  baseline.Result{Score: 80, Available: true},
				History:   history,
			})
			// 20 < 80*0.6 = 48, and there is no run of low weeks yet.
			So(v.RawStatus, ShouldEqual, model.StatusWatch)
			So(v.FiredRules, ShouldContain, classify.RuleSuddenDrop)
			So(v.FiredRules, ShouldNotContain, classify.RuleSustainedLow)
			So(v.Trend, ShouldEqual, model.TrendDeclining)
		})

		Convey("A week just above the drop line stays healthy", func() {
			v := c.Classify(classify.Input{
				Week:      model.AddWeeks(week0, 3),
				Composite: 49,
				Tally:     active(),
				Baseline:  baseline.Result{Score: 80, Available: true},
				History:   history,
			})
			So(v.RawStatus, ShouldEqual, model.StatusHealthy)
		})
	})
}

func TestSustainedLow(t *testing.T) {
	Convey("Given baseline 80 (low line at 24)", t, func() {
		c := classify.New()
		base := baseline.Result{Score: 80, Available: true}

		Convey("Scores 20, 22, 21 over three weeks reach needs_review", func() {
			history := []model.WeeklyScore{
				closedWeek(0, 20, 80, active()),
				closedWeek(1, 22, 80, active()),
			}
			v := c.Classify(classify.Input{
				Week:      model.AddWeeks(week0, 2),
				Composite: 21,
				Tally:     active(),
				Baseline:  base,
				History:   history,
			})
			So(v.RawStatus, ShouldEqual, model.StatusNeedsReview)
			So(v.FiredRules, ShouldContain, classify.RuleSustainedLow)
		})

		Convey("Two consecutive low weeks reach watch", func() {
			history := []model.WeeklyScore{
				closedWeek(0, 80, 80, active()),
				closedWeek(1, 22, 80, active()),
			}
			v := c.Classify(classify.Input{
				Week:      model.AddWeeks(week0, 2),
				Composite: 21,
				Tally:     active(),
				Baseline:  base,
				History:   history,
			})
			So(v.RawStatus, ShouldEqual, model.StatusWatch)
		})

		Convey("Exactly at baseline*0.3 is not low: the threshold is strict", func() {
			history := []model.WeeklyScore{
				closedWeek(0, 24, 80, active()),
			}
			v := c.Classify(classify.Input{
				Week:      model.AddWeeks(week0, 1),
				Composite: 24, // 24 == 80*0.3
				Tally:     active(),
				Baseline:  base,
				History:   history,
			})
			So(v.FiredRules, ShouldNotContain, classify.RuleSustainedLow)
		})

		Convey("Just under the line for two weeks is watch, for three needs_review", func() {
			two := []model.WeeklyScore{
				closedWeek(0, 80, 80, active()),
				closedWeek(1, 23.92, 80, active()), // 0.299 * 80
			}
			v := c.Classify(classify.Input{
				Week:      model.AddWeeks(week0, 2),
				Composite: 23.92,
				Tally:     active(),
				Baseline:  base,
				History:   two,
			})
			So(v.RawStatus, ShouldEqual, model.StatusWatch)

			three := append(two, closedWeek(2, 23.92, 80, active()))
			v = c.Classify(classify.Input{
				Week:      model.AddWeeks(week0, 3),
				Composite: 23.92,
				Tally:     active(),
				Baseline:  base,
				History:   three,
			})
			So(v.RawStatus, ShouldEqual, model.StatusNeedsReview)
		})

		Convey("A run broken by a healthy week starts over", func() {
			history := []model.WeeklyScore{
				closedWeek(0, 20, 80, active()),
				closedWeek(1, 75, 80, active()),
			}
			v := c.Classify(classify.Input{
				Week:      model.AddWeeks(week0, 2),
				Composite: 20,
				Tally:     active(),
				Baseline:  base,
				History:   history,
			})
			So(v.FiredRules, ShouldNotContain, classify.RuleSustainedLow)
		})
	})
}

func TestLowCollaboration(t *testing.T) {
	Convey("Given a 3-week window of authored PRs and zero reviews", t, func() {
		c := classify.New()
		base := baseline.Result{Score: 80, Available: true}
		history := []model.WeeklyScore{
			closedWeek(0, 80, 80, model.ActivityTally{PRsAuthored: 3, TicketsCompleted: 2}),
			closedWeek(1, 80, 80, model.ActivityTally{PRsAuthored: 2, TicketsCompleted: 2}),
		}

		Convey("The rule fires at watch", func() {
			v := c.Classify(classify.Input{
				Week:      model.AddWeeks(week0, 2),
				Composite: 80,
				Tally:     model.ActivityTally{PRsAuthored: 4, TicketsCompleted: 2},
				Baseline:  base,
				History:   history,
			})
			So(v.RawStatus, ShouldEqual, model.StatusWatch)
			So(v.FiredRules, ShouldContain, classify.RuleLowCollaboration)
		})

		Convey("A single review anywhere in the window clears it", func() {
			v := c.Classify(classify.Input{
				Week:      model.AddWeeks(week0, 2),
				Composite: 80,
				Tally:     model.ActivityTally{PRsAuthored: 4, PRsReviewed: 1, TicketsCompleted: 2},
				Baseline:  base,
				History:   history,
			})
			So(v.FiredRules, ShouldNotContain, classify.RuleLowCollaboration)
		})

		Convey("One week alone is not yet a pattern", func() {
			v := c.Classify(classify.Input{
				Week:      model.AddWeeks(week0, 0),
				Composite: 80,
				Tally:     model.ActivityTally{PRsAuthored: 4, TicketsCompleted: 2},
				Baseline:  base,
				History:   nil,
			})
			So(v.FiredRules, ShouldNotContain, classify.RuleLowCollaboration)
		})
	})
}

func TestSustainedInactivity(t *testing.T) {
	Convey("Given weeks with all work output at zero", t, func() {
		c := classify.New()
		base := baseline.Result{Score: 80, Available: true}

		Convey("Two consecutive inactive weeks reach needs_review", func() {
			history := []model.WeeklyScore{
				closedWeek(0, 80, 80, active()),
				closedWeek(1, 2, 80, model.ActivityTally{MeetingHours: 10}),
			}
			v := c.Classify(classify.Input{
				Week:      model.AddWeeks(week0, 2),
				Composite: 2,
				Tally:     model.ActivityTally{MeetingHours: 8},
				Baseline:  base,
				History:   history,
			})
			So(v.RawStatus, ShouldEqual, model.StatusNeedsReview)
			So(v.FiredRules, ShouldContain, classify.RuleInactivity)
		})

		Convey("One inactive week is not sustained", func() {
			history := []model.WeeklyScore{
				closedWeek(0, 80, 80, active()),
				closedWeek(1, 80, 80, active()),
			}
			v := c.Classify(classify.Input{
				Week:      model.AddWeeks(week0, 2),
				Composite: 2,
				Tally:     model.ActivityTally{},
				Baseline:  base,
				History:   history,
			})
			So(v.FiredRules, ShouldNotContain, classify.RuleInactivity)
		})
	})
}

func TestInsufficientHistory(t *testing.T) {
	Convey("Given a user without a usable baseline", t, func() {
		c := classify.New()

		Convey("There is no verdict, even with zero activity", func() {
			v := c.Classify(classify.Input{
				Week:      week0,
				Composite: 0,
				Tally:     model.ActivityTally{},
				Baseline:  baseline.Result{Available: false},
			})
			So(v.RawStatus, ShouldEqual, model.StatusHealthy)
			So(v.InsufficientHistory, ShouldBeTrue)
			So(v.Trend, ShouldEqual, model.TrendStable)
			So(v.FiredRules, ShouldBeEmpty)
		})
	})
}

func TestSeverityWins(t *testing.T) {
	Convey("When several rules fire, the highest severity wins", t, func() {
		c := classify.New()
		// Three low, inactive weeks: sustained-low and inactivity both fire.
		history := []model.WeeklyScore{
			closedWeek(0, 5, 80, model.ActivityTally{}),
			closedWeek(1, 5, 80, model.ActivityTally{}),
		}
		v := c.Classify(classify.Input{
			Week:      model.AddWeeks(week0, 2),
			Composite: 5,
			Tally:     model.ActivityTally{},
			Baseline:  baseline.Result{Score: 80, Available: true},
			History:   history,
		})
		So(v.RawStatus, ShouldEqual, model.StatusNeedsReview)
		So(len(v.FiredRules), ShouldBeGreaterThanOrEqualTo, 2)
	})
}

func TestTrend(t *testing.T) {
	Convey("Given baseline 80 and a 10% dead band", t, func() {
		c := classify.New()
		base := baseline.Result{Score: 80, Available: true}

		cases := []struct {
			composite float64
			want      model.Trend
		}{
			{composite: 95, want: model.TrendImproving},
			{composite: 80, want: model.TrendStable},
			{composite: 74, want: model.TrendStable},
			{composite: 60, want: model.TrendDeclining},
		}
		for _, tc := range cases {
			v := c.Classify(classify.Input{
				Week:      week0,
				Composite: tc.composite,
				Tally:     active(),
				Baseline:  base,
			})
			So(v.Trend, ShouldEqual, tc.want)
		}
	})
}
