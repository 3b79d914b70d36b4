package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/cadence/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWeekStart(t *testing.T) {
	Convey("Given timestamps across a week", t, func() {
		monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

		Convey("Any weekday truncates to the Monday anchor", func() {
			wed := time.Date(2024, 3, 6, 15, 30, 0, 0, time.UTC)
			sun := time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC)
			So(model.WeekStart(wed, time.Monday), ShouldEqual, monday)
			So(model.WeekStart(sun, time.Monday), ShouldEqual, monday)
			So(model.WeekStart(monday, time.Monday), ShouldEqual, monday)
		})

		Convey("A Sunday anchor shifts the boundary", func() {
			sunday := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
			So(model.WeekStart(monday, time.Sunday), ShouldEqual, sunday)
		})

		Convey("Week arithmetic is consistent", func() {
			next := model.AddWeeks(monday, 1)
			So(model.WeeksBetween(monday, next), ShouldEqual, 1)
			So(model.WeeksBetween(next, monday), ShouldEqual, -1)
			So(model.WeekContains(monday, monday.Add(6*24*time.Hour)), ShouldBeTrue)
			So(model.WeekContains(monday, next), ShouldBeFalse)
		})
	})
}

func TestStatus(t *testing.T) {
	Convey("Given the severity scale", t, func() {
		Convey("Max picks the more severe status", func() {
			So(model.StatusHealthy.Max(model.StatusWatch), ShouldEqual, model.StatusWatch)
			So(model.StatusNeedsReview.Max(model.StatusWatch), ShouldEqual, model.StatusNeedsReview)
		})

		Convey("Statuses round-trip through JSON labels", func() {
			for _, st := range []model.Status{model.StatusHealthy, model.StatusWatch, model.StatusNeedsReview} {
				data, err := json.Marshal(st)
				So(err, ShouldBeNil)
				var back model.Status
				So(json.Unmarshal(data, &back), ShouldBeNil)
				So(back, ShouldEqual, st)
			}
		})

		Convey("Unknown labels are rejected", func() {
			var st model.Status
			So(json.Unmarshal([]byte(`"slacker"`), &st), ShouldNotBeNil)
		})
	})
}

func TestContextFlag(t *testing.T) {
	Convey("Given a flag with a date range", t, func() {
		week := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
		flag := model.ContextFlag{
			Kind:  model.FlagPTO,
			From:  time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
			Until: time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
		}

		Convey("It is active in the overlapping week", func() {
			So(flag.ActiveIn(week), ShouldBeTrue)
		})

		Convey("It is inactive outside the range", func() {
			So(flag.ActiveIn(model.AddWeeks(week, 1)), ShouldBeFalse)
			So(flag.ActiveIn(model.AddWeeks(week, -1)), ShouldBeFalse)
		})

		Convey("A zero Until is open-ended", func() {
			open := model.ContextFlag{Kind: model.FlagOnboarding, From: week}
			So(open.ActiveIn(model.AddWeeks(week, 10)), ShouldBeTrue)
		})

		Convey("Only context kinds suppress", func() {
			So(flag.Suppressing(), ShouldBeTrue)
			So(model.ContextFlag{Kind: model.FlagManualOverride}.Suppressing(), ShouldBeFalse)
		})
	})
}

func TestTallyInactive(t *testing.T) {
	Convey("Given weekly tallies", t, func() {
		Convey("A zero tally is inactive even with meetings", func() {
			tally := model.ActivityTally{MeetingHours: 12}
			So(tally.Inactive(1e-9), ShouldBeTrue)
		})

		Convey("Any work output is active", func() {
			So(model.ActivityTally{Commits: 1}.Inactive(1e-9), ShouldBeFalse)
			So(model.ActivityTally{PRsReviewed: 2}.Inactive(1e-9), ShouldBeFalse)
		})
	})
}
