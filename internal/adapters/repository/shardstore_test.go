package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/cadence/internal/domain/model"
)

func week(n int) time.Time {
	base := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	return model.AddWeeks(base, n)
}

func record(userID string, n int, composite float64) model.WeeklyScore {
	return model.WeeklyScore{
		UserID:         userID,
		WeekStart:      week(n),
		CompositeScore: composite,
	}
}

func TestShardStorePutWeek(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		store := NewShardStore(WithShardCount(4))

		Convey("The first week of a user is accepted", func() {
			So(store.PutWeek(ctx, record("alice", 0, 50)), ShouldBeNil)
			So(store.Count(ctx), ShouldEqual, 1)
		})

		Convey("A record without a user id is rejected", func() {
			err := store.PutWeek(ctx, record("", 0, 50))
			So(errors.Is(err, ErrNoUser), ShouldBeTrue)
		})

		Convey("When a user has history", func() {
			So(store.PutWeek(ctx, record("alice", 0, 50)), ShouldBeNil)
			So(store.PutWeek(ctx, record("alice", 1, 60)), ShouldBeNil)

			Convey("The next consecutive week appends", func() {
				So(store.PutWeek(ctx, record("alice", 2, 70)), ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, 3)
			})

			Convey("A non-consecutive week is rejected", func() {
				err := store.PutWeek(ctx, record("alice", 4, 70))
				So(errors.Is(err, ErrWeekGap), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 2)
			})

			Convey("Rewriting an existing week replaces it in place", func() {
				So(store.PutWeek(ctx, record("alice", 0, 55)), ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, 2)

				got, err := store.Week(ctx, "alice", week(0))
				So(err, ShouldBeNil)
				So(got.CompositeScore, ShouldEqual, 55)
			})
		})
	})
}

func TestShardStoreReads(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store with several weeks of history", t, func() {
		store := NewShardStore()
		for i := 0; i < 6; i++ {
			So(store.PutWeek(ctx, record("alice", i, float64(10*i))), ShouldBeNil)
		}
		So(store.PutWeek(ctx, record("bob", 0, 30)), ShouldBeNil)

		Convey("Week returns the matching record", func() {
			got, err := store.Week(ctx, "alice", week(3))
			So(err, ShouldBeNil)
			So(got.CompositeScore, ShouldEqual, 30)
		})

		Convey("Week reports missing records", func() {
			_, err := store.Week(ctx, "alice", week(9))
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)

			_, err = store.Week(ctx, "nobody", week(0))
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("HistoryBefore returns the trailing window, most recent last", func() {
			got, err := store.HistoryBefore(ctx, "alice", week(5), 3)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 3)
			So(got[0].WeekStart.Equal(week(2)), ShouldBeTrue)
			So(got[2].WeekStart.Equal(week(4)), ShouldBeTrue)
		})

		Convey("HistoryBefore truncates when history is short", func() {
			got, err := store.HistoryBefore(ctx, "alice", week(2), 8)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 2)
		})

		Convey("HistoryBefore never includes the requested week or later", func() {
			got, err := store.HistoryBefore(ctx, "alice", week(0), 8)
			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
		})

		Convey("LatestWeek returns the newest record", func() {
			got, err := store.LatestWeek(ctx, "alice")
			So(err, ShouldBeNil)
			So(got.WeekStart.Equal(week(5)), ShouldBeTrue)

			_, err = store.LatestWeek(ctx, "nobody")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("History returns the full timeline in order", func() {
			got, err := store.History(ctx, "alice")
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 6)
			So(got[0].WeekStart.Equal(week(0)), ShouldBeTrue)
		})

		Convey("Users and Count span all shards", func() {
			So(len(store.Users(ctx)), ShouldEqual, 2)
			So(store.Count(ctx), ShouldEqual, 7)
		})
	})
}

func TestShardStoreConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	store := NewShardStore(WithShardCount(4))

	const users = 16
	const weeks = 10

	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		wg.Add(1)
		go func(u int) {
			defer wg.Done()
			id := fmt.Sprintf("user-%02d", u)
			for w := 0; w < weeks; w++ {
				if err := store.PutWeek(ctx, record(id, w, float64(w))); err != nil {
					t.Errorf("user %s week %d: %v", id, w, err)
					return
				}
			}
		}(u)
	}
	wg.Wait()

	if got := store.Count(ctx); got != users*weeks {
		t.Fatalf("expected %d records, got %d", users*weeks, got)
	}
	if got := len(store.Users(ctx)); got != users {
		t.Fatalf("expected %d users, got %d", users, got)
	}
}
