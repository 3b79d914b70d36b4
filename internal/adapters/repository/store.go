// Package repository defines the weekly score store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/okian/cadence/internal/domain/model"
)

// Store provides read/write access to per-user weekly score timelines.
//
// A user's timeline is contiguous: once a week is closed there are no gaps
// and no duplicate weeks. Writes are atomic per user-week; re-writing an
// existing week replaces the whole record, which is what makes
// re-aggregation of a closed week idempotent.
type Store interface {
	// PutWeek writes one user-week record. The week must be the next
	// week after the user's latest, or an existing week (replace).
	// Returns ErrWeekGap otherwise.
	PutWeek(ctx context.Context, score model.WeeklyScore) error

	// Week returns the record for one user-week.
	// Returns ErrNotFound if the user or week is unknown.
	Week(ctx context.Context, userID string, week time.Time) (model.WeeklyScore, error)

	// HistoryBefore returns up to n records strictly before week,
	// most recent last. n <= 0 returns everything before week.
	HistoryBefore(ctx context.Context, userID string, week time.Time, n int) ([]model.WeeklyScore, error)

	// LatestWeek returns the user's most recent record.
	// Returns ErrNotFound for an unknown user.
	LatestWeek(ctx context.Context, userID string) (model.WeeklyScore, error)

	// History returns the user's full timeline in week order.
	History(ctx context.Context, userID string) ([]model.WeeklyScore, error)

	// Users returns every user id with at least one record.
	Users(ctx context.Context) []string

	// Count returns the total number of user-week records held.
	Count(ctx context.Context) int
}
