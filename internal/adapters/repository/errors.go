package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound = errors.New("user-week not found")
	ErrWeekGap  = errors.New("week would leave a gap in the timeline")
	ErrNoUser   = errors.New("user id required")
)
