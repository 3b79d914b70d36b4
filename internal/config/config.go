// Package config defines process configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer
//   file and environment sources on top.
// - External errors must be wrapped via this package's sentinels.
package config

import (
	"runtime"
	"strings"
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// RosterPath points to the YAML roster of tracked users. Empty means
	// no roster file; users are then registered programmatically.
	RosterPath string `koanf:"roster_path"`

	// WeekAnchor is the weekday weeks start on. monday matches ISO weeks.
	WeekAnchor string `koanf:"week_anchor"`

	// QueueSize bounds the in-memory aggregation job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of aggregation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the event deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the score store.
	ShardCount int `koanf:"shard_count"`

	// BaselineWeeks is the trailing window used for the personal baseline.
	BaselineWeeks int `koanf:"baseline_weeks"`

	// BaselineMinWeeks is the minimum eligible weeks a baseline needs.
	BaselineMinWeeks int `koanf:"baseline_min_weeks"`

	// RoleChangeGraceWeeks excludes weeks after a role change from
	// baselines and keeps the role_change flag active.
	RoleChangeGraceWeeks int `koanf:"role_change_grace_weeks"`

	// SuddenDropThreshold is the fraction of baseline under which a single
	// week counts as a sudden drop.
	SuddenDropThreshold float64 `koanf:"sudden_drop_threshold"`

	// LowEngagementThreshold marks a week as low when its composite falls
	// below baseline * LowEngagementThreshold.
	LowEngagementThreshold float64 `koanf:"low_engagement_threshold"`

	// WatchWeeks and NeedsReviewWeeks are consecutive-low-week counts that
	// escalate to watch and needs_review respectively.
	WatchWeeks       int `koanf:"watch_weeks"`
	NeedsReviewWeeks int `koanf:"needs_review_weeks"`

	// CollaborationWindowWeeks is the window inspected for authored-but-
	// never-reviewing activity.
	CollaborationWindowWeeks int `koanf:"collaboration_window_weeks"`

	// InactivityWeeks is how many consecutive zero-activity weeks trigger
	// escalation.
	InactivityWeeks int `koanf:"inactivity_weeks"`

	// InactivityEpsilon is the near-zero cutoff under which an activity
	// metric counts as absent.
	InactivityEpsilon float64 `koanf:"inactivity_epsilon"`

	// TrendBand is the relative dead band around the baseline inside which
	// a week counts as stable.
	TrendBand float64 `koanf:"trend_band"`

	// MetricScales overrides saturation ceilings per metric. Empty keeps
	// the built-in table.
	MetricScales map[string]float64 `koanf:"metric_scales"`

	// RoleWeights overrides the per-role metric weight profile. Empty
	// keeps the built-in table. Each role's weights must sum to 1.
	RoleWeights map[string]map[string]float64 `koanf:"role_weights"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                 "info",
		WeekAnchor:               "monday",
		QueueSize:                10_000,
		WorkerCount:              runtime.NumCPU() * 2,
		DedupeSize:               500_000,
		ShardCount:               8,
		BaselineWeeks:            8,
		BaselineMinWeeks:         4,
		RoleChangeGraceWeeks:     2,
		SuddenDropThreshold:      0.4,
		LowEngagementThreshold:   0.3,
		WatchWeeks:               2,
		NeedsReviewWeeks:         3,
		CollaborationWindowWeeks: 3,
		InactivityWeeks:          2,
		InactivityEpsilon:        1e-9,
		TrendBand:                0.1,
	}
}

// Anchor returns the configured week anchor as a weekday. Call validate
// (via Load) first; unknown names fall back to Monday.
func (c *Config) Anchor() time.Weekday {
	if d, ok := weekdays[strings.ToLower(c.WeekAnchor)]; ok {
		return d
	}
	return time.Monday
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}
