package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if CADENCE_CONFIG is set
//  3. env (prefix CADENCE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("CADENCE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: CADENCE_QUEUE_SIZE, CADENCE_BASELINE_WEEKS, ...
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("CADENCE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "cadence_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, ok := weekdays[strings.ToLower(c.WeekAnchor)]; !ok {
		return fmt.Errorf("%w: unknown week_anchor %q", ErrInvalidConfig, c.WeekAnchor)
	}
	if c.InactivityEpsilon < 0 {
		return fmt.Errorf("%w: inactivity_epsilon must not be negative", ErrInvalidConfig)
	}
	if c.BaselineWeeks < 1 {
		return fmt.Errorf("%w: baseline_weeks must be at least 1", ErrInvalidConfig)
	}
	if c.BaselineMinWeeks < 1 || c.BaselineMinWeeks > c.BaselineWeeks {
		return fmt.Errorf("%w: baseline_min_weeks must be between 1 and baseline_weeks", ErrInvalidConfig)
	}
	if c.RoleChangeGraceWeeks < 0 {
		return fmt.Errorf("%w: role_change_grace_weeks must not be negative", ErrInvalidConfig)
	}
	if c.SuddenDropThreshold < 0 || c.SuddenDropThreshold > 1 {
		return fmt.Errorf("%w: sudden_drop_threshold must be within [0, 1]", ErrInvalidConfig)
	}
	if c.LowEngagementThreshold < 0 || c.LowEngagementThreshold > 1 {
		return fmt.Errorf("%w: low_engagement_threshold must be within [0, 1]", ErrInvalidConfig)
	}
	if c.WatchWeeks < 1 {
		return fmt.Errorf("%w: watch_weeks must be at least 1", ErrInvalidConfig)
	}
	if c.NeedsReviewWeeks < c.WatchWeeks {
		return fmt.Errorf("%w: needs_review_weeks must not be below watch_weeks", ErrInvalidConfig)
	}
	if c.InactivityWeeks < 1 {
		return fmt.Errorf("%w: inactivity_weeks must be at least 1", ErrInvalidConfig)
	}
	if c.TrendBand < 0 {
		return fmt.Errorf("%w: trend_band must not be negative", ErrInvalidConfig)
	}
	for role, weights := range c.RoleWeights {
		sum := 0.0
		for metric, w := range weights {
			if w < 0 {
				return fmt.Errorf("%w: role %q metric %q has a negative weight", ErrInvalidConfig, role, metric)
			}
			sum += w
		}
		if sum < 0.999 || sum > 1.001 {
			return fmt.Errorf("%w: role %q weights sum to %.3f, want 1", ErrInvalidConfig, role, sum)
		}
	}
	for metric, scale := range c.MetricScales {
		if scale <= 0 {
			return fmt.Errorf("%w: metric %q has a non-positive scale", ErrInvalidConfig, metric)
		}
	}
	return nil
}
