package model

import (
	"encoding/json"
	"fmt"
)

// Status is an engagement classification on an ordered severity scale.
type Status int

// Severity order matters: later values are more severe.
const (
	StatusHealthy Status = iota
	StatusWatch
	StatusNeedsReview
)

var statusNames = map[Status]string{
	StatusHealthy:     "healthy",
	StatusWatch:       "watch",
	StatusNeedsReview: "needs_review",
}

// ParseStatus converts a wire label back into a Status.
func ParseStatus(s string) (Status, error) {
	for st, name := range statusNames {
		if name == s {
			return st, nil
		}
	}
	return StatusHealthy, fmt.Errorf("unknown status %q", s)
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Max returns the more severe of two statuses.
func (s Status) Max(other Status) Status {
	if other > s {
		return other
	}
	return s
}

// MarshalJSON emits the neutral wire label.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses the wire label.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Trend describes week-over-week movement against the baseline.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)
