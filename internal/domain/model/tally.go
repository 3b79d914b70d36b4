package model

// Metric names a weighted component of the composite score.
type Metric string

// The seven weekly activity metrics.
const (
	MetricTickets     Metric = "tickets"
	MetricStoryPoints Metric = "story_points"
	MetricPRsAuthored Metric = "prs_authored"
	MetricPRsReviewed Metric = "prs_reviewed"
	MetricCommits     Metric = "commits"
	MetricDocs        Metric = "docs"
	MetricMeetings    Metric = "meetings"
)

// Metrics lists every metric in stable order.
func Metrics() []Metric {
	return []Metric{
		MetricTickets,
		MetricStoryPoints,
		MetricPRsAuthored,
		MetricPRsReviewed,
		MetricCommits,
		MetricDocs,
		MetricMeetings,
	}
}

// ActivityTally holds accumulated counts for one user-week. All fields
// default to zero when no events of that kind occurred; a tally is never
// missing for an aggregated week. Immutable once the week is closed.
type ActivityTally struct {
	TicketsCompleted int     `json:"tickets_completed"`
	StoryPoints      float64 `json:"story_points"`
	PRsAuthored      int     `json:"prs_authored"`
	PRsReviewed      int     `json:"prs_reviewed"`
	Commits          int     `json:"commits"`
	DocsAuthored     int     `json:"docs_authored"`
	MeetingHours     float64 `json:"meeting_hours"`
}

// Value returns the tally field for a metric as a float64.
func (t ActivityTally) Value(m Metric) float64 {
	switch m {
	case MetricTickets:
		return float64(t.TicketsCompleted)
	case MetricStoryPoints:
		return t.StoryPoints
	case MetricPRsAuthored:
		return float64(t.PRsAuthored)
	case MetricPRsReviewed:
		return float64(t.PRsReviewed)
	case MetricCommits:
		return float64(t.Commits)
	case MetricDocs:
		return float64(t.DocsAuthored)
	case MetricMeetings:
		return t.MeetingHours
	default:
		return 0
	}
}

// Inactive reports whether every non-meeting metric is at or below eps.
// Meeting hours are excluded: calendar presence alone is not work output.
func (t ActivityTally) Inactive(eps float64) bool {
	return float64(t.TicketsCompleted) <= eps &&
		float64(t.PRsAuthored) <= eps &&
		float64(t.PRsReviewed) <= eps &&
		float64(t.Commits) <= eps &&
		float64(t.DocsAuthored) <= eps
}
