// Package model contains domain models passed between layers.
package model

import "time"

// Event sources recognized by the normalizer.
const (
	SourceJira     = "jira"
	SourceGitHub   = "github"
	SourceDocs     = "docs"
	SourceCalendar = "calendar"
)

// Event types emitted by the ingestion connectors.
const (
	TypeTicketCompleted = "ticket_completed"
	TypePRMerged        = "pr_merged"
	TypePRReviewed      = "pr_reviewed"
	TypeCommits         = "commits"
	TypeDocCreated      = "doc_created"
	TypeMeeting         = "meeting"
)

// Metadata keys carried by source-specific payloads.
const (
	MetaStoryPoints   = "story_points"
	MetaCommitCount   = "count"
	MetaDurationHours = "duration_hours"
)

// ActivityEvent is one normalized work-activity record from an ingestion
// connector. Fields mirror the JSONL ingest format.
type ActivityEvent struct {
	EventID    string             `json:"event_id"` // unique id for idempotency
	UserID     string             `json:"user_id"`
	Source     string             `json:"source"` // jira, github, docs, calendar
	Type       string             `json:"type"`
	OccurredAt time.Time          `json:"occurred_at"`
	Meta       map[string]float64 `json:"meta,omitempty"` // source-specific payload
}

// MetaValue returns the named payload value, or 0 when absent.
func (e ActivityEvent) MetaValue(key string) float64 {
	if e.Meta == nil {
		return 0
	}
	return e.Meta[key]
}

// Attributable reports whether the event can be assigned to a user-week.
func (e ActivityEvent) Attributable() bool {
	return e.UserID != "" && !e.OccurredAt.IsZero()
}
