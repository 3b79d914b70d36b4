// Package normalize maps heterogeneous activity events into uniform
// per-user, per-week tallies.
package normalize

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/cadence/internal/domain/dedupe"
	"github.com/okian/cadence/internal/domain/model"
	"github.com/okian/cadence/pkg/logger"
	"github.com/okian/cadence/pkg/metrics"
)

// Stats reports ingestion accounting for one run.
type Stats struct {
	Ingested   int64
	Dropped    int64
	Duplicates int64
}

// Normalizer groups activity events by (user, week) and accumulates counts
// into tallies. Malformed events are dropped and counted, never fatal.
type Normalizer struct {
	anchor  time.Weekday
	deduper dedupe.Deduper
	log     logger.Logger

	mu      sync.Mutex
	tallies map[string]map[time.Time]*model.ActivityTally
	stats   Stats
}

// New creates a Normalizer with configuration options.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		anchor:  time.Monday,
		tallies: make(map[string]map[time.Time]*model.ActivityTally),
	}

	for _, opt := range opts {
		opt(n)
	}

	if n.log == nil {
		n.log = logger.Get().Named("normalize")
	}

	return n
}

// Consume drains a stream of events until the channel closes or ctx is done.
func (n *Normalizer) Consume(ctx context.Context, events <-chan model.ActivityEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				return nil
			}
			n.Ingest(ctx, e)
		}
	}
}

// Ingest accumulates a single event. Returns false when the event was
// dropped or skipped as a duplicate.
func (n *Normalizer) Ingest(ctx context.Context, e model.ActivityEvent) bool {
	if !e.Attributable() {
		n.drop(ctx, e, "unattributable")
		return false
	}

	if !known(e) {
		n.drop(ctx, e, "unknown source/type")
		return false
	}

	if n.deduper != nil && e.EventID != "" && n.deduper.SeenAndRecord(ctx, e.EventID) {
		n.mu.Lock()
		n.stats.Duplicates++
		n.mu.Unlock()
		metrics.RecordEventDuplicate()
		return false
	}

	week := model.WeekStart(e.OccurredAt, n.anchor)

	n.mu.Lock()
	apply(n.tallyLocked(e.UserID, week), e)
	n.stats.Ingested++
	n.mu.Unlock()

	metrics.RecordEventIngested()
	return true
}

// TallyFor returns the accumulated tally for a user-week. Absent weeks
// yield a zero-valued tally, never a missing one.
func (n *Normalizer) TallyFor(userID string, week time.Time) model.ActivityTally {
	n.mu.Lock()
	defer n.mu.Unlock()

	if weeks, ok := n.tallies[userID]; ok {
		if t, ok := weeks[week]; ok {
			return *t
		}
	}
	return model.ActivityTally{}
}

// WeeksFor returns the set of week starts a user has activity in,
// in ascending order.
func (n *Normalizer) WeeksFor(userID string) []time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()

	weeks := make([]time.Time, 0, len(n.tallies[userID]))
	for w := range n.tallies[userID] {
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })
	return weeks
}

// Users returns every user id with at least one ingested event.
func (n *Normalizer) Users() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	users := make([]string, 0, len(n.tallies))
	for u := range n.tallies {
		users = append(users, u)
	}
	return users
}

// Stats returns ingestion accounting for the run so far.
func (n *Normalizer) Stats() Stats {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stats
}

func (n *Normalizer) tallyLocked(userID string, week time.Time) *model.ActivityTally {
	weeks, ok := n.tallies[userID]
	if !ok {
		weeks = make(map[time.Time]*model.ActivityTally)
		n.tallies[userID] = weeks
	}
	t, ok := weeks[week]
	if !ok {
		t = &model.ActivityTally{}
		weeks[week] = t
	}
	return t
}

func (n *Normalizer) drop(ctx context.Context, e model.ActivityEvent, reason string) {
	n.mu.Lock()
	n.stats.Dropped++
	n.mu.Unlock()
	metrics.RecordEventDropped()
	n.log.Debug(ctx, "dropped event",
		logger.String("event_id", e.EventID),
		logger.String("source", e.Source),
		logger.String("type", e.Type),
		logger.String("reason", reason),
	)
}

// known reports whether the source/type pair maps onto a tally field.
func known(e model.ActivityEvent) bool {
	switch e.Source {
	case model.SourceJira:
		return e.Type == model.TypeTicketCompleted
	case model.SourceGitHub:
		return e.Type == model.TypePRMerged || e.Type == model.TypePRReviewed || e.Type == model.TypeCommits
	case model.SourceDocs:
		return e.Type == model.TypeDocCreated
	case model.SourceCalendar:
		return e.Type == model.TypeMeeting
	default:
		return false
	}
}

// apply maps one known event onto a tally.
func apply(t *model.ActivityTally, e model.ActivityEvent) {
	switch {
	case e.Source == model.SourceJira:
		t.TicketsCompleted++
		t.StoryPoints += e.MetaValue(model.MetaStoryPoints)
	case e.Type == model.TypePRMerged:
		t.PRsAuthored++
	case e.Type == model.TypePRReviewed:
		t.PRsReviewed++
	case e.Type == model.TypeCommits:
		t.Commits += int(e.MetaValue(model.MetaCommitCount))
	case e.Source == model.SourceDocs:
		t.DocsAuthored++
	case e.Source == model.SourceCalendar:
		t.MeetingHours += e.MetaValue(model.MetaDurationHours)
	}
}
