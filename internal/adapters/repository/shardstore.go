package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/cadence/internal/domain/model"
	"github.com/okian/cadence/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultShardCount = 8
)

// ShardStore implements Store with per-shard locking. Users are hashed
// across shards; per-user timelines are append-ordered slices, so history
// reads are slice views and writes touch one shard only.
type ShardStore struct {
	shards []*shard
	count  int

	records atomic.Int64
	users   atomic.Int64
}

type shard struct {
	mu        sync.RWMutex
	timelines map[string][]model.WeeklyScore
}

// NewShardStore creates a sharded in-memory store.
func NewShardStore(opts ...Option) *ShardStore {
	s := &ShardStore{
		count: defaultShardCount,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard, s.count)
	for i := range s.shards {
		s.shards[i] = &shard{timelines: make(map[string][]model.WeeklyScore)}
	}

	return s
}

func (s *ShardStore) shardFor(userID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return s.shards[h.Sum32()%uint32(s.count)]
}

// PutWeek writes one user-week record, enforcing timeline contiguity.
func (s *ShardStore) PutWeek(_ context.Context, score model.WeeklyScore) error {
	if score.UserID == "" {
		return ErrNoUser
	}

	start := time.Now()
	defer func() {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	sh := s.shardFor(score.UserID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	timeline := sh.timelines[score.UserID]

	if len(timeline) == 0 {
		sh.timelines[score.UserID] = []model.WeeklyScore{score}
		s.users.Add(1)
		s.records.Add(1)
		s.updateGauges()
		return nil
	}

	// Replace an existing week in place.
	for i := range timeline {
		if timeline[i].WeekStart.Equal(score.WeekStart) {
			timeline[i] = score
			return nil
		}
	}

	last := timeline[len(timeline)-1].WeekStart
	if !score.WeekStart.Equal(model.AddWeeks(last, 1)) {
		return fmt.Errorf("%w: user %s has latest week %s, got %s",
			ErrWeekGap, score.UserID, last.Format("2006-01-02"), score.WeekStart.Format("2006-01-02"))
	}

	sh.timelines[score.UserID] = append(timeline, score)
	s.records.Add(1)
	s.updateGauges()
	return nil
}

// Week returns one user-week record.
func (s *ShardStore) Week(_ context.Context, userID string, week time.Time) (model.WeeklyScore, error) {
	sh := s.shardFor(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	for _, w := range sh.timelines[userID] {
		if w.WeekStart.Equal(week) {
			return w, nil
		}
	}
	return model.WeeklyScore{}, fmt.Errorf("%w: user %s week %s", ErrNotFound, userID, week.Format("2006-01-02"))
}

// HistoryBefore returns up to n records strictly before week, most recent
// last.
func (s *ShardStore) HistoryBefore(_ context.Context, userID string, week time.Time, n int) ([]model.WeeklyScore, error) {
	sh := s.shardFor(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	timeline := sh.timelines[userID]
	end := 0
	for end < len(timeline) && timeline[end].WeekStart.Before(week) {
		end++
	}

	start := end - n
	if n <= 0 || start < 0 {
		start = 0
	}

	out := make([]model.WeeklyScore, end-start)
	copy(out, timeline[start:end])
	return out, nil
}

// LatestWeek returns the user's most recent record.
func (s *ShardStore) LatestWeek(_ context.Context, userID string) (model.WeeklyScore, error) {
	sh := s.shardFor(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	timeline := sh.timelines[userID]
	if len(timeline) == 0 {
		return model.WeeklyScore{}, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return timeline[len(timeline)-1], nil
}

// History returns the user's full timeline in week order.
func (s *ShardStore) History(_ context.Context, userID string) ([]model.WeeklyScore, error) {
	sh := s.shardFor(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	timeline := sh.timelines[userID]
	out := make([]model.WeeklyScore, len(timeline))
	copy(out, timeline)
	return out, nil
}

// Users returns every user id with at least one record.
func (s *ShardStore) Users(_ context.Context) []string {
	var users []string
	for _, sh := range s.shards {
		sh.mu.RLock()
		for u := range sh.timelines {
			users = append(users, u)
		}
		sh.mu.RUnlock()
	}
	return users
}

// Count returns the total number of user-week records held.
func (s *ShardStore) Count(_ context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, timeline := range sh.timelines {
			total += len(timeline)
		}
		sh.mu.RUnlock()
	}
	return total
}

func (s *ShardStore) updateGauges() {
	metrics.UpdateStoreRecords(int(s.records.Load()))
	metrics.UpdateStoreUsers(int(s.users.Load()))
}
