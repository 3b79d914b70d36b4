// Package service provides the batch aggregation engine: it wires the
// normalizer, scorer, baseline calculator, classifier, and exception
// resolver into one pipeline and fans user jobs out over a worker pool.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	jobqueue "github.com/okian/cadence/internal/adapters/mq/queue"
	workerpool "github.com/okian/cadence/internal/adapters/mq/worker"
	repository "github.com/okian/cadence/internal/adapters/repository"
	"github.com/okian/cadence/internal/config"
	"github.com/okian/cadence/internal/domain/baseline"
	"github.com/okian/cadence/internal/domain/classify"
	"github.com/okian/cadence/internal/domain/dedupe"
	"github.com/okian/cadence/internal/domain/model"
	"github.com/okian/cadence/internal/domain/normalize"
	"github.com/okian/cadence/internal/domain/resolve"
	"github.com/okian/cadence/internal/domain/scoring"
	"github.com/okian/cadence/pkg/logger"
	"github.com/okian/cadence/pkg/metrics"
)

// Directory resolves per-user context: the role driving score weights and
// the flags feeding exception resolution.
type Directory interface {
	RoleFor(userID string) (string, error)
	FlagsFor(userID string) []model.ContextFlag
}

// Service implements the weekly aggregation engine.
type Service struct {
	// Core components
	normalizer *normalize.Normalizer
	scorer     scoring.Scorer
	baseline   *baseline.Calculator
	classifier *classify.Classifier
	store      repository.Store
	overrides  *resolve.OverrideLog
	directory  Directory

	// Configuration
	anchor       time.Weekday
	workerCount  int
	queueSize    int
	dedupeSize   int
	shardCount   int
	profile      scoring.Profile
	scales       scoring.Saturation
	baselineOpts []baseline.Option
	ruleOpts     []classify.Option

	// Per-user serialization of aggregation runs.
	inflight sync.Map // userID -> *sync.Mutex

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of aggregation workers per batch.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the event deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of shards in the score store.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithAnchor sets the weekday weeks are anchored on.
func WithAnchor(anchor time.Weekday) Option {
	return func(s *Service) {
		s.anchor = anchor
	}
}

// WithDirectory sets the role and flag source for tracked users.
func WithDirectory(d Directory) Option {
	return func(s *Service) {
		if d != nil {
			s.directory = d
		}
	}
}

// WithStore sets a custom score store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithProfile sets the role weight profile used for scoring.
func WithProfile(p scoring.Profile) Option {
	return func(s *Service) {
		if len(p) > 0 {
			s.profile = p
		}
	}
}

// WithSaturation overlays per-metric saturation ceilings.
func WithSaturation(scales scoring.Saturation) Option {
	return func(s *Service) {
		if len(scales) > 0 {
			s.scales = scales
		}
	}
}

// WithBaselineOptions forwards options to the baseline calculator.
func WithBaselineOptions(opts ...baseline.Option) Option {
	return func(s *Service) {
		s.baselineOpts = append(s.baselineOpts, opts...)
	}
}

// WithRuleOptions forwards options to the classifier.
func WithRuleOptions(opts ...classify.Option) Option {
	return func(s *Service) {
		s.ruleOpts = append(s.ruleOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// FromConfig maps loaded process configuration onto service options.
func FromConfig(cfg *config.Config) []Option {
	opts := []Option{
		WithAnchor(cfg.Anchor()),
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithShardCount(cfg.ShardCount),
		WithBaselineOptions(
			baseline.WithWindow(cfg.BaselineWeeks),
			baseline.WithMinWeeks(cfg.BaselineMinWeeks),
			baseline.WithGraceWeeks(cfg.RoleChangeGraceWeeks),
		),
		WithRuleOptions(
			classify.WithLowEngagementThreshold(cfg.LowEngagementThreshold),
			classify.WithSuddenDropThreshold(cfg.SuddenDropThreshold),
			classify.WithWatchWeeks(cfg.WatchWeeks),
			classify.WithNeedsReviewWeeks(cfg.NeedsReviewWeeks),
			classify.WithCollaborationWindow(cfg.CollaborationWindowWeeks),
			classify.WithInactivityWeeks(cfg.InactivityWeeks),
			classify.WithInactivityEpsilon(cfg.InactivityEpsilon),
			classify.WithTrendBand(cfg.TrendBand),
		),
	}

	if len(cfg.RoleWeights) > 0 {
		profile := make(scoring.Profile, len(cfg.RoleWeights))
		for role, weights := range cfg.RoleWeights {
			w := make(scoring.Weights, len(weights))
			for metric, value := range weights {
				w[model.Metric(metric)] = value
			}
			profile[role] = w
		}
		opts = append(opts, WithProfile(profile))
	}

	if len(cfg.MetricScales) > 0 {
		scales := make(scoring.Saturation, len(cfg.MetricScales))
		for metric, value := range cfg.MetricScales {
			scales[model.Metric(metric)] = value
		}
		opts = append(opts, WithSaturation(scales))
	}

	return opts
}

// New constructs a Service and its pipeline components.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		anchor:      time.Monday,
		workerCount: runtime.NumCPU() * 2,
		queueSize:   10_000,
		dedupeSize:  500_000,
		shardCount:  8,
		overrides:   resolve.NewOverrideLog(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	scorerOpts := []scoring.Option{}
	if len(s.profile) > 0 {
		scorerOpts = append(scorerOpts, scoring.WithProfile(s.profile))
	}
	if len(s.scales) > 0 {
		scorerOpts = append(scorerOpts, scoring.WithSaturation(s.scales))
	}
	scorer, err := scoring.NewWeightedScorer(scorerOpts...)
	if err != nil {
		return nil, fmt.Errorf("build scorer: %w", err)
	}
	s.scorer = scorer

	s.normalizer = normalize.New(
		normalize.WithAnchor(s.anchor),
		normalize.WithDeduper(dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))),
		normalize.WithLogger(s.logger.Named("normalize")),
	)
	s.baseline = baseline.New(s.baselineOpts...)
	s.classifier = classify.New(s.ruleOpts...)

	if s.store == nil {
		s.store = repository.NewShardStore(repository.WithShardCount(s.shardCount))
	}

	return s, nil
}

// Ingest feeds one activity event into the normalizer. Returns false when
// the event was dropped or was a duplicate.
func (s *Service) Ingest(ctx context.Context, e model.ActivityEvent) bool {
	return s.normalizer.Ingest(ctx, e)
}

// IngestAll drains an event stream until it closes or ctx is done.
func (s *Service) IngestAll(ctx context.Context, events <-chan model.ActivityEvent) error {
	return s.normalizer.Consume(ctx, events)
}

// IngestStats reports ingestion accounting so far.
func (s *Service) IngestStats() normalize.Stats {
	return s.normalizer.Stats()
}

// RunBatch aggregates every known user up to and including the week
// containing target. One user failing never affects the others; re-running
// the same week replaces records in place.
func (s *Service) RunBatch(ctx context.Context, target time.Time) error {
	week := model.WeekStart(target, s.anchor)

	start := time.Now()
	defer func() {
		metrics.RecordBatchDuration(time.Since(start).Seconds())
	}()

	users := s.batchUsers(ctx)
	s.logger.Info(ctx, "starting batch run",
		logger.Time("week", week),
		logger.Int("users", len(users)),
		logger.Int("workers", s.workerCount),
	)

	q := jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	pool := workerpool.NewPool(s.workerCount, q, s)
	pool.Start(ctx)

	for _, id := range users {
		if !q.Enqueue(ctx, jobqueue.Job{UserID: id, Week: week}) {
			s.logger.Warn(ctx, "aggregation job dropped", logger.String("user_id", id))
		}
	}

	if err := pool.Shutdown(ctx); err != nil {
		return fmt.Errorf("batch worker shutdown: %w", err)
	}

	s.logger.Info(ctx, "batch run finished",
		logger.Time("week", week),
		logger.Int("records", s.store.Count(ctx)),
	)
	return nil
}

// Aggregate runs the full pipeline for one user up to and including the
// given week, backfilling any weeks missing from the stored timeline.
// It implements the worker pool's Aggregator contract.
func (s *Service) Aggregate(ctx context.Context, userID string, week time.Time) error {
	week = model.WeekStart(week, s.anchor)

	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	role, err := s.directoryRole(userID)
	if err != nil {
		return err
	}
	flags := s.directoryFlags(userID)

	from, err := s.firstPendingWeek(ctx, userID, week)
	if err != nil {
		return err
	}

	for w := from; !w.After(week); w = model.AddWeeks(w, 1) {
		if err := s.aggregateWeek(ctx, userID, role, flags, w); err != nil {
			return err
		}
	}
	return nil
}

// aggregateWeek scores, baselines, classifies, and resolves one user-week,
// then persists the record.
func (s *Service) aggregateWeek(ctx context.Context, userID, role string, flags []model.ContextFlag, week time.Time) error {
	tally := s.normalizer.TallyFor(userID, week)

	scored, err := s.scorer.Score(ctx, scoring.Input{UserID: userID, Role: role, Tally: tally})
	if err != nil {
		return fmt.Errorf("score user %s: %w", userID, err)
	}

	history, err := s.store.HistoryBefore(ctx, userID, week, 0)
	if err != nil {
		return fmt.Errorf("load history for %s: %w", userID, err)
	}

	base := s.baseline.Compute(week, history)

	verdict := s.classifier.Classify(classify.Input{
		Week:      week,
		Composite: scored.Composite,
		Tally:     tally,
		Baseline:  base,
		History:   history,
	})

	decision := resolve.Resolve(verdict.RawStatus, flags, week, s.overrides.Latest(userID, week))

	record := model.WeeklyScore{
		UserID:            userID,
		WeekStart:         week,
		Tally:             tally,
		CompositeScore:    scored.Composite,
		BaselineAvailable: base.Available,
		Trend:             verdict.Trend,
		RawStatus:         verdict.RawStatus,
		FinalStatus:       decision.Final,
		Flags:             decision.Flags,
		Override:          decision.Override,
	}
	if base.Available {
		record.BaselineScore = base.Score
	}

	if err := s.store.PutWeek(ctx, record); err != nil {
		return fmt.Errorf("store week for %s: %w", userID, err)
	}

	metrics.RecordWeekAggregated()
	metrics.RecordStatusAssigned(decision.Final.String())
	if decision.Suppressed {
		metrics.RecordWeekSuppressed()
	}
	if verdict.InsufficientHistory {
		metrics.RecordInsufficientHistory()
	}

	if decision.Final > model.StatusHealthy || decision.Suppressed {
		s.logger.Info(ctx, "user week flagged",
			logger.String("user_id", userID),
			logger.Time("week", week),
			logger.String("raw_status", verdict.RawStatus.String()),
			logger.String("final_status", decision.Final.String()),
			logger.Bool("suppressed", decision.Suppressed),
		)
	}
	return nil
}

// firstPendingWeek decides where aggregation resumes: right after the last
// stored week, at the earliest observed activity, or at the target week
// itself when nothing else is known. Asking for an already-stored week
// re-aggregates just that week.
func (s *Service) firstPendingWeek(ctx context.Context, userID string, week time.Time) (time.Time, error) {
	latest, err := s.store.LatestWeek(ctx, userID)
	switch {
	case err == nil:
		next := model.AddWeeks(latest.WeekStart, 1)
		if week.Before(next) {
			return week, nil
		}
		return next, nil
	case errors.Is(err, repository.ErrNotFound):
		weeks := s.normalizer.WeeksFor(userID)
		if len(weeks) > 0 && weeks[0].Before(week) {
			return weeks[0], nil
		}
		return week, nil
	default:
		return time.Time{}, err
	}
}

// SubmitOverride records a manual status decision for a user-week and, when
// that week is already aggregated, re-resolves its final status in place.
// The latest submission always wins.
func (s *Service) SubmitOverride(ctx context.Context, o model.Override) (model.WeeklyScore, error) {
	o.WeekStart = model.WeekStart(o.WeekStart, s.anchor)

	applied, err := s.overrides.Submit(o)
	if err != nil {
		return model.WeeklyScore{}, err
	}

	mu := s.userLock(o.UserID)
	mu.Lock()
	defer mu.Unlock()

	record, err := s.store.Week(ctx, o.UserID, o.WeekStart)
	if err != nil {
		// Week not aggregated yet; the override is retained and applied
		// once the week is.
		return model.WeeklyScore{}, err
	}

	decision := resolve.Resolve(record.RawStatus, s.directoryFlags(o.UserID), o.WeekStart, &applied)
	record.FinalStatus = decision.Final
	record.Flags = decision.Flags
	record.Override = decision.Override

	if err := s.store.PutWeek(ctx, record); err != nil {
		return model.WeeklyScore{}, fmt.Errorf("store override for %s: %w", o.UserID, err)
	}

	metrics.RecordOverrideApplied()
	s.logger.Info(ctx, "override applied",
		logger.String("user_id", o.UserID),
		logger.Time("week", o.WeekStart),
		logger.String("status", applied.Status.String()),
		logger.String("submitted_by", applied.SubmittedBy),
	)
	return record, nil
}

// OverridesFor returns every override submitted for a user-week, oldest
// first.
func (s *Service) OverridesFor(userID string, week time.Time) []model.Override {
	return s.overrides.History(userID, model.WeekStart(week, s.anchor))
}

// WeekFor returns the stored record for one user-week.
func (s *Service) WeekFor(ctx context.Context, userID string, week time.Time) (model.WeeklyScore, error) {
	return s.store.Week(ctx, userID, model.WeekStart(week, s.anchor))
}

// HistoryFor returns a user's full stored timeline in week order.
func (s *Service) HistoryFor(ctx context.Context, userID string) ([]model.WeeklyScore, error) {
	return s.store.History(ctx, userID)
}

// Users returns every user id known to the engine, sorted.
func (s *Service) Users(ctx context.Context) []string {
	return s.batchUsers(ctx)
}

// batchUsers unions users seen in events, users with stored history, and
// the directory roster. Users without new events still re-aggregate so
// inactivity keeps accruing.
func (s *Service) batchUsers(ctx context.Context) []string {
	set := make(map[string]struct{})
	for _, id := range s.normalizer.Users() {
		set[id] = struct{}{}
	}
	for _, id := range s.store.Users(ctx) {
		set[id] = struct{}{}
	}
	if lister, ok := s.directory.(interface{ Users() []string }); ok {
		for _, id := range lister.Users() {
			set[id] = struct{}{}
		}
	}

	users := make([]string, 0, len(set))
	for id := range set {
		users = append(users, id)
	}
	sort.Strings(users)
	return users
}

func (s *Service) directoryRole(userID string) (string, error) {
	if s.directory == nil {
		return "", fmt.Errorf("no directory configured for user %s", userID)
	}
	return s.directory.RoleFor(userID)
}

func (s *Service) directoryFlags(userID string) []model.ContextFlag {
	if s.directory == nil {
		return nil
	}
	return s.directory.FlagsFor(userID)
}

func (s *Service) userLock(userID string) *sync.Mutex {
	v, _ := s.inflight.LoadOrStore(userID, &sync.Mutex{})
	return v.(*sync.Mutex)
}
