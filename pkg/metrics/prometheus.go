// Package metrics provides Prometheus metrics for the cadence aggregation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus metric the engine records.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Ingestion metrics - event normalization quality
	eventsIngested  prometheus.Counter
	eventsDropped   prometheus.Counter
	eventsDuplicate prometheus.Counter

	// Scoring metrics
	scoringLatency prometheus.Histogram
	scoringErrors  prometheus.Counter

	// Batch metrics - per-run aggregation health
	batchDuration       prometheus.Histogram
	weeksAggregated     prometheus.Counter
	usersProcessed      prometheus.Counter
	usersFailed         prometheus.Counter
	statusAssigned      *prometheus.CounterVec
	weeksSuppressed     prometheus.Counter
	overridesApplied    prometheus.Counter
	insufficientHistory prometheus.Counter

	// Queue metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueEnqueueErrs prometheus.Counter
	queueDequeues    prometheus.Counter

	// Worker metrics
	workerCount      prometheus.Gauge
	workerJobLatency prometheus.Histogram
	workerErrors     prometheus.Counter

	// Store metrics
	storeRecords      prometheus.Gauge
	storeUsers        prometheus.Gauge
	storeWriteLatency prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// Registry returns the registry holding the engine's metrics so an embedding
// collaborator can expose it.
func Registry() *prometheus.Registry {
	return customRegistry
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cadence",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.eventsIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_ingested_total",
		Help:      "Total number of activity events accepted by the normalizer",
	})

	m.eventsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_dropped_total",
		Help:      "Total number of malformed or unattributable events skipped",
	})

	m.eventsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_duplicate_total",
		Help:      "Total number of duplicate event ids skipped",
	})

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_latency_milliseconds",
		Help:      "Histogram of composite scoring latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.scoringErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_errors_total",
		Help:      "Total number of scoring failures (unknown role, bad profile)",
	})

	m.batchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_duration_seconds",
		Help:      "Histogram of whole-batch aggregation duration in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300},
	})

	m.weeksAggregated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "weeks_aggregated_total",
		Help:      "Total number of user-weeks written by aggregation",
	})

	m.usersProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "users_processed_total",
		Help:      "Total number of users aggregated successfully",
	})

	m.usersFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "users_failed_total",
		Help:      "Total number of users whose aggregation failed and was isolated",
	})

	m.statusAssigned = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "status_assigned_total",
			Help:      "Total number of final statuses assigned, by status label",
		},
		[]string{"status"},
	)

	m.weeksSuppressed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "weeks_suppressed_total",
		Help:      "Total number of weeks whose status was capped by a context flag",
	})

	m.overridesApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "overrides_applied_total",
		Help:      "Total number of manual overrides applied to a user-week",
	})

	m.insufficientHistory = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "insufficient_history_total",
		Help:      "Total number of user-weeks classified without a usable baseline",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of queued aggregation jobs",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the aggregation job queue",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Total number of jobs enqueued",
	})

	m.queueEnqueueErrs = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of rejected enqueues (full or closed queue)",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Total number of jobs handed to workers",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Current number of aggregation workers",
	})

	m.workerJobLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_job_latency_milliseconds",
		Help:      "Histogram of per-user aggregation job latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of per-user job failures",
	})

	m.storeRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_records",
		Help:      "Current number of weekly score records held",
	})

	m.storeUsers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_users",
		Help:      "Current number of users with at least one aggregated week",
	})

	m.storeWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_write_latency_milliseconds",
		Help:      "Histogram of store write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Ingestion helpers.

func RecordEventIngested() {
	if globalManager.enabled {
		globalManager.eventsIngested.Inc()
	}
}

func RecordEventDropped() {
	if globalManager.enabled {
		globalManager.eventsDropped.Inc()
	}
}

func RecordEventDuplicate() {
	if globalManager.enabled {
		globalManager.eventsDuplicate.Inc()
	}
}

// Scoring helpers.

func RecordScoringLatency(ms float64) {
	if globalManager.enabled {
		globalManager.scoringLatency.Observe(ms)
	}
}

func RecordScoringError() {
	if globalManager.enabled {
		globalManager.scoringErrors.Inc()
	}
}

// Batch helpers.

func RecordBatchDuration(seconds float64) {
	if globalManager.enabled {
		globalManager.batchDuration.Observe(seconds)
	}
}

func RecordWeekAggregated() {
	if globalManager.enabled {
		globalManager.weeksAggregated.Inc()
	}
}

func RecordUserProcessed() {
	if globalManager.enabled {
		globalManager.usersProcessed.Inc()
	}
}

func RecordUserFailed() {
	if globalManager.enabled {
		globalManager.usersFailed.Inc()
	}
}

func RecordStatusAssigned(status string) {
	if globalManager.enabled {
		globalManager.statusAssigned.WithLabelValues(status).Inc()
	}
}

func RecordWeekSuppressed() {
	if globalManager.enabled {
		globalManager.weeksSuppressed.Inc()
	}
}

func RecordOverrideApplied() {
	if globalManager.enabled {
		globalManager.overridesApplied.Inc()
	}
}

func RecordInsufficientHistory() {
	if globalManager.enabled {
		globalManager.insufficientHistory.Inc()
	}
}

// Queue helpers.

func UpdateQueueSize(n int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(n))
	}
}

func UpdateQueueCapacity(n int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(n))
	}
}

func RecordQueueEnqueue() {
	if globalManager.enabled {
		globalManager.queueEnqueues.Inc()
	}
}

func RecordQueueEnqueueError() {
	if globalManager.enabled {
		globalManager.queueEnqueueErrs.Inc()
	}
}

func RecordQueueDequeue() {
	if globalManager.enabled {
		globalManager.queueDequeues.Inc()
	}
}

// Worker helpers.

func UpdateWorkerCount(n int) {
	if globalManager.enabled {
		globalManager.workerCount.Set(float64(n))
	}
}

func RecordWorkerJobLatency(ms float64) {
	if globalManager.enabled {
		globalManager.workerJobLatency.Observe(ms)
	}
}

func RecordWorkerError() {
	if globalManager.enabled {
		globalManager.workerErrors.Inc()
	}
}

// Store helpers.

func UpdateStoreRecords(n int) {
	if globalManager.enabled {
		globalManager.storeRecords.Set(float64(n))
	}
}

func UpdateStoreUsers(n int) {
	if globalManager.enabled {
		globalManager.storeUsers.Set(float64(n))
	}
}

func RecordStoreWriteLatency(ms float64) {
	if globalManager.enabled {
		globalManager.storeWriteLatency.Observe(ms)
	}
}
