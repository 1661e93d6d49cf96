// Package metrics provides Prometheus metrics for the GAGE risk-scoring service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultNamespace = "gage"
	defaultSubsystem = "riskscore"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Scoring metrics
	scoreRequests prometheus.Counter
	scoreErrors   prometheus.Counter
	scoreLatency  prometheus.Histogram

	// Lookup metrics
	lookupRequests prometheus.Counter
	lookupMisses   prometheus.Counter

	// Dataset / snapshot metrics
	datasetRecords    prometheus.Gauge
	datasetSkipped    prometheus.Gauge
	snapshotLoadedTS  prometheus.Gauge
	reloads           prometheus.Counter
	reloadFailures    prometheus.Counter
	reloadRejected    prometheus.Counter
	reloadDuration    prometheus.Histogram

	// Archive metrics
	archiveQueueSize     prometheus.Gauge
	archiveQueueCapacity prometheus.Gauge
	archiveWrites        prometheus.Counter
	archiveDropped       prometheus.Counter
	archiveErrors        prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        defaultNamespace,
		subsystem:        defaultSubsystem,
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

	m.scoreRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_requests_total",
		Help:      "Total number of risk score computations",
	})

	m.scoreErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_errors_total",
		Help:      "Total number of failed risk score computations",
	})

	m.scoreLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_latency_milliseconds",
		Help:      "Histogram of risk score computation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.lookupRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lookup_requests_total",
		Help:      "Total number of record lookups",
	})

	m.lookupMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lookup_misses_total",
		Help:      "Total number of record lookups for unknown client ids",
	})

	m.datasetRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_records",
		Help:      "Number of records in the current dataset snapshot",
	})

	m.datasetSkipped = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_rows_skipped",
		Help:      "Number of unparseable rows skipped during the last load",
	})

	m.snapshotLoadedTS = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_loaded_unix",
		Help:      "Unix timestamp of the last successful snapshot load",
	})

	m.reloads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reloads_total",
		Help:      "Total number of successful dataset reloads",
	})

	m.reloadFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reload_failures_total",
		Help:      "Total number of failed dataset reloads",
	})

	m.reloadRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reloads_rejected_total",
		Help:      "Total number of reload requests rejected because one was in flight",
	})

	m.reloadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reload_duration_milliseconds",
		Help:      "Dataset load duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.archiveQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_queue_size",
		Help:      "Current number of analyses waiting to be archived",
	})

	m.archiveQueueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_queue_capacity",
		Help:      "Maximum capacity of the archive queue",
	})

	m.archiveWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_writes_total",
		Help:      "Total number of analyses written to the archive",
	})

	m.archiveDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_dropped_total",
		Help:      "Total number of analyses dropped because the archive queue was full",
	})

	m.archiveErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_errors_total",
		Help:      "Total number of archive write errors",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status code",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated heap memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers backed by the global manager.

// RecordScoreRequest increments the score request counter.
func RecordScoreRequest() {
	globalManager.scoreRequests.Inc()
}

// RecordScoreError increments the score error counter.
func RecordScoreError() {
	globalManager.scoreErrors.Inc()
}

// RecordScoreLatency records how long a score computation took.
func RecordScoreLatency(latencyMs float64) {
	globalManager.scoreLatency.Observe(latencyMs)
}

// RecordLookup increments the lookup counter.
func RecordLookup() {
	globalManager.lookupRequests.Inc()
}

// RecordLookupMiss increments the lookup miss counter.
func RecordLookupMiss() {
	globalManager.lookupMisses.Inc()
}

// UpdateDatasetRecords sets the current snapshot record count.
func UpdateDatasetRecords(count int) {
	globalManager.datasetRecords.Set(float64(count))
}

// UpdateDatasetSkipped sets the skipped-row count of the last load.
func UpdateDatasetSkipped(count int) {
	globalManager.datasetSkipped.Set(float64(count))
}

// UpdateSnapshotLoadedAt sets the timestamp of the last successful load.
func UpdateSnapshotLoadedAt(t time.Time) {
	globalManager.snapshotLoadedTS.Set(float64(t.Unix()))
}

// RecordReload increments the successful reload counter.
func RecordReload() {
	globalManager.reloads.Inc()
}

// RecordReloadFailure increments the failed reload counter.
func RecordReloadFailure() {
	globalManager.reloadFailures.Inc()
}

// RecordReloadRejected increments the rejected reload counter.
func RecordReloadRejected() {
	globalManager.reloadRejected.Inc()
}

// RecordReloadDuration records how long a dataset load took.
func RecordReloadDuration(latencyMs float64) {
	globalManager.reloadDuration.Observe(latencyMs)
}

// UpdateArchiveQueueSize sets the current archive queue depth.
func UpdateArchiveQueueSize(size int) {
	globalManager.archiveQueueSize.Set(float64(size))
}

// UpdateArchiveQueueCapacity sets the archive queue capacity.
func UpdateArchiveQueueCapacity(capacity int) {
	globalManager.archiveQueueCapacity.Set(float64(capacity))
}

// RecordArchiveWrite increments the archive write counter.
func RecordArchiveWrite() {
	globalManager.archiveWrites.Inc()
}

// RecordArchiveDrop increments the archive drop counter.
func RecordArchiveDrop() {
	globalManager.archiveDropped.Inc()
}

// RecordArchiveError increments the archive error counter.
func RecordArchiveError() {
	globalManager.archiveErrors.Inc()
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystemMemoryUsage sets the current heap allocation.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the current goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records the average GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by the service.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
