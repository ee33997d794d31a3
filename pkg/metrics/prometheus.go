// Package metrics provides Prometheus metrics for the icexg scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Bucket layouts.
var (
	// xG is a probability capped at 0.95.
	expectedGoalsBuckets = []float64{0.01, 0.022, 0.045, 0.08, 0.12, 0.18, 0.2, 0.35, 0.5, 0.75, 0.95}
	batchSizeBuckets     = prometheus.ExponentialBuckets(1, 2, 12)
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	constLabels    map[string]string
	registry       prometheus.Registerer

	// Scoring
	predictions   *prometheus.CounterVec
	expectedGoals prometheus.Histogram
	batchSize     prometheus.Histogram
	modelLoaded   prometheus.Gauge
	unknownTypes  prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimited         *prometheus.CounterVec

	// Errors
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// Live stream
	streamConnections prometheus.Gauge
	streamMessages    *prometheus.CounterVec
	streamDuplicates  prometheus.Counter
	streamTracked     prometheus.Histogram

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "icexg",
		subsystem:      "scoring",
		latencyBuckets: prometheus.DefBuckets,
		constLabels:    map[string]string{},
		registry:       prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "predictions_total",
		Help:        "Total number of scored shots by quality tier and danger zone",
		ConstLabels: m.constLabels,
	}, []string{"quality", "danger_zone"})

	m.expectedGoals = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "expected_goals",
		Help:        "Distribution of returned expected-goals values",
		Buckets:     expectedGoalsBuckets,
		ConstLabels: m.constLabels,
	})

	m.batchSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "batch_size",
		Help:        "Number of shots per batch request",
		Buckets:     batchSizeBuckets,
		ConstLabels: m.constLabels,
	})

	m.modelLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "model_loaded",
		Help:        "1 when a trained model file was found at startup",
		ConstLabels: m.constLabels,
	})

	m.unknownTypes = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "unknown_shot_types_total",
		Help:        "Shots scored with a neutral multiplier because their type was not recognised",
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.rateLimited = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "rate_limited_total",
		Help:        "Requests or stream messages rejected by the rate limiter",
		ConstLabels: m.constLabels,
	}, []string{"endpoint"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "errors",
		Name:        "by_type_total",
		Help:        "Errors by type and severity",
		ConstLabels: m.constLabels,
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "errors",
		Name:        "by_endpoint_total",
		Help:        "Errors by endpoint, method and type",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "error_type"})

	m.streamConnections = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "stream",
		Name:        "connections",
		Help:        "Currently open live game stream connections",
		ConstLabels: m.constLabels,
	})

	m.streamMessages = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "stream",
		Name:        "messages_total",
		Help:        "Live stream messages sent by type",
		ConstLabels: m.constLabels,
	}, []string{"type"})

	m.streamDuplicates = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "stream",
		Name:        "duplicate_shots_total",
		Help:        "Shots ignored because their shotId was already scored on the connection",
		ConstLabels: m.constLabels,
	})

	m.streamTracked = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "stream",
		Name:        "tracked_shots",
		Help:        "Distinct shot IDs remembered by a stream connection when it closed",
		Buckets:     batchSizeBuckets,
		ConstLabels: m.constLabels,
	})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_usage_bytes",
		Help:        "Current heap allocation in bytes",
		ConstLabels: m.constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutines",
		Help:        "Current number of goroutines",
		ConstLabels: m.constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "gc_pause_milliseconds",
		Help:        "Average GC pause time in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: m.constLabels,
	})
}

// RecordPrediction records one scored shot.
func (m *Manager) RecordPrediction(quality, dangerZone string, xg float64) {
	m.predictions.WithLabelValues(quality, dangerZone).Inc()
	m.expectedGoals.Observe(xg)
}

// RecordBatchSize records the number of shots in a batch.
func (m *Manager) RecordBatchSize(n int) { m.batchSize.Observe(float64(n)) }

// RecordUnknownShotType counts a shot whose type was not recognised.
func (m *Manager) RecordUnknownShotType() { m.unknownTypes.Inc() }

// SetModelLoaded exposes the model capability flag.
func (m *Manager) SetModelLoaded(loaded bool) {
	if loaded {
		m.modelLoaded.Set(1)
		return
	}
	m.modelLoaded.Set(0)
}

// RecordHTTPRequest records a completed HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordRateLimited records a request rejected by the limiter.
func (m *Manager) RecordRateLimited(endpoint string) { m.rateLimited.WithLabelValues(endpoint).Inc() }

// RecordError records an error by endpoint and by type.
func (m *Manager) RecordError(endpoint, method, errorType, severity string) {
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// StreamOpened and StreamClosed track live stream connections.
func (m *Manager) StreamOpened() { m.streamConnections.Inc() }
func (m *Manager) StreamClosed() { m.streamConnections.Dec() }

// RecordStreamMessage records a message written to a stream client.
func (m *Manager) RecordStreamMessage(msgType string) { m.streamMessages.WithLabelValues(msgType).Inc() }

// RecordStreamDuplicate records a shot skipped as a duplicate.
func (m *Manager) RecordStreamDuplicate() { m.streamDuplicates.Inc() }

// ObserveStreamTrackedShots records how many shot IDs a closing stream held.
func (m *Manager) ObserveStreamTrackedShots(n int) { m.streamTracked.Observe(float64(n)) }

// UpdateSystem records process level gauges.
func (m *Manager) UpdateSystem(memBytes uint64, goroutines int, avgGCPauseMs float64) {
	m.systemMemoryUsage.Set(float64(memBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
	if avgGCPauseMs > 0 {
		m.systemGCPauseTime.Observe(avgGCPauseMs)
	}
}

// Package-level helpers delegate to the global manager.

// RecordPrediction records one scored shot on the global manager.
func RecordPrediction(quality, dangerZone string, xg float64) {
	globalManager.RecordPrediction(quality, dangerZone, xg)
}

// RecordBatchSize records a batch size on the global manager.
func RecordBatchSize(n int) { globalManager.RecordBatchSize(n) }

// SetModelLoaded sets the capability gauge on the global manager.
func SetModelLoaded(loaded bool) { globalManager.SetModelLoaded(loaded) }

// RecordUnknownShotType counts an unrecognised shot type on the global manager.
func RecordUnknownShotType() { globalManager.RecordUnknownShotType() }

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordRateLimited records a limiter rejection on the global manager.
func RecordRateLimited(endpoint string) { globalManager.RecordRateLimited(endpoint) }

// RecordError records an error on the global manager.
func RecordError(endpoint, method, errorType, severity string) {
	globalManager.RecordError(endpoint, method, errorType, severity)
}

// StreamOpened increments the open stream gauge.
func StreamOpened() { globalManager.StreamOpened() }

// StreamClosed decrements the open stream gauge.
func StreamClosed() { globalManager.StreamClosed() }

// RecordStreamMessage records a stream message on the global manager.
func RecordStreamMessage(msgType string) { globalManager.RecordStreamMessage(msgType) }

// RecordStreamDuplicate records a duplicate shot on the global manager.
func RecordStreamDuplicate() { globalManager.RecordStreamDuplicate() }

// ObserveStreamTrackedShots records a closing stream's tracked IDs on the global manager.
func ObserveStreamTrackedShots(n int) { globalManager.ObserveStreamTrackedShots(n) }

// UpdateSystem records process gauges on the global manager.
func UpdateSystem(memBytes uint64, goroutines int, avgGCPauseMs float64) {
	globalManager.UpdateSystem(memBytes, goroutines, avgGCPauseMs)
}

// GetRegistry returns the custom Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
