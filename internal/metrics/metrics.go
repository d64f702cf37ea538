// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync modes
const (
	ModeBootstrap = "bootstrap"
	ModeRefresh   = "refresh"
)

var (
	// Sync Metrics
	SyncPassDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_pass_duration_seconds",
			Help:    "Duration of reconciliation passes in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"mode"},
	)

	SyncPassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_passes_total",
			Help: "Total number of reconciliation passes",
		},
		[]string{"mode", "result"}, // result: "success", "skipped", "error"
	)

	SyncEventChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_event_changes_total",
			Help: "Total number of event changes applied by refresh passes",
		},
		[]string{"change"}, // "inserted", "updated", "deleted", "unchanged"
	)

	SyncRecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_records_skipped_total",
			Help: "Total number of feed records skipped during normalization",
		},
		[]string{"kind", "reason"},
	)

	SyncLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sync_last_success_timestamp",
			Help: "Unix timestamp of the last successful pass",
		},
		[]string{"mode"},
	)

	SyncVenuesRetained = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_venues_retained",
			Help: "Number of venues kept by the last bootstrap",
		},
	)

	// Feed Metrics
	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_fetch_duration_seconds",
			Help:    "Duration of upstream feed downloads in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"feed"},
	)

	FeedFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetch_errors_total",
			Help: "Total number of failed feed downloads",
		},
		[]string{"feed", "error_type"}, // error_type: "fetch", "parse"
	)

	FeedBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_bytes_total",
			Help: "Total bytes read from upstream feeds",
		},
		[]string{"feed"},
	)

	// Store Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of persistence gateway operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operation_errors_total",
			Help: "Total number of failed persistence gateway operations",
		},
		[]string{"backend", "operation"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Current number of active WebSocket connections",
		},
	)

	// Event bus Metrics
	EventBusPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventbus_messages_published_total",
			Help: "Total number of messages published on the in-process event bus",
		},
		[]string{"topic"},
	)
)

// RecordSyncPass records the outcome of one reconciliation pass.
// result is "success", "skipped" or "error".
func RecordSyncPass(mode, result string, duration time.Duration) {
	SyncPassDuration.WithLabelValues(mode).Observe(duration.Seconds())
	SyncPassesTotal.WithLabelValues(mode, result).Inc()
	if result != "error" {
		SyncLastSuccess.WithLabelValues(mode).Set(float64(time.Now().Unix()))
	}
}

// RecordEventChanges records the diff applied by a refresh pass.
func RecordEventChanges(inserted, updated, deleted, unchanged int) {
	SyncEventChanges.WithLabelValues("inserted").Add(float64(inserted))
	SyncEventChanges.WithLabelValues("updated").Add(float64(updated))
	SyncEventChanges.WithLabelValues("deleted").Add(float64(deleted))
	SyncEventChanges.WithLabelValues("unchanged").Add(float64(unchanged))
}

// RecordSkip records one feed record dropped by a normalizer.
func RecordSkip(kind, reason string) {
	SyncRecordsSkipped.WithLabelValues(kind, reason).Inc()
}

// SetVenuesRetained sets the venue count kept by the last bootstrap.
func SetVenuesRetained(n int) {
	SyncVenuesRetained.Set(float64(n))
}

// RecordFeedFetch records a feed download. errorType is empty on success.
func RecordFeedFetch(feed string, duration time.Duration, bytes int64, errorType string) {
	FeedFetchDuration.WithLabelValues(feed).Observe(duration.Seconds())
	if bytes > 0 {
		FeedBytes.WithLabelValues(feed).Add(float64(bytes))
	}
	if errorType != "" {
		FeedFetchErrors.WithLabelValues(feed, errorType).Inc()
	}
}

// RecordStoreOperation records a persistence gateway call
func RecordStoreOperation(backend, operation string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(backend, operation).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, path, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordEventBusPublish counts a published event bus message
func RecordEventBusPublish(topic string) {
	EventBusPublished.WithLabelValues(topic).Inc()
}
