// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the bot's domain. There is no HTTP listener in
// this package; an external exporter scrapes the default registry that
// promauto registers these against.

var (
	// Ingestion metrics

	IngestionBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingestion_batch_duration_seconds",
			Help:    "Duration of a channel-listening indexing batch in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	IngestionBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingestion_batch_size",
			Help:    "Number of media messages indexed per batch",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	IngestionOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_outcomes_total",
			Help: "Total number of ingested messages by outcome",
		},
		[]string{"outcome"}, // "indexed", "duplicate", "skipped_non_media", "error"
	)

	// Query / search metrics

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "Duration of a media search query in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query_type"}, // "keyword", "filtered"
	)

	SearchResultsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_results_returned",
			Help:    "Number of results returned per search query",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	SearchEmptyTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_empty_total",
			Help: "Total number of searches that returned zero results",
		},
	)

	// Quota metrics

	QuotaReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quota_reservations_total",
			Help: "Total number of daily retrieval quota reservation attempts",
		},
		[]string{"outcome"}, // "granted", "denied"
	)

	// Delivery / flood-wait metrics

	FloodWaitTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flood_wait_total",
			Help: "Total number of FLOOD_WAIT backoffs reported by the platform client",
		},
	)

	FloodWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flood_wait_seconds",
			Help:    "Requested FLOOD_WAIT duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	AutoDeleteQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "auto_delete_queue_depth",
			Help: "Current number of outbound messages pending scheduled deletion",
		},
	)

	// Broadcast metrics

	BroadcastDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "broadcast_duration_seconds",
			Help:    "Duration of an admin broadcast run in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	BroadcastDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_deliveries_total",
			Help: "Total number of broadcast message deliveries by outcome",
		},
		[]string{"outcome"}, // "sent", "blocked", "deactivated", "failed"
	)

	// Cache metrics (general, shared across search-history/quota/subscription caches)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry)",
		},
		[]string{"cache_type"},
	)

	// Circuit breaker metrics (for the platform-client gobreaker wrapper)

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
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Maintenance metrics

	MaintenanceRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "maintenance_run_duration_seconds",
			Help:    "Duration of the daily housekeeping run in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	MaintenanceExpiredPremiumRevoked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "maintenance_expired_premium_revoked_total",
			Help: "Total number of premium grants revoked for expiry during maintenance",
		},
	)

	// System metrics

	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordIngestionBatch records a completed indexing batch.
func RecordIngestionBatch(duration time.Duration, indexed, duplicate, skipped, errored int) {
	IngestionBatchDuration.Observe(duration.Seconds())
	IngestionBatchSize.Observe(float64(indexed + duplicate + skipped + errored))
	IngestionOutcomesTotal.WithLabelValues("indexed").Add(float64(indexed))
	IngestionOutcomesTotal.WithLabelValues("duplicate").Add(float64(duplicate))
	IngestionOutcomesTotal.WithLabelValues("skipped_non_media").Add(float64(skipped))
	IngestionOutcomesTotal.WithLabelValues("error").Add(float64(errored))
}

// RecordSearch records a completed search query.
func RecordSearch(queryType string, duration time.Duration, resultCount int) {
	SearchDuration.WithLabelValues(queryType).Observe(duration.Seconds())
	SearchResultsReturned.Observe(float64(resultCount))
	if resultCount == 0 {
		SearchEmptyTotal.Inc()
	}
}

// RecordQuotaReservation records a daily retrieval quota check.
func RecordQuotaReservation(granted bool) {
	if granted {
		QuotaReservationsTotal.WithLabelValues("granted").Inc()
		return
	}
	QuotaReservationsTotal.WithLabelValues("denied").Inc()
}

// RecordFloodWait records a FLOOD_WAIT backoff reported by the platform client.
func RecordFloodWait(waitSeconds int) {
	FloodWaitTotal.Inc()
	FloodWaitSeconds.Observe(float64(waitSeconds))
}

// SetAutoDeleteQueueDepth sets the current outbound auto-delete queue depth.
func SetAutoDeleteQueueDepth(depth int) {
	AutoDeleteQueueDepth.Set(float64(depth))
}

// RecordBroadcast records a completed admin broadcast run.
func RecordBroadcast(duration time.Duration, sent, blocked, deactivated, failed int) {
	BroadcastDuration.Observe(duration.Seconds())
	BroadcastDeliveriesTotal.WithLabelValues("sent").Add(float64(sent))
	BroadcastDeliveriesTotal.WithLabelValues("blocked").Add(float64(blocked))
	BroadcastDeliveriesTotal.WithLabelValues("deactivated").Add(float64(deactivated))
	BroadcastDeliveriesTotal.WithLabelValues("failed").Add(float64(failed))
}

// RecordMaintenanceRun records a completed daily housekeeping run.
func RecordMaintenanceRun(duration time.Duration, revokedPremium int) {
	MaintenanceRunDuration.Observe(duration.Seconds())
	MaintenanceExpiredPremiumRevoked.Add(float64(revokedPremium))
}
