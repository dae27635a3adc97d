// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

/*
Package metrics provides Prometheus instrumentation for the bot's domain
operations.

This package registers metrics against the default Prometheus registry via
promauto; it does not stand up an HTTP listener. Scraping the registry
(e.g. via promhttp.Handler in an external exporter process) is out of
scope for this package.

# Available Metrics

Ingestion:
  - ingestion_batch_duration_seconds: duration of a channel-listening
    indexing batch (histogram)
  - ingestion_batch_size: number of media messages per batch (histogram)
  - ingestion_outcomes_total: indexed/duplicate/skipped_non_media/error
    counts (counter, label: outcome)

Search:
  - search_duration_seconds: query latency (histogram, label: query_type)
  - search_results_returned: result count distribution (histogram)
  - search_empty_total: searches returning zero results (counter)

Quota:
  - quota_reservations_total: daily retrieval quota checks (counter,
    label: outcome = granted|denied)

Delivery:
  - flood_wait_total / flood_wait_seconds: platform client FLOOD_WAIT
    occurrences and requested backoff (counter / histogram)
  - auto_delete_queue_depth: pending scheduled-deletion messages (gauge)

Broadcast:
  - broadcast_duration_seconds: admin broadcast run duration (histogram)
  - broadcast_deliveries_total: sent/blocked/deactivated/failed counts
    (counter, label: outcome)

Cache (shared across quota/subscription/search-history caches):
  - cache_hits_total / cache_misses_total / cache_evictions_total
    (counter, label: cache_type)

Circuit breaker (platform client transport):
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge, label: name)
  - circuit_breaker_requests_total (counter, labels: name, result)
  - circuit_breaker_state_transitions_total (counter, labels: name,
    from_state, to_state)

Maintenance:
  - maintenance_run_duration_seconds: daily housekeeping tick duration
    (histogram)
  - maintenance_expired_premium_revoked_total: premium grants revoked for
    expiry (counter)

# Usage Example

	import "github.com/filevault/botcore/internal/metrics"

	start := time.Now()
	// ... run an indexing batch ...
	metrics.RecordIngestionBatch(time.Since(start), indexed, dup, skipped, errored)

# Cardinality

Labels are bounded: "outcome" and "query_type" are fixed small enums, and
"cache_type"/"name" label a small, known set of cache instances and
circuit breakers. No per-principal or per-channel labels are used.

# See Also

  - https://prometheus.io/docs/practices/naming/: Metric naming conventions
*/
package metrics
