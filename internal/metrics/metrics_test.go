// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordIngestionBatch(t *testing.T) {
	before := testutil.ToFloat64(IngestionOutcomesTotal.WithLabelValues("indexed"))

	RecordIngestionBatch(250*time.Millisecond, 8, 2, 1, 0)

	after := testutil.ToFloat64(IngestionOutcomesTotal.WithLabelValues("indexed"))
	if after-before != 8 {
		t.Errorf("expected indexed count to increase by 8, got delta %v", after-before)
	}

	dup := testutil.ToFloat64(IngestionOutcomesTotal.WithLabelValues("duplicate"))
	if dup < 2 {
		t.Errorf("expected duplicate count at least 2, got %v", dup)
	}
}

func TestRecordSearch(t *testing.T) {
	emptyBefore := testutil.ToFloat64(SearchEmptyTotal)

	RecordSearch("keyword", 15*time.Millisecond, 0)

	emptyAfter := testutil.ToFloat64(SearchEmptyTotal)
	if emptyAfter-emptyBefore != 1 {
		t.Errorf("expected SearchEmptyTotal to increase by 1, got delta %v", emptyAfter-emptyBefore)
	}

	RecordSearch("keyword", 15*time.Millisecond, 5)
	emptyAfter2 := testutil.ToFloat64(SearchEmptyTotal)
	if emptyAfter2 != emptyAfter {
		t.Errorf("expected SearchEmptyTotal unchanged for a non-empty search, got %v -> %v", emptyAfter, emptyAfter2)
	}
}

func TestRecordQuotaReservation(t *testing.T) {
	grantedBefore := testutil.ToFloat64(QuotaReservationsTotal.WithLabelValues("granted"))
	deniedBefore := testutil.ToFloat64(QuotaReservationsTotal.WithLabelValues("denied"))

	RecordQuotaReservation(true)
	RecordQuotaReservation(false)

	grantedAfter := testutil.ToFloat64(QuotaReservationsTotal.WithLabelValues("granted"))
	deniedAfter := testutil.ToFloat64(QuotaReservationsTotal.WithLabelValues("denied"))

	if grantedAfter-grantedBefore != 1 {
		t.Errorf("expected granted count to increase by 1, got delta %v", grantedAfter-grantedBefore)
	}
	if deniedAfter-deniedBefore != 1 {
		t.Errorf("expected denied count to increase by 1, got delta %v", deniedAfter-deniedBefore)
	}
}

func TestRecordFloodWait(t *testing.T) {
	before := testutil.ToFloat64(FloodWaitTotal)

	RecordFloodWait(30)

	after := testutil.ToFloat64(FloodWaitTotal)
	if after-before != 1 {
		t.Errorf("expected FloodWaitTotal to increase by 1, got delta %v", after-before)
	}
}

func TestSetAutoDeleteQueueDepth(t *testing.T) {
	SetAutoDeleteQueueDepth(42)

	got := testutil.ToFloat64(AutoDeleteQueueDepth)
	if got != 42 {
		t.Errorf("expected AutoDeleteQueueDepth = 42, got %v", got)
	}
}

func TestRecordBroadcast(t *testing.T) {
	sentBefore := testutil.ToFloat64(BroadcastDeliveriesTotal.WithLabelValues("sent"))
	blockedBefore := testutil.ToFloat64(BroadcastDeliveriesTotal.WithLabelValues("blocked"))

	RecordBroadcast(2*time.Second, 100, 3, 1, 0)

	sentAfter := testutil.ToFloat64(BroadcastDeliveriesTotal.WithLabelValues("sent"))
	blockedAfter := testutil.ToFloat64(BroadcastDeliveriesTotal.WithLabelValues("blocked"))

	if sentAfter-sentBefore != 100 {
		t.Errorf("expected sent count to increase by 100, got delta %v", sentAfter-sentBefore)
	}
	if blockedAfter-blockedBefore != 3 {
		t.Errorf("expected blocked count to increase by 3, got delta %v", blockedAfter-blockedBefore)
	}
}

func TestRecordMaintenanceRun(t *testing.T) {
	before := testutil.ToFloat64(MaintenanceExpiredPremiumRevoked)

	RecordMaintenanceRun(5*time.Second, 4)

	after := testutil.ToFloat64(MaintenanceExpiredPremiumRevoked)
	if after-before != 4 {
		t.Errorf("expected revoked count to increase by 4, got delta %v", after-before)
	}
}

func TestCacheMetrics(t *testing.T) {
	before := testutil.ToFloat64(CacheHits.WithLabelValues("quota"))

	CacheHits.WithLabelValues("quota").Inc()
	CacheMisses.WithLabelValues("quota").Inc()
	CacheEvictions.WithLabelValues("quota").Inc()

	after := testutil.ToFloat64(CacheHits.WithLabelValues("quota"))
	if after-before != 1 {
		t.Errorf("expected CacheHits to increase by 1, got delta %v", after-before)
	}
}

func TestCircuitBreakerMetrics(t *testing.T) {
	CircuitBreakerState.WithLabelValues("platform-client").Set(1)
	CircuitBreakerRequests.WithLabelValues("platform-client", "success").Inc()
	CircuitBreakerTransitions.WithLabelValues("platform-client", "closed", "open").Inc()

	got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("platform-client"))
	if got != 1 {
		t.Errorf("expected CircuitBreakerState = 1, got %v", got)
	}
}

func TestAppInfoMetrics(t *testing.T) {
	AppInfo.WithLabelValues("1.0.0", "go1.22").Set(1)
	AppUptime.Set(3600)

	got := testutil.ToFloat64(AppUptime)
	if got != 3600 {
		t.Errorf("expected AppUptime = 3600, got %v", got)
	}
}
