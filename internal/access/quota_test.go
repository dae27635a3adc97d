package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filevault/botcore/internal/cachestore/cachetest"
	"github.com/filevault/botcore/internal/models"
	"github.com/filevault/botcore/internal/store/storetest"
)

func newTestEngine() (*Engine, *storetest.Collection) {
	coll := storetest.New()
	return New(coll, cachetest.New()), coll
}

func seedPrincipalQuota(t *testing.T, coll *storetest.Collection, id int64, count int, date time.Time) {
	t.Helper()
	require.NoError(t, coll.InsertOne(context.Background(), models.Principal{
		ID:                  id,
		Status:              models.PrincipalActive,
		DailyRetrievalCount: count,
		LastRetrievalDate:   &date,
	}))
}

func TestReserveQuotaAtomicGrantsWithinLimit(t *testing.T) {
	e, coll := newTestEngine()
	today := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)
	e.clock = func() time.Time { return today }
	seedPrincipalQuota(t, coll, 1, 2, today)

	ok, reserved, reason, err := e.ReserveQuotaAtomic(context.Background(), 1, 3, 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, reserved)
	assert.Empty(t, reason)
}

func TestReserveQuotaAtomicDeniesAtLimit(t *testing.T) {
	e, coll := newTestEngine()
	today := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)
	e.clock = func() time.Time { return today }
	seedPrincipalQuota(t, coll, 1, 5, today)

	ok, reserved, reason, err := e.ReserveQuotaAtomic(context.Background(), 1, 1, 5)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, reserved)
	assert.Equal(t, "daily limit reached", reason)
}

func TestReserveQuotaAtomicGrantsPartialUpToLimit(t *testing.T) {
	e, coll := newTestEngine()
	today := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)
	e.clock = func() time.Time { return today }
	seedPrincipalQuota(t, coll, 1, 3, today)

	ok, reserved, reason, err := e.ReserveQuotaAtomic(context.Background(), 1, 10, 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, reserved)
	assert.Empty(t, reason)
}

func TestReserveQuotaAtomicRollsOverAcrossDays(t *testing.T) {
	e, coll := newTestEngine()
	yesterday := time.Date(2026, 7, 28, 10, 0, 0, 0, time.UTC)
	today := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)
	e.clock = func() time.Time { return today }
	seedPrincipalQuota(t, coll, 1, 5, yesterday)

	ok, reserved, _, err := e.ReserveQuotaAtomic(context.Background(), 1, 3, 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, reserved)

	p, found, err := e.repo.FindByID(context.Background(), int64(1))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 3, p.DailyRetrievalCount)
}

func TestReserveQuotaAtomicUpsertsNewPrincipal(t *testing.T) {
	e, _ := newTestEngine()
	today := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)
	e.clock = func() time.Time { return today }

	ok, reserved, _, err := e.ReserveQuotaAtomic(context.Background(), 99, 2, 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, reserved)
}

// TestReserveQuotaAtomicCASFilterRejectsStaleRolledOverRead proves the fix
// for the day-rollover lost-update race: a caller whose CAS filter still
// pins yesterday's date cannot match (and so cannot double-reserve against)
// a document another caller has already rolled over to today, even when
// the two prevCount values collide numerically.
func TestReserveQuotaAtomicCASFilterRejectsStaleRolledOverRead(t *testing.T) {
	e, coll := newTestEngine()
	yesterday := time.Date(2026, 7, 28, 10, 0, 0, 0, time.UTC)
	today := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)
	e.clock = func() time.Time { return today }

	// prevCount is chosen so effectiveCount(0)+k == prevCount: the exact
	// condition that made a count-only CAS filter ambiguous across a
	// rollover.
	seedPrincipalQuota(t, coll, 1, 5, yesterday)

	ok, reserved, _, err := e.ReserveQuotaAtomic(context.Background(), 1, 5, 5)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 5, reserved)

	// Replay the first caller's stale, pre-rollover view directly against
	// the collection, the same shape the CAS filter used before this fix
	// (count only). It must not match the document the first reservation
	// just wrote, which now carries today's date.
	staleFilter := map[string]any{
		"_id":                   int64(1),
		"daily_retrieval_count": 5,
		"last_retrieval_date":   yesterday,
	}
	matched, _, _, err := coll.UpdateOne(context.Background(), staleFilter, map[string]any{
		"daily_retrieval_count": 10,
	}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), matched, "stale pre-rollover filter must not match the rolled-over document")

	// A second reservation attempt for the same stale caller, retrying
	// from scratch, must see the already-rolled-over document and
	// correctly deny further reservation rather than double-granting.
	ok, reserved, reason, err := e.ReserveQuotaAtomic(context.Background(), 1, 1, 5)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, reserved)
	assert.Equal(t, "daily limit reached", reason)
}

func TestReleaseQuotaDecrementsClampedAtZero(t *testing.T) {
	e, coll := newTestEngine()
	today := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)
	e.clock = func() time.Time { return today }
	seedPrincipalQuota(t, coll, 1, 2, today)

	require.NoError(t, e.ReleaseQuota(context.Background(), 1, 5))

	p, found, err := e.repo.FindByID(context.Background(), int64(1))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 0, p.DailyRetrievalCount)
}

func TestReleaseQuotaOnMissingPrincipalIsNoop(t *testing.T) {
	e, _ := newTestEngine()
	require.NoError(t, e.ReleaseQuota(context.Background(), 404, 1))
}
