package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filevault/botcore/internal/cachestore/cachetest"
	"github.com/filevault/botcore/internal/mediaindex"
	"github.com/filevault/botcore/internal/models"
	"github.com/filevault/botcore/internal/store"
	"github.com/filevault/botcore/internal/store/storetest"
)

func newTestEngine(t *testing.T) (*Engine, *storetest.Collection) {
	t.Helper()
	principalsColl := storetest.New()
	settingsColl := storetest.New()
	db := storetest.NewDatabase()
	index := mediaindex.New(storetest.New(), cachetest.New())
	e := New(principalsColl, settingsColl, index, db, cachetest.New(), 30*24*time.Hour)
	return e, principalsColl
}

func TestCleanupExpiredPremiumClearsStalePrincipals(t *testing.T) {
	e, principals := newTestEngine(t)
	ctx := context.Background()

	stale := e.clock().Add(-40 * 24 * time.Hour)
	fresh := e.clock().Add(-1 * time.Hour)
	require.NoError(t, principals.InsertOne(ctx, models.Principal{ID: 1, Status: models.PrincipalActive, IsPremium: true, PremiumActivationDate: &stale}))
	require.NoError(t, principals.InsertOne(ctx, models.Principal{ID: 2, Status: models.PrincipalActive, IsPremium: true, PremiumActivationDate: &fresh}))

	n, err := e.CleanupExpiredPremium(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	p, found, err := e.principals.FindByID(ctx, int64(1))
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, p.IsPremium)
	assert.Nil(t, p.PremiumActivationDate)

	p2, found, err := e.principals.FindByID(ctx, int64(2))
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, p2.IsPremium)
}

func TestResetDailyCountersZeroesNonzeroCounts(t *testing.T) {
	e, principals := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, principals.InsertOne(ctx, models.Principal{ID: 1, Status: models.PrincipalActive, DailyRetrievalCount: 5}))
	require.NoError(t, principals.InsertOne(ctx, models.Principal{ID: 2, Status: models.PrincipalActive, DailyRetrievalCount: 0}))

	n, err := e.ResetDailyCounters(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	p, _, err := e.principals.FindByID(ctx, int64(1))
	require.NoError(t, err)
	assert.Equal(t, 0, p.DailyRetrievalCount)
}

func TestRunDailyMaintenanceResetsCountersOnceADay(t *testing.T) {
	e, principals := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, principals.InsertOne(ctx, models.Principal{ID: 1, Status: models.PrincipalActive, DailyRetrievalCount: 3}))

	first := e.RunDailyMaintenance(ctx)
	assert.True(t, first.CountersReset)
	assert.Equal(t, 1, first.ResetCount)

	require.NoError(t, principals.InsertOne(ctx, models.Principal{ID: 2, Status: models.PrincipalActive, DailyRetrievalCount: 9}))
	second := e.RunDailyMaintenance(ctx)
	assert.False(t, second.CountersReset)
}

func TestRunDailyMaintenanceResetsAgainOnNewDay(t *testing.T) {
	e, principals := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, principals.InsertOne(ctx, models.Principal{ID: 1, Status: models.PrincipalActive, DailyRetrievalCount: 3}))

	base := e.clock()
	e.clock = func() time.Time { return base }
	first := e.RunDailyMaintenance(ctx)
	assert.True(t, first.CountersReset)

	require.NoError(t, principals.InsertOne(ctx, models.Principal{ID: 2, Status: models.PrincipalActive, DailyRetrievalCount: 4}))
	e.clock = func() time.Time { return base.Add(25 * time.Hour) }
	second := e.RunDailyMaintenance(ctx)
	assert.True(t, second.CountersReset)
	assert.Equal(t, 1, second.ResetCount)
}

func TestGetUserStats(t *testing.T) {
	e, principals := newTestEngine(t)
	ctx := context.Background()

	now := e.clock()
	require.NoError(t, principals.InsertOne(ctx, models.Principal{ID: 1, Status: models.PrincipalActive, IsPremium: true, LastRetrievalDate: &now}))
	require.NoError(t, principals.InsertOne(ctx, models.Principal{ID: 2, Status: models.PrincipalBanned}))
	require.NoError(t, principals.InsertOne(ctx, models.Principal{ID: 3, Status: models.PrincipalActive}))

	stats, err := e.GetUserStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.Premium)
	assert.Equal(t, int64(1), stats.Banned)
	assert.Equal(t, int64(1), stats.ActiveToday)
}

func TestGetSystemStats(t *testing.T) {
	e, principals := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, principals.InsertOne(ctx, models.Principal{ID: 1, Status: models.PrincipalActive}))

	_, _, err := e.index.SaveMedia(ctx, models.MediaFile{FileUniqueID: "u1", FileID: "f1", FileType: models.FileTypeVideo, FileSize: 10})
	require.NoError(t, err)

	db, ok := e.db.(*storetest.Database)
	require.True(t, ok)
	db.SetStats(store.DBStats{DataSize: 1000, StorageSize: 2000, IndexSize: 300})
	for _, name := range mainCollections {
		db.SetCollectionStats(name, store.CollStats{Count: 1, Size: 10, AvgObjSize: 10, StorageSize: 20})
	}

	stats, err := e.GetSystemStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Users.Total)
	assert.Equal(t, int64(1), stats.Files.TotalFiles)
	assert.Equal(t, int64(1000), stats.Storage.DatabaseSize)
	assert.Equal(t, int64(len(mainCollections)), stats.Storage.ObjectsCount)
}

func TestServeRunsUntilCancelled(t *testing.T) {
	e, principals := newTestEngine(t)
	now := e.clock()
	require.NoError(t, principals.InsertOne(context.Background(), models.Principal{
		ID: 1, IsPremium: true, PremiumActivationDate: &now,
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := e.Serve(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
