package broadcast

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filevault/botcore/internal/models"
	"github.com/filevault/botcore/internal/platform/platformtest"
	"github.com/filevault/botcore/internal/store/storetest"
)

func newTestService(t *testing.T) (*Service, *storetest.Collection) {
	t.Helper()
	coll := storetest.New()
	svc := New(platformtest.New(), coll)
	svc.delay = time.Millisecond
	svc.limiter = rate.NewLimiter(rate.Inf, 0)
	return svc, coll
}

func seedPrincipal(t *testing.T, coll *storetest.Collection, id int64, status models.PrincipalStatus) {
	t.Helper()
	err := coll.InsertOne(context.Background(), models.Principal{ID: id, Status: status})
	require.NoError(t, err)
}

func TestBroadcastToUsersSendsToTargetListAndClassifiesErrors(t *testing.T) {
	svc, _ := newTestService(t)

	sent := map[int64]bool{}
	sendFn := func(ctx context.Context, chatID int64) error {
		switch chatID {
		case 1:
			sent[chatID] = true
			return nil
		case 2:
			return errors.New("bot was blocked by the user")
		case 3:
			return errors.New("Chat not found")
		default:
			return errors.New("some transient network error")
		}
	}

	stats, err := svc.BroadcastToUsers(context.Background(), sendFn, []int64{1, 2, 3, 4}, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Success)
	assert.Equal(t, 1, stats.Blocked)
	assert.Equal(t, 1, stats.Deleted)
	assert.Equal(t, 1, stats.Failed)
	assert.True(t, sent[1])
}

func TestBroadcastToUsersDeletesPrincipalOnChatGone(t *testing.T) {
	svc, coll := newTestService(t)
	seedPrincipal(t, coll, 42, models.PrincipalActive)

	sendFn := func(ctx context.Context, chatID int64) error {
		return errors.New("user not found")
	}

	_, err := svc.BroadcastToUsers(context.Background(), sendFn, []int64{42}, nil)
	require.NoError(t, err)

	found, err := coll.FindOne(context.Background(), map[string]any{"_id": int64(42)}, &models.Principal{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBroadcastToUsersExcludesBannedWhenNoTargetList(t *testing.T) {
	svc, coll := newTestService(t)
	seedPrincipal(t, coll, 1, models.PrincipalActive)
	seedPrincipal(t, coll, 2, models.PrincipalBanned)

	var delivered []int64
	sendFn := func(ctx context.Context, chatID int64) error {
		delivered = append(delivered, chatID)
		return nil
	}

	stats, err := svc.BroadcastToUsers(context.Background(), sendFn, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.ElementsMatch(t, []int64{1}, delivered)
}

func TestBroadcastToUsersFiresProgressEveryThreshold(t *testing.T) {
	svc, _ := newTestService(t)
	targets := make([]int64, progressEvery+5)
	for i := range targets {
		targets[i] = int64(i + 1)
	}

	var calls int
	progress := func(s Stats) { calls++ }

	_, err := svc.BroadcastToUsers(context.Background(), func(ctx context.Context, chatID int64) error {
		return nil
	}, targets, progress)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 1)
}

func TestBroadcastToUsersPacesSendsWithLimiter(t *testing.T) {
	svc, _ := newTestService(t)
	svc.limiter = rate.NewLimiter(rate.Limit(100), 1) // 1 burst, 100/sec => 10ms between sends

	targets := []int64{1, 2, 3}
	var timestamps []time.Time
	_, err := svc.BroadcastToUsers(context.Background(), func(ctx context.Context, chatID int64) error {
		timestamps = append(timestamps, time.Now())
		return nil
	}, targets, nil)
	require.NoError(t, err)
	require.Len(t, timestamps, 3)
	assert.GreaterOrEqual(t, timestamps[1].Sub(timestamps[0]), 5*time.Millisecond)
	assert.GreaterOrEqual(t, timestamps[2].Sub(timestamps[1]), 5*time.Millisecond)
}

func TestBroadcastToUsersLimiterRespectsCancellation(t *testing.T) {
	svc, _ := newTestService(t)
	svc.limiter = rate.NewLimiter(rate.Limit(0.001), 1) // effectively never refills after the first send

	ctx, cancel := context.WithCancel(context.Background())
	targets := []int64{1, 2}
	calls := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := svc.BroadcastToUsers(ctx, func(ctx context.Context, chatID int64) error {
		calls++
		return nil
	}, targets, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestClassifyErrorBuckets(t *testing.T) {
	assert.Equal(t, classBlocked, classifyError(errors.New("Forbidden: bot was blocked by the user")))
	assert.Equal(t, classDeleted, classifyError(errors.New("Chat not found")))
	assert.Equal(t, classFailed, classifyError(errors.New("timeout")))
}
