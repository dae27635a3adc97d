package delivery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filevault/botcore/internal/access"
	"github.com/filevault/botcore/internal/cachestore/cachetest"
	"github.com/filevault/botcore/internal/mediaindex"
	"github.com/filevault/botcore/internal/models"
	"github.com/filevault/botcore/internal/platform/platformtest"
	"github.com/filevault/botcore/internal/ratelimit"
	"github.com/filevault/botcore/internal/store/storetest"
)

func newTestEngine() (*Engine, *mediaindex.Index, *platformtest.Fake) {
	cache := cachetest.New()
	index := mediaindex.New(storetest.New(), cache)
	acc := access.New(storetest.New(), cache)
	fake := platformtest.New()
	breakers := ratelimit.NewBreakers(nil)
	sems := ratelimit.NewSemaphores(ratelimit.DefaultSemaphoreCapacities)

	e := New(Config{
		Client:            fake,
		Index:             index,
		Access:            acc,
		Breakers:          breakers,
		Semaphores:        sems,
		Caption:           CaptionConfig{},
		AutoDeleteMinutes: 0,
	})
	return e, index, fake
}

func TestSendFileDeliversAndRecordsSend(t *testing.T) {
	e, index, fake := newTestEngine()
	ctx := context.Background()

	_, _, err := index.SaveMedia(ctx, models.MediaFile{
		FileUniqueID: "u1", FileID: "f1", FileName: "a.mkv", FileType: models.FileTypeVideo,
	})
	require.NoError(t, err)

	policy := access.Policy{DailyLimit: 10}
	msg, err := e.SendFile(ctx, 100, nil, policy, "u1", false)
	require.NoError(t, err)
	assert.Equal(t, int64(100), msg.ChatID)
	assert.Len(t, fake.Sent, 1)
}

func TestSendFileNotFound(t *testing.T) {
	e, _, _ := newTestEngine()
	policy := access.Policy{DailyLimit: 10}
	_, err := e.SendFile(context.Background(), 100, nil, policy, "missing", false)
	assert.Error(t, err)
}

func TestSendAllReservesAndReleasesUnusedQuota(t *testing.T) {
	e, index, fake := newTestEngine()
	ctx := context.Background()

	files := []models.MediaFile{
		{FileUniqueID: "a", FileID: "fa", FileName: "a.mkv", FileType: models.FileTypeVideo},
		{FileUniqueID: "b", FileID: "fb", FileName: "b.mkv", FileType: models.FileTypeVideo},
	}
	for _, f := range files {
		_, _, err := index.SaveMedia(ctx, f)
		require.NoError(t, err)
	}

	result, err := e.SendAll(ctx, 200, 5, files, false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 2, result.Total)
	assert.Len(t, fake.Sent, 2)
}

func TestFormatCaptionAutoDeleteOnly(t *testing.T) {
	caption := FormatCaption(CaptionConfig{}, models.MediaFile{FileName: "x.mkv"}, false, 5)
	assert.Contains(t, caption, "5 minutes")
}
