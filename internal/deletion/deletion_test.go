package deletion

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filevault/botcore/internal/cachestore/cachetest"
	"github.com/filevault/botcore/internal/mediaindex"
	"github.com/filevault/botcore/internal/models"
	"github.com/filevault/botcore/internal/platform"
	"github.com/filevault/botcore/internal/store/storetest"
)

func newTestIndex(t *testing.T) *mediaindex.Index {
	t.Helper()
	return mediaindex.New(storetest.New(), cachetest.New())
}

func TestQueuePushDropsWhenFull(t *testing.T) {
	q := NewQueue(zerolog.Nop())
	for i := 0; i < queueCapacity; i++ {
		q.Push(Item{FileUniqueID: "u", FileName: "f"})
	}
	assert.Equal(t, queueCapacity, q.Depth())
	q.Push(Item{FileUniqueID: "overflow", FileName: "dropped"})
	assert.Equal(t, queueCapacity, q.Depth())
}

func TestWorkerProcessesBatchAndReportsSummary(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)
	_, _, err := index.SaveMedia(ctx, models.MediaFile{FileUniqueID: "u1", FileID: "f1"})
	require.NoError(t, err)

	q := NewQueue(zerolog.Nop())
	var summaries []BatchResult
	w := NewWorker(q, index, func(r BatchResult) { summaries = append(summaries, r) }, zerolog.Nop())

	q.Push(Item{FileUniqueID: "u1", FileName: "a"})
	q.Push(Item{FileUniqueID: "missing", FileName: "b"})

	runCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_ = w.Serve(runCtx)

	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].Deleted)
	assert.Equal(t, 1, summaries[0].NotFound)

	f, err := index.FindFile(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestBulkDeleterConfirmDeletesMatchingFiles(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)
	_, _, err := index.SaveMedia(ctx, models.MediaFile{FileUniqueID: "u1", FileID: "f1", FileName: "movie.mkv"})
	require.NoError(t, err)
	_, _, err = index.SaveMedia(ctx, models.MediaFile{FileUniqueID: "u2", FileID: "f2", FileName: "other.mkv"})
	require.NoError(t, err)

	bd := NewBulkDeleter(index, cachetest.New())
	bd.RequestConfirmation(ctx, 42, "movie")

	n, err := bd.Confirm(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = bd.Confirm(ctx, 42)
	assert.Error(t, err)
}

func TestBulkDeleterConfirmRequiresPriorRequest(t *testing.T) {
	index := newTestIndex(t)
	bd := NewBulkDeleter(index, cachetest.New())

	_, err := bd.Confirm(context.Background(), 1)
	assert.Error(t, err)
}

func TestBulkDeleterCancelDiscardsPending(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)
	bd := NewBulkDeleter(index, cachetest.New())
	bd.RequestConfirmation(ctx, 7, "x")
	bd.Cancel(ctx, 7)

	_, err := bd.Confirm(ctx, 7)
	assert.Error(t, err)
}

func TestItemFromMessageRequiresDocument(t *testing.T) {
	_, ok := ItemFromMessage(platform.Message{}, time.Now())
	assert.False(t, ok)

	item, ok := ItemFromMessage(platform.Message{Document: &platform.Document{FileUniqueID: "u1", FileName: "a.mp4"}}, time.Now())
	require.True(t, ok)
	assert.Equal(t, "u1", item.FileUniqueID)
}
