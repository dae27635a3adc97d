package mediaindex

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

func newTestIndex() *Index {
	ix := New(storetest.New(), cachetest.New())
	ix.clock = func() time.Time { return time.Date(2026, 7, 29, 12, 0, 0, 0, time.UTC) }
	return ix
}

func TestSaveMediaSavesThenDetectsDuplicate(t *testing.T) {
	ix := newTestIndex()
	ctx := context.Background()

	media := models.MediaFile{
		FileUniqueID: "uniq-1",
		FileID:       "file-1",
		FileName:     "Some.Movie.2024.mkv",
		FileSize:     1024,
		FileType:     models.FileTypeVideo,
	}

	status, existing, err := ix.SaveMedia(ctx, media)
	require.NoError(t, err)
	assert.Equal(t, models.SaveStatusSaved, status)
	assert.Nil(t, existing)

	status, existing, err = ix.SaveMedia(ctx, media)
	require.NoError(t, err)
	assert.Equal(t, models.SaveStatusDuplicate, status)
	require.NotNil(t, existing)
	assert.Equal(t, "uniq-1", existing.FileUniqueID)
}

func TestSearchFilesSingleToken(t *testing.T) {
	ix := newTestIndex()
	ctx := context.Background()

	files := []models.MediaFile{
		{FileUniqueID: "a", FileID: "fa", FileName: "The.Matrix.1999.mkv", FileType: models.FileTypeVideo},
		{FileUniqueID: "b", FileID: "fb", FileName: "Inception.2010.mkv", FileType: models.FileTypeVideo},
	}
	for _, f := range files {
		_, _, err := ix.SaveMedia(ctx, f)
		require.NoError(t, err)
	}

	result, err := ix.SearchFiles(ctx, "matrix", "", 0, 10, true)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "a", result.Files[0].FileUniqueID)
	assert.Equal(t, int64(1), result.Total)
	assert.Equal(t, 0, result.NextOffset)
}

func TestSearchFilesEmptyQueryMatchesAll(t *testing.T) {
	ix := newTestIndex()
	ctx := context.Background()

	for i, name := range []string{"a.mkv", "b.mkv", "c.mkv"} {
		_, _, err := ix.SaveMedia(ctx, models.MediaFile{
			FileUniqueID: name,
			FileID:       name + string(rune('0'+i)),
			FileName:     name,
			FileType:     models.FileTypeVideo,
		})
		require.NoError(t, err)
	}

	result, err := ix.SearchFiles(ctx, "", "", 0, 2, true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Total)
	assert.Len(t, result.Files, 2)
	assert.Equal(t, 2, result.NextOffset)
}

func TestBatchCheckDuplicates(t *testing.T) {
	ix := newTestIndex()
	ctx := context.Background()

	_, _, err := ix.SaveMedia(ctx, models.MediaFile{FileUniqueID: "x", FileID: "fx", FileName: "x.mkv", FileType: models.FileTypeVideo})
	require.NoError(t, err)

	dup, err := ix.BatchCheckDuplicates(ctx, []string{"x", "y"})
	require.NoError(t, err)
	assert.True(t, dup["x"])
	assert.False(t, dup["y"])
}

func TestBulkSaveMediaSkipsDuplicatesWithinBatch(t *testing.T) {
	ix := newTestIndex()
	ctx := context.Background()

	result, err := ix.BulkSaveMedia(ctx, []models.MediaFile{
		{FileUniqueID: "dup", FileID: "f1", FileName: "one.mkv", FileType: models.FileTypeVideo},
		{FileUniqueID: "dup", FileID: "f2", FileName: "one-again.mkv", FileType: models.FileTypeVideo},
		{FileUniqueID: "new", FileID: "f3", FileName: "two.mkv", FileType: models.FileTypeVideo},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Saved)
	assert.Equal(t, 1, result.Duplicate)
	assert.Equal(t, 0, result.Errored)
}

func TestBatchCheckDuplicatesServesKnownIDsFromLocalCacheWithoutQuery(t *testing.T) {
	coll := storetest.New()
	ix := New(coll, cachetest.New())
	ix.clock = func() time.Time { return time.Date(2026, 7, 29, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	_, _, err := ix.SaveMedia(ctx, models.MediaFile{FileUniqueID: "x", FileID: "fx", FileName: "x.mkv", FileType: models.FileTypeVideo})
	require.NoError(t, err)

	// Remove the row directly from the backing collection, bypassing the
	// index. If BatchCheckDuplicates still reports "x" as a duplicate, the
	// answer came from the in-process recent-duplicates cache, not a fresh
	// database query.
	_, err = coll.DeleteOne(ctx, map[string]any{"file_unique_id": "x"})
	require.NoError(t, err)

	dup, err := ix.BatchCheckDuplicates(ctx, []string{"x"})
	require.NoError(t, err)
	assert.True(t, dup["x"], "expected local recent-duplicates cache to still report x as a duplicate")
}

func TestDeleteFileInvalidatesRecentDuplicatesCache(t *testing.T) {
	ix := newTestIndex()
	ctx := context.Background()

	media := models.MediaFile{FileUniqueID: "y", FileID: "fy", FileName: "y.mkv", FileType: models.FileTypeVideo}
	status, _, err := ix.SaveMedia(ctx, media)
	require.NoError(t, err)
	require.Equal(t, models.SaveStatusSaved, status)

	ok, err := ix.DeleteFile(ctx, "y")
	require.NoError(t, err)
	require.True(t, ok)

	// Re-saving the same id after deletion must succeed, proving the
	// recent-duplicates cache was invalidated rather than wrongly
	// remembering "y" as still present.
	status, _, err = ix.SaveMedia(ctx, media)
	require.NoError(t, err)
	assert.Equal(t, models.SaveStatusSaved, status)
}

func TestGetFileStats(t *testing.T) {
	ix := newTestIndex()
	ctx := context.Background()

	_, _, err := ix.SaveMedia(ctx, models.MediaFile{FileUniqueID: "v1", FileID: "fv1", FileName: "v1.mkv", FileType: models.FileTypeVideo, FileSize: 100})
	require.NoError(t, err)
	_, _, err = ix.SaveMedia(ctx, models.MediaFile{FileUniqueID: "a1", FileID: "fa1", FileName: "a1.mp3", FileType: models.FileTypeAudio, FileSize: 50})
	require.NoError(t, err)

	stats, err := ix.GetFileStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalFiles)
	assert.Equal(t, int64(150), stats.TotalSize)
	assert.Equal(t, int64(100), stats.ByType[models.FileTypeVideo].Size)
	assert.Equal(t, int64(50), stats.ByType[models.FileTypeAudio].Size)
}

func TestDeleteFilesByKeyword(t *testing.T) {
	ix := newTestIndex()
	ctx := context.Background()

	_, _, err := ix.SaveMedia(ctx, models.MediaFile{FileUniqueID: "k1", FileID: "fk1", FileName: "keyword.movie.mkv", FileType: models.FileTypeVideo})
	require.NoError(t, err)
	_, _, err = ix.SaveMedia(ctx, models.MediaFile{FileUniqueID: "k2", FileID: "fk2", FileName: "other.mkv", FileType: models.FileTypeVideo})
	require.NoError(t, err)

	n, err := ix.DeleteFilesByKeyword(ctx, "keyword")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f, err := ix.FindFile(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestBuildPattern(t *testing.T) {
	assert.Equal(t, ".", buildPattern(""))
	assert.Equal(t, `(\b|[._+-])matrix(\b|[._+-])`, buildPattern("matrix"))
	assert.Equal(t, `the.*[\s._+-]matrix`, buildPattern("the matrix"))
}

func TestNormalizeQueryReplacesSeparatorsAndCollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "avatar 2009", normalizeQuery("avatar_2009"))
	assert.Equal(t, "avatar 2009", normalizeQuery("avatar.2009"))
	assert.Equal(t, "matrix reloaded", normalizeQuery("matrix-reloaded"))
	assert.Equal(t, "a b c", normalizeQuery("  a_-.+b   c  "))
	assert.Equal(t, "plain query", normalizeQuery("  Plain Query  "))
}

func TestNormalizeQueryFeedsMultiTokenPattern(t *testing.T) {
	assert.Equal(t, `avatar.*[\s._+-]2009`, buildPattern(normalizeQuery("avatar_2009")))
	assert.Equal(t, `avatar.*[\s._+-]2009`, buildPattern(normalizeQuery("avatar.2009")))
	assert.Equal(t, `matrix.*[\s._+-]reloaded`, buildPattern(normalizeQuery("matrix-reloaded")))
}
