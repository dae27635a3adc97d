package recommend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/filevault/botcore/internal/cachestore/cachetest"
)

func TestRecordThenRecentQueries(t *testing.T) {
	r := New(cachetest.New())
	ctx := context.Background()

	r.Record(ctx, 1, "  Foo Bar  ")
	r.Record(ctx, 1, "baz")

	got := r.RecentQueries(ctx, 1)
	assert.Equal(t, []string{"baz", "foo bar"}, got)
}

func TestRecordIgnoresTooShortOrLongQueries(t *testing.T) {
	r := New(cachetest.New())
	ctx := context.Background()

	r.Record(ctx, 1, "a")
	assert.Empty(t, r.RecentQueries(ctx, 1))

	long := make([]byte, 65)
	for i := range long {
		long[i] = 'x'
	}
	r.Record(ctx, 1, string(long))
	assert.Empty(t, r.RecentQueries(ctx, 1))
}

func TestRecordMovesRepeatedQueryToFront(t *testing.T) {
	r := New(cachetest.New())
	ctx := context.Background()

	r.Record(ctx, 1, "foo")
	r.Record(ctx, 1, "bar")
	r.Record(ctx, 1, "foo")

	assert.Equal(t, []string{"foo", "bar"}, r.RecentQueries(ctx, 1))
}

func TestRecordEvictsOldestBeyondMax(t *testing.T) {
	r := New(cachetest.New())
	ctx := context.Background()

	for i := 0; i < MaxKeywords+3; i++ {
		r.Record(ctx, 1, string(rune('a'+i))+string(rune('a'+i)))
	}

	got := r.RecentQueries(ctx, 1)
	assert.Len(t, got, MaxKeywords)
}

func TestClearRemovesHistory(t *testing.T) {
	r := New(cachetest.New())
	ctx := context.Background()
	r.Record(ctx, 1, "foo")
	r.Clear(ctx, 1)
	assert.Empty(t, r.RecentQueries(ctx, 1))
}

func TestHistoryIsolatedPerPrincipal(t *testing.T) {
	r := New(cachetest.New())
	ctx := context.Background()
	r.Record(ctx, 1, "foo")
	r.Record(ctx, 2, "bar")

	assert.Equal(t, []string{"foo"}, r.RecentQueries(ctx, 1))
	assert.Equal(t, []string{"bar"}, r.RecentQueries(ctx, 2))
}

func TestTrendingQueriesRanksBySitewideVolume(t *testing.T) {
	r := New(cachetest.New())
	ctx := context.Background()

	for _, p := range []int64{1, 2, 3} {
		r.Record(ctx, p, "matrix")
	}
	for _, p := range []int64{4, 5} {
		r.Record(ctx, p, "inception")
	}
	r.Record(ctx, 1, "solo")

	got := r.TrendingQueries(2)
	assert.Equal(t, []string{"matrix", "inception"}, got)
}

func TestTrendingQueriesExcludesSingleSearcherQueries(t *testing.T) {
	r := New(cachetest.New())
	ctx := context.Background()

	r.Record(ctx, 1, "matrix")
	r.Record(ctx, 1, "matrix")
	r.Record(ctx, 1, "matrix")

	assert.Empty(t, r.TrendingQueries(10))
}

func TestTrendingQueriesRespectsLimit(t *testing.T) {
	r := New(cachetest.New())
	ctx := context.Background()

	for _, q := range []string{"a", "b", "c"} {
		r.Record(ctx, 1, q)
		r.Record(ctx, 2, q)
	}

	got := r.TrendingQueries(1)
	assert.Len(t, got, 1)
}
