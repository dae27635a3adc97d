package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filevault/botcore/internal/cachestore/cachetest"
	"github.com/filevault/botcore/internal/store/storetest"
)

func newTestEngine() *Engine {
	return New(storetest.NewDatabase(), cachetest.New())
}

func TestAddAndFindRoundTrip(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	require.NoError(t, e.Add(ctx, "100", "hello", "hi there", "", "", ""))

	f, err := e.Find(ctx, "100", "hello")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "hi there", f.Reply)
	assert.Equal(t, "100", f.GroupID)
}

func TestFindMissingReturnsNil(t *testing.T) {
	e := newTestEngine()
	f, err := e.Find(context.Background(), "100", "nope")
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestGroupsAreIsolated(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()
	require.NoError(t, e.Add(ctx, "100", "hello", "a", "", "", ""))
	require.NoError(t, e.Add(ctx, "200", "hello", "b", "", "", ""))

	f, err := e.Find(ctx, "100", "hello")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "a", f.Reply)

	f, err = e.Find(ctx, "200", "hello")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "b", f.Reply)
}

func TestAddOverwritesExistingText(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()
	require.NoError(t, e.Add(ctx, "100", "hello", "a", "", "", ""))
	require.NoError(t, e.Add(ctx, "100", "hello", "b", "", "", ""))

	f, err := e.Find(ctx, "100", "hello")
	require.NoError(t, err)
	assert.Equal(t, "b", f.Reply)

	n, err := e.Count(ctx, "100")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestListReturnsEveryText(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()
	require.NoError(t, e.Add(ctx, "100", "hello", "a", "", "", ""))
	require.NoError(t, e.Add(ctx, "100", "bye", "b", "", "", ""))

	texts, err := e.List(ctx, "100")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"hello", "bye"}, texts)
}

func TestDeleteRemovesFilter(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()
	require.NoError(t, e.Add(ctx, "100", "hello", "a", "", "", ""))

	ok, err := e.Delete(ctx, "100", "hello")
	require.NoError(t, err)
	assert.True(t, ok)

	f, err := e.Find(ctx, "100", "hello")
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestDeleteMissingReturnsFalse(t *testing.T) {
	e := newTestEngine()
	ok, err := e.Delete(context.Background(), "100", "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteAllClearsGroup(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()
	require.NoError(t, e.Add(ctx, "100", "hello", "a", "", "", ""))
	require.NoError(t, e.Add(ctx, "100", "bye", "b", "", "", ""))

	require.NoError(t, e.DeleteAll(ctx, "100"))

	n, err := e.Count(ctx, "100")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestCountFilters(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()
	require.NoError(t, e.Add(ctx, "100", "hello", "a", "", "", ""))
	require.NoError(t, e.Add(ctx, "100", "bye", "b", "", "", ""))

	n, err := e.Count(ctx, "100")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
