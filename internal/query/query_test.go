package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filevault/botcore/internal/cachestore/cachetest"
	"github.com/filevault/botcore/internal/mediaindex"
	"github.com/filevault/botcore/internal/models"
	"github.com/filevault/botcore/internal/store/storetest"
)

func TestMaterializeAndLoadSession(t *testing.T) {
	cache := cachetest.New()
	index := mediaindex.New(storetest.New(), cache)
	e := New(index, cache)
	ctx := context.Background()

	files := []models.MediaFile{{FileUniqueID: "a", FileName: "a.mkv"}}
	sessionID, err := e.MaterializeSession(ctx, 42, "matrix", files)
	require.NoError(t, err)
	assert.Len(t, sessionID, 8)

	session, found, err := e.LoadSession(ctx, 42, sessionID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "matrix", session.Query)
	assert.Len(t, session.FileRefs, 1)

	_, found, err = e.LoadSession(ctx, 42, "deadbeef")
	require.NoError(t, err)
	assert.False(t, found)
}
