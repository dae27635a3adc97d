package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildAndParseCallback(t *testing.T) {
	data := BuildCallback("search", "next", "matrix", 20, 100, 555)
	cb, ok := ParseCallback(data)
	assert.True(t, ok)
	assert.Equal(t, "search", cb.Prefix)
	assert.Equal(t, "next", cb.Action)
	assert.Equal(t, "matrix", cb.Query)
	assert.Equal(t, 20, cb.Offset)
	assert.Equal(t, 100, cb.Total)
	assert.Equal(t, int64(555), cb.UserID)
	assert.True(t, cb.HasUserID)
}

func TestParseCallbackLegacyFiveField(t *testing.T) {
	cb, ok := ParseCallback("search#next#matrix#20#100")
	assert.True(t, ok)
	assert.False(t, cb.HasUserID)
	assert.Equal(t, 20, cb.Offset)
}

func TestNextOffset(t *testing.T) {
	assert.Equal(t, 0, NextOffset("first", 40, 10, 100))
	assert.Equal(t, 30, NextOffset("prev", 40, 10, 100))
	assert.Equal(t, 50, NextOffset("next", 40, 10, 100))
	assert.Equal(t, 90, NextOffset("last", 40, 10, 100))
}

func TestPageNumbersSmallFitsAll(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, PageNumbers(1, 3))
}

func TestPageNumbersLargeMiddle(t *testing.T) {
	pages := PageNumbers(10, 20)
	assert.LessOrEqual(t, len(pages), maxVisiblePages)
	assert.Contains(t, pages, 10)
	assert.Contains(t, pages, 20)
}

func TestBuildPageRowSinglePageIsNil(t *testing.T) {
	assert.Nil(t, BuildPageRow(5, 10, 0))
}
