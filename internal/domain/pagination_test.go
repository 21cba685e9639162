package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	t.Parallel()
	tests := []struct {
		total, perPage, want int
	}{
		{0, 8, 1},
		{1, 8, 1},
		{8, 8, 1},
		{9, 8, 2},
		{16, 8, 2},
		{17, 8, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.perPage), "total=%d", tt.total)
	}
}

func TestNormalizePageAndOffset(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1, NormalizePage(0))
	assert.Equal(t, 1, NormalizePage(-4))
	assert.Equal(t, 3, NormalizePage(3))
	assert.Equal(t, 0, PageOffset(1, ArchivedPerPage))
	assert.Equal(t, 16, PageOffset(3, ArchivedPerPage))
	assert.Equal(t, 0, PageOffset(-1, ArchivedPerPage))
	assert.Equal(t, 0, PageOffset(3, 0))
}

func TestPageOffsetSaturates(t *testing.T) {
	t.Parallel()
	for _, page := range []int{math.MaxInt/ArchivedPerPage + 2, math.MaxInt} {
		offset := PageOffset(page, ArchivedPerPage)
		assert.Positive(t, offset, "page %d", page)
		assert.Equal(t, math.MaxInt/ArchivedPerPage*ArchivedPerPage, offset)
	}
}

func TestValidateSampleCount(t *testing.T) {
	t.Parallel()
	assert.ErrorIs(t, ValidateSampleCount(0), ErrInvalidCount)
	assert.ErrorIs(t, ValidateSampleCount(101), ErrInvalidCount)
	assert.NoError(t, ValidateSampleCount(1))
	assert.NoError(t, ValidateSampleCount(100))
}
