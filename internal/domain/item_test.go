package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	t.Parallel()
	ownerID := uuid.New()
	today := NewDate(2026, time.March, 14)

	item, err := NewItem(ownerID, " apple ", "manzana", "Vocabulary", today)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.Equal(t, ownerID, item.OwnerID)
	assert.Equal(t, "apple", item.Front, "front should be trimmed")
	assert.Equal(t, 0, item.State.Interval)
	assert.Equal(t, 0, item.State.Repetitions)
	assert.Equal(t, DefaultEaseFactor, item.State.EaseFactor)
	assert.True(t, item.State.NextReviewDate.Equal(today))
	assert.False(t, item.State.IsArchived)
	assert.Zero(t, item.State.FlipCount)
	assert.True(t, item.State.IsDue(today))
}

func TestItemValidate(t *testing.T) {
	t.Parallel()
	today := NewDate(2026, time.March, 14)

	valid := func() *Item {
		item, err := NewItem(uuid.New(), "front", "back", "cat", today)
		require.NoError(t, err)
		return item
	}

	tests := []struct {
		name    string
		mutate  func(*Item)
		wantErr error
	}{
		{"valid", func(*Item) {}, nil},
		{"nil id", func(i *Item) { i.ID = uuid.Nil }, ErrItemIDEmpty},
		{"nil owner", func(i *Item) { i.OwnerID = uuid.Nil }, ErrItemOwnerIDEmpty},
		{"blank front", func(i *Item) { i.Front = "  " }, ErrItemFrontEmpty},
		{"blank back", func(i *Item) { i.Back = "" }, ErrItemBackEmpty},
		{"blank category", func(i *Item) { i.Category = "" }, ErrItemCategoryEmpty},
		{"negative interval", func(i *Item) { i.State.Interval = -1 }, ErrInvalidInterval},
		{"negative repetitions", func(i *Item) { i.State.Repetitions = -1 }, ErrInvalidRepetitions},
		{"ease below floor", func(i *Item) { i.State.EaseFactor = 1.2 }, ErrInvalidEaseFactor},
		{"negative flips", func(i *Item) { i.State.FlipCount = -3 }, ErrInvalidFlipCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := valid()
			tt.mutate(item)
			err := item.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestReviewStateIsDue(t *testing.T) {
	t.Parallel()
	today := NewDate(2026, time.March, 14)

	state := NewReviewState(today.AddDays(-2))
	assert.True(t, state.IsDue(today), "past date is due")

	state.NextReviewDate = today
	assert.True(t, state.IsDue(today), "today is due")

	state.NextReviewDate = today.AddDays(1)
	assert.False(t, state.IsDue(today), "tomorrow is not due")

	state.NextReviewDate = today
	state.IsArchived = true
	assert.False(t, state.IsDue(today), "archived items are never due")
}

func TestRatingValid(t *testing.T) {
	t.Parallel()
	for _, r := range Ratings {
		assert.True(t, r.Valid(), r.String())
	}
	for _, r := range []Rating{0, 4, -1, 5} {
		assert.False(t, r.Valid(), r.String())
	}
	assert.Equal(t, "easy", RatingEasy.String())
	assert.Equal(t, "rating(7)", Rating(7).String())
}
