package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		err          error
		notFound     bool
		isDuplicated bool
	}{
		{"nil", nil, false, false},
		{"plain", errors.New("boom"), false, false},
		{"not found", ErrNotFound, true, false},
		{"item not found", ErrItemNotFound, true, false},
		{"wrapped item not found", fmt.Errorf("get: %w", ErrItemNotFound), true, false},
		{"item exists", ErrItemExists, false, true},
		{"transaction failed", fmt.Errorf("rate: %w", ErrTransactionFailed), false, false},
		{"store error wrapping not found", NewStoreError("item", "get", "missing", ErrItemNotFound), true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.isDuplicated, IsDuplicateError(tt.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	t.Parallel()
	cause := errors.New("connection reset")
	err := NewStoreError("item", "update", "failed to update review state", cause)

	assert.Equal(t,
		"update operation on item failed: failed to update review state: connection reset",
		err.Error())
	assert.ErrorIs(t, err, cause)

	var storeErr *StoreError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &storeErr))
	assert.Equal(t, "item", storeErr.Entity)

	bare := NewStoreError("item", "delete", "no rows", nil)
	assert.Equal(t, "delete operation on item failed: no rows", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
