package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindHelpers(t *testing.T) {
	t.Run("IsNotFoundError", func(t *testing.T) {
		assert.True(t, IsNotFoundError(ErrNotFound))
		assert.True(t, IsNotFoundError(ErrTaskNotFound))
		assert.True(t, IsNotFoundError(ErrUserNotFound))
		assert.True(t, IsNotFoundError(fmt.Errorf("lookup: %w", ErrTaskNotFound)))
		assert.False(t, IsNotFoundError(ErrVersionConflict))
		assert.False(t, IsNotFoundError(nil))
	})

	t.Run("IsVersionConflictError", func(t *testing.T) {
		assert.True(t, IsVersionConflictError(ErrVersionConflict))
		assert.True(t, IsVersionConflictError(
			fmt.Errorf("%w: expected version 3, stored version 4", ErrVersionConflict),
		))
		assert.False(t, IsVersionConflictError(ErrTaskNotFound))
		assert.False(t, IsVersionConflictError(nil))
	})

	t.Run("IsInvalidCursorError", func(t *testing.T) {
		assert.True(t, IsInvalidCursorError(ErrInvalidCursor))
		assert.True(t, IsInvalidCursorError(fmt.Errorf("%w: missing position", ErrInvalidCursor)))
		assert.False(t, IsInvalidCursorError(ErrNotFound))
	})

	t.Run("kinds are disjoint", func(t *testing.T) {
		// Conflict and not-found must never be confused: the API maps them to
		// different status codes.
		assert.False(t, errors.Is(ErrVersionConflict, ErrNotFound))
		assert.False(t, errors.Is(ErrTaskNotFound, ErrVersionConflict))
		assert.False(t, errors.Is(ErrInvalidCursor, ErrNotFound))
	})
}

func TestStoreError(t *testing.T) {
	t.Run("wraps the underlying error", func(t *testing.T) {
		err := NewStoreError("task", "update", "write failed", ErrVersionConflict)
		assert.ErrorIs(t, err, ErrVersionConflict)
		assert.Contains(t, err.Error(), "update operation on task failed")
		assert.Contains(t, err.Error(), "write failed")
	})

	t.Run("works without an underlying error", func(t *testing.T) {
		err := NewStoreError("task", "create", "bad input", nil)
		assert.Equal(t, "create operation on task failed: bad input", err.Error())
		assert.Nil(t, errors.Unwrap(err))
	})
}
