package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gorghs/Task-Management-System/internal/domain"
	"github.com/gorghs/Task-Management-System/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	validate := validator.New()
	structValidationErr := validate.Struct(CreateTaskRequest{})

	cases := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "version conflict",
			err:  store.ErrVersionConflict,
			want: http.StatusConflict,
		},
		{
			name: "wrapped version conflict",
			err:  fmt.Errorf("%w: expected version 2, stored version 3", store.ErrVersionConflict),
			want: http.StatusConflict,
		},
		{
			name: "task not found",
			err:  store.ErrTaskNotFound,
			want: http.StatusNotFound,
		},
		{
			name: "user not found",
			err:  store.ErrUserNotFound,
			want: http.StatusNotFound,
		},
		{
			name: "invalid cursor",
			err:  fmt.Errorf("%w: missing position", store.ErrInvalidCursor),
			want: http.StatusBadRequest,
		},
		{
			name: "domain validation",
			err:  domain.NewValidationError("title", "cannot be empty", domain.ErrValidation),
			want: http.StatusBadRequest,
		},
		{
			name: "invalid task ID",
			err:  domain.NewValidationError("taskID", "must be a valid UUID", domain.ErrInvalidID),
			want: http.StatusBadRequest,
		},
		{
			name: "invalid status",
			err:  domain.ErrInvalidStatus,
			want: http.StatusBadRequest,
		},
		{
			name: "bare empty title",
			err:  domain.ErrEmptyTitle,
			want: http.StatusBadRequest,
		},
		{
			name: "invalid entity",
			err:  store.ErrInvalidEntity,
			want: http.StatusBadRequest,
		},
		{
			name: "request struct validation",
			err:  structValidationErr,
			want: http.StatusBadRequest,
		},
		{
			name: "duplicate entity",
			err:  store.ErrEmailExists,
			want: http.StatusConflict,
		},
		{
			name: "unexpected error",
			err:  errors.New("connection reset"),
			want: http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Run("internal detail never leaks", func(t *testing.T) {
		err := errors.New("pq: connection to 10.0.0.5:5432 refused")
		msg := GetSafeErrorMessage(err)
		assert.Equal(t, "An unexpected error occurred", msg)
		assert.NotContains(t, msg, "10.0.0.5")
	})

	t.Run("version conflict suggests a refresh", func(t *testing.T) {
		msg := GetSafeErrorMessage(store.ErrVersionConflict)
		assert.Contains(t, msg, "Refresh and try again")
	})

	t.Run("task not found does not reveal ownership", func(t *testing.T) {
		msg := GetSafeErrorMessage(store.ErrTaskNotFound)
		assert.Equal(t, "Task not found or unauthorized", msg)
	})

	t.Run("field validation message is surfaced", func(t *testing.T) {
		err := domain.NewValidationError("due_date", "must be set", domain.ErrValidation)
		assert.Contains(t, GetSafeErrorMessage(err), "due_date")
	})

	t.Run("nil error", func(t *testing.T) {
		assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	})
}
