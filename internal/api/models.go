package api

import (
	"fmt"
	"time"

	"github.com/gorghs/Task-Management-System/internal/domain"
	"github.com/gorghs/Task-Management-System/internal/store"
)

// CreateTaskRequest is the payload for POST /v1/tasks.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority"    validate:"required,oneof=low medium high"`
	DueDate     string `json:"due_date"    validate:"required"`
}

// UpdateTaskRequest is the payload for PATCH /v1/tasks/{taskID}.
// Nil fields are left unchanged; the field set is restricted to the mutable
// allow-list.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"    validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"due_date"`
}

// UpdateTaskStatusRequest is the payload for PATCH /v1/tasks/{taskID}/status.
// Version is the client's expected version for the optimistic lock.
type UpdateTaskStatusRequest struct {
	Status  string `json:"status"  validate:"required,oneof=pending in_progress completed"`
	Version int64  `json:"version" validate:"required,min=1"`
}

// TaskResponse wraps a single task.
type TaskResponse struct {
	Task *domain.Task `json:"task"`
}

// TaskListResponse is the paginated listing payload.
type TaskListResponse struct {
	Tasks      []*domain.Task `json:"tasks"`
	Pagination Pagination     `json:"pagination"`
}

// Pagination carries the page size and the continuation cursor, absent on the
// final page.
type Pagination struct {
	Limit      int    `json:"limit"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// StatusUpdateResponse reports the committed status transition.
type StatusUpdateResponse struct {
	UpdatedTask *store.StatusUpdateResult `json:"updatedTask"`
}

// LeaderboardResponse is the analytics leaderboard payload.
type LeaderboardResponse struct {
	Leaderboard []store.LeaderboardEntry `json:"leaderboard"`
}

// dueDateFormats are the accepted due-date representations: full RFC 3339
// timestamps and plain dates.
var dueDateFormats = []string{time.RFC3339, "2006-01-02"}

// parseDate parses a date in one of the accepted formats.
func parseDate(field, value string) (time.Time, error) {
	for _, format := range dueDateFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.NewValidationError(
		field,
		fmt.Sprintf("must be an RFC 3339 timestamp or YYYY-MM-DD date, got %q", value),
		domain.ErrValidation,
	)
}
