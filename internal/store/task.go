package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/gorghs/Task-Management-System/internal/domain"
)

// SortField identifies a task column that listings may be ordered by.
// Only fields in the fixed allow-list are ever interpolated into query text;
// everything user-supplied travels as a bind parameter.
type SortField string

// Sortable task fields.
const (
	SortByDueDate   SortField = "due_date"
	SortByCreatedAt SortField = "created_at"
	SortByPriority  SortField = "priority"
)

// IsValid checks whether the sort field is in the allow-list.
func (f SortField) IsValid() bool {
	switch f {
	case SortByDueDate, SortByCreatedAt, SortByPriority:
		return true
	}
	return false
}

// SortOrder is the direction of a listing sort.
type SortOrder string

// Valid sort orders.
const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// IsValid checks whether the sort order is ASC or DESC.
func (o SortOrder) IsValid() bool {
	return o == SortAsc || o == SortDesc
}

// Listing limits.
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// ListFilters describes a task listing request: predicate filters, sort
// specification, page size, and the continuation cursor from a previous page.
type ListFilters struct {
	// Status restricts results to an exact status match when non-nil.
	Status *domain.TaskStatus

	// Priority restricts results to an exact priority match when non-nil.
	Priority *domain.TaskPriority

	// AsOf is an inclusive upper bound on created_at, giving a snapshot view
	// of the task list as it existed at that time. It composes with all
	// other filters.
	AsOf *time.Time

	// SortField orders results; defaults to due_date.
	SortField SortField

	// SortOrder defaults to ASC.
	SortOrder SortOrder

	// Limit is the page size; defaults to DefaultListLimit, capped at MaxListLimit.
	Limit int

	// After is the opaque continuation cursor from a previous page, empty for
	// the first page.
	After string
}

// Normalize fills in defaults and clamps the limit. It returns a copy so the
// caller's filters are untouched.
func (f ListFilters) Normalize() ListFilters {
	if f.SortField == "" {
		f.SortField = SortByDueDate
	}
	if f.SortOrder == "" {
		f.SortOrder = SortAsc
	}
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	return f
}

// Validate checks the sort specification against the allow-lists.
func (f ListFilters) Validate() error {
	if !f.SortField.IsValid() {
		return domain.NewValidationError("sortField", "must be one of due_date, created_at, priority", domain.ErrValidation)
	}
	if !f.SortOrder.IsValid() {
		return domain.NewValidationError("sortOrder", "must be ASC or DESC", domain.ErrValidation)
	}
	if f.Status != nil && !f.Status.IsValid() {
		return domain.NewValidationError("status", "unrecognized status", domain.ErrInvalidStatus)
	}
	if f.Priority != nil && !f.Priority.IsValid() {
		return domain.NewValidationError("priority", "unrecognized priority", domain.ErrInvalidPriority)
	}
	return nil
}

// TaskPage is one page of a task listing. NextCursor is empty on the final page.
type TaskPage struct {
	Tasks      []*domain.Task `json:"tasks"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// TaskFieldUpdate carries the mutable task fields for a partial update.
// Nil fields are left unchanged. Status and Version are deliberately absent:
// status transitions go through the optimistic-concurrency protocol only.
type TaskFieldUpdate struct {
	Title       *string
	Description *string
	Priority    *domain.TaskPriority
	DueDate     *time.Time
}

// IsEmpty reports whether the update would change nothing.
func (u TaskFieldUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Priority == nil && u.DueDate == nil
}

// Validate checks the populated fields.
func (u TaskFieldUpdate) Validate() error {
	if u.Title != nil && *u.Title == "" {
		return domain.NewValidationError("title", "cannot be empty", domain.ErrEmptyTitle)
	}
	if u.Priority != nil && !u.Priority.IsValid() {
		return domain.NewValidationError("priority", "unrecognized priority", domain.ErrInvalidPriority)
	}
	if u.DueDate != nil && u.DueDate.IsZero() {
		return domain.NewValidationError("due_date", "must be set", domain.ErrZeroDueDate)
	}
	return nil
}

// StatusUpdateResult reports the outcome of a successful compare-and-swap
// status update.
type StatusUpdateResult struct {
	ID      uuid.UUID         `json:"task_id"`
	Status  domain.TaskStatus `json:"status"`
	Version int64             `json:"version"`
}

// TaskStore defines the interface for task data persistence.
// Every method is scoped to the owning user: a task that exists but belongs
// to another user behaves identically to a nonexistent task.
type TaskStore interface {
	// Create saves a new task with the initial version.
	// The task must be valid according to domain validation rules.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its ID, scoped to userID.
	// Returns ErrTaskNotFound if the task is absent or owned by another user.
	GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error)

	// List returns one ordered page of the user's tasks plus an opaque
	// continuation cursor. Ordering is always by (sort field, task ID) so
	// pagination stays stable when sort values tie.
	// Returns ErrInvalidCursor if filters.After is malformed or was produced
	// under a different filter/sort combination.
	List(ctx context.Context, userID uuid.UUID, filters ListFilters) (*TaskPage, error)

	// UpdateFields applies a partial update to the allow-listed mutable fields
	// and refreshes updated_at. Field edits are last-write-wins; the version
	// column is untouched. Returns the updated task.
	// Returns ErrTaskNotFound if the task is absent or owned by another user.
	UpdateFields(ctx context.Context, id, userID uuid.UUID, fields TaskFieldUpdate) (*domain.Task, error)

	// Delete permanently removes the task.
	// Returns ErrTaskNotFound if the task is absent or owned by another user.
	Delete(ctx context.Context, id, userID uuid.UUID) error

	// UpdateStatus performs the compare-and-swap status transition: the write
	// succeeds only if expectedVersion matches the stored version, and the
	// version advances by exactly one atomically with the data change.
	//
	// IMPORTANT: this method MUST run within a transaction so the
	// zero-rows disambiguation read observes the same snapshot as the failed
	// conditional update. Use WithTx together with store.RunInTransaction:
	//
	//	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//	    res, err = taskStore.WithTx(tx).UpdateStatus(ctx, id, userID, status, version)
	//	    return err
	//	})
	//
	// Returns ErrTaskNotFound if the task is absent or owned by another user,
	// ErrVersionConflict if another writer won the race.
	UpdateStatus(
		ctx context.Context,
		id, userID uuid.UUID,
		status domain.TaskStatus,
		expectedVersion int64,
	) (*StatusUpdateResult, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// This allows multiple operations to be executed within a single transaction.
	// The transaction is created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) TaskStore

	// DB returns the underlying database handle for transaction management.
	DB() *sql.DB
}
