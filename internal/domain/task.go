package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common task validation errors.
var (
	ErrEmptyTaskID    = errors.New("task ID cannot be empty")
	ErrEmptyTaskOwner = errors.New("task owner ID cannot be empty")
	ErrEmptyTitle     = errors.New("task title cannot be empty")
	ErrZeroDueDate    = errors.New("task due date must be set")
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Valid task statuses. Status transitions go through the version-guarded
// update protocol; all other fields are last-write-wins.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// IsValid checks whether the status is one of the recognized values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// TaskPriority is an ordered urgency category.
type TaskPriority string

// Valid task priorities.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// IsValid checks whether the priority is one of the recognized values.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// InitialTaskVersion is the version assigned to a task at creation.
// The version advances by exactly one on every successful status update.
const InitialTaskVersion int64 = 1

// Task represents a unit of work owned by exactly one user.
// ID and UserID are immutable after creation. Version is the optimistic-lock
// counter for status updates and must only change through the store's
// compare-and-swap protocol.
type Task struct {
	ID          uuid.UUID    `json:"task_id"`
	UserID      uuid.UUID    `json:"assigned_user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     time.Time    `json:"due_date"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Version     int64        `json:"version"`
}

// NewTask creates a pending task owned by userID with the initial version.
// It generates a new UUID for the task ID and sets creation/update timestamps.
// Returns an error if validation fails.
func NewTask(
	userID uuid.UUID,
	title, description string,
	priority TaskPriority,
	dueDate time.Time,
) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      TaskStatusPending,
		Priority:    priority,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     InitialTaskVersion,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.UserID == uuid.Nil {
		return ErrEmptyTaskOwner
	}

	if t.Title == "" {
		return ErrEmptyTitle
	}

	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}

	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}

	if t.DueDate.IsZero() {
		return ErrZeroDueDate
	}

	return nil
}
