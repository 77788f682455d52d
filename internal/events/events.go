package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorghs/Task-Management-System/internal/domain"
)

// Event types emitted by the task service.
const (
	// EventTaskCreated signals that a new task was persisted.
	EventTaskCreated = "task.created"

	// EventTaskStatusUpdated signals that a task's status transition won the
	// optimistic-concurrency race and was committed.
	EventTaskStatusUpdated = "task.status_updated"
)

// TaskEvent is a domain event published to the notification channel.
// Delivery is fire-and-forget: at most one attempt, failures are logged and
// never propagated as request failures.
type TaskEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the event type constants above
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// TaskCreatedPayload is the payload of an EventTaskCreated event.
type TaskCreatedPayload struct {
	TaskID uuid.UUID `json:"task_id"`
}

// TaskStatusUpdatedPayload is the payload of an EventTaskStatusUpdated event.
type TaskStatusUpdatedPayload struct {
	TaskID     uuid.UUID         `json:"task_id"`
	NewStatus  domain.TaskStatus `json:"new_status"`
	NewVersion int64             `json:"new_version"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *TaskEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskEvent creates a new TaskEvent with the specified type and payload.
func NewTaskEvent(eventType string, payload any) (*TaskEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &TaskEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *TaskEvent) error
}
