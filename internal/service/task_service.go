package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorghs/Task-Management-System/internal/domain"
	"github.com/gorghs/Task-Management-System/internal/events"
	"github.com/gorghs/Task-Management-System/internal/platform/logger"
	"github.com/gorghs/Task-Management-System/internal/store"
)

// Caching policy for task listings.
const (
	// listCacheTTL bounds the staleness of a cached listing page. Entries are
	// additionally invalidated on every write by the owning user.
	listCacheTTL = 5 * time.Minute

	// eventEmitTimeout bounds the single fire-and-forget delivery attempt.
	eventEmitTimeout = 5 * time.Second
)

// TaskServiceError is a custom error type for task service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// TaskService provides ownership-scoped task operations.
// Every method trusts the caller-supplied userID: identity was established by
// the excluded authentication boundary and is never re-validated here.
type TaskService interface {
	// Create validates the required fields and persists a new pending task
	// with the initial version. Emits a best-effort TaskCreated event.
	Create(
		ctx context.Context,
		userID uuid.UUID,
		title, description string,
		priority domain.TaskPriority,
		dueDate time.Time,
	) (*domain.Task, error)

	// GetByID retrieves a task scoped to its owner.
	// Returns store.ErrTaskNotFound if absent or unowned.
	GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error)

	// List returns one page of the user's tasks, served from the listing
	// cache when warm. Results are identical cold or warm.
	List(ctx context.Context, userID uuid.UUID, filters store.ListFilters) (*store.TaskPage, error)

	// UpdateFields applies a last-write-wins partial update to the mutable
	// field allow-list and invalidates the owner's cached listings.
	UpdateFields(ctx context.Context, id, userID uuid.UUID, fields store.TaskFieldUpdate) (*domain.Task, error)

	// Delete permanently removes an owned task and invalidates the owner's
	// cached listings.
	Delete(ctx context.Context, id, userID uuid.UUID) error

	// UpdateStatus runs the optimistic-concurrency status transition in a
	// single transaction. Returns store.ErrVersionConflict when the expected
	// version lost the race, store.ErrTaskNotFound when absent or unowned.
	// Emits a best-effort TaskStatusUpdated event on success.
	UpdateStatus(
		ctx context.Context,
		id, userID uuid.UUID,
		status domain.TaskStatus,
		expectedVersion int64,
	) (*store.StatusUpdateResult, error)
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	taskStore store.TaskStore
	cache     Cache
	emitter   events.EventEmitter
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
// The cache and emitter are required wiring but never hard dependencies at
// request time: their failures degrade, they don't fail requests.
func NewTaskService(
	taskStore store.TaskStore,
	cache Cache,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (TaskService, error) {
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil", domain.ErrValidation)
	}
	if cache == nil {
		return nil, domain.NewValidationError("cache", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		return nil, domain.NewValidationError("emitter", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskStore: taskStore,
		cache:     cache,
		emitter:   emitter,
		logger:    logger.With(slog.String("component", "task_service")),
	}, nil
}

// Create implements TaskService.Create
func (s *taskServiceImpl) Create(
	ctx context.Context,
	userID uuid.UUID,
	title, description string,
	priority domain.TaskPriority,
	dueDate time.Time,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Validation happens before any I/O.
	task, err := domain.NewTask(userID, title, description, priority, dueDate)
	if err != nil {
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	// A freshly created task cannot be in any cached page that includes it,
	// but cached listings for this user now undercount; drop them.
	s.invalidateListings(ctx, userID)

	s.emit(ctx, events.EventTaskCreated, events.TaskCreatedPayload{TaskID: task.ID})

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", userID.String()))
	return task, nil
}

// GetByID implements TaskService.GetByID
func (s *taskServiceImpl) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error) {
	return s.taskStore.GetByID(ctx, id, userID)
}

// List implements TaskService.List
// Listing pages are cached per (user, normalized filter set, page). Cache
// errors are logged and treated as a miss so the cache is never a hard
// dependency for correctness, only for latency.
func (s *taskServiceImpl) List(
	ctx context.Context,
	userID uuid.UUID,
	filters store.ListFilters,
) (*store.TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	filters = filters.Normalize()
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	key := listCacheKey(userID, filters)

	var cached store.TaskPage
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Warn("listing cache read failed, serving from store",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
	} else if hit {
		log.Debug("listing served from cache",
			slog.String("user_id", userID.String()),
			slog.String("cache_key", key))
		return &cached, nil
	}

	page, err := s.taskStore.List(ctx, userID, filters)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, page, listCacheTTL); err != nil {
		log.Warn("listing cache write failed",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
	}

	return page, nil
}

// UpdateFields implements TaskService.UpdateFields
func (s *taskServiceImpl) UpdateFields(
	ctx context.Context,
	id, userID uuid.UUID,
	fields store.TaskFieldUpdate,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if fields.IsEmpty() {
		return nil, domain.NewValidationError("fields", "no updatable fields provided", domain.ErrValidation)
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	task, err := s.taskStore.UpdateFields(ctx, id, userID, fields)
	if err != nil {
		return nil, err
	}

	s.invalidateListings(ctx, userID)

	log.Info("task fields updated",
		slog.String("task_id", id.String()),
		slog.String("user_id", userID.String()))
	return task, nil
}

// Delete implements TaskService.Delete
func (s *taskServiceImpl) Delete(ctx context.Context, id, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.taskStore.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.invalidateListings(ctx, userID)

	log.Info("task deleted",
		slog.String("task_id", id.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// UpdateStatus implements TaskService.UpdateStatus
// The conditional update and its disambiguation read run in one transaction,
// so the diagnosis is never stale relative to the attempted write.
func (s *taskServiceImpl) UpdateStatus(
	ctx context.Context,
	id, userID uuid.UUID,
	status domain.TaskStatus,
	expectedVersion int64,
) (*store.StatusUpdateResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.IsValid() {
		return nil, domain.NewValidationError("status", "unrecognized status", domain.ErrInvalidStatus)
	}

	var result *store.StatusUpdateResult
	err := store.RunInTransaction(
		ctx,
		s.taskStore.DB(),
		func(ctx context.Context, tx *sql.Tx) error {
			var txErr error
			result, txErr = s.taskStore.WithTx(tx).UpdateStatus(ctx, id, userID, status, expectedVersion)
			return txErr
		},
	)
	if err != nil {
		// Expected outcomes pass through as their sentinel kinds so the API
		// layer can map conflict and not-found to distinct codes.
		if store.IsVersionConflictError(err) || store.IsNotFoundError(err) {
			return nil, err
		}
		log.Error("failed to update task status",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, NewTaskServiceError("update_status", "transaction failed", err)
	}

	s.invalidateListings(ctx, userID)

	s.emit(ctx, events.EventTaskStatusUpdated, events.TaskStatusUpdatedPayload{
		TaskID:     result.ID,
		NewStatus:  result.Status,
		NewVersion: result.Version,
	})

	log.Info("task status updated",
		slog.String("task_id", id.String()),
		slog.String("status", string(result.Status)),
		slog.Int64("version", result.Version))
	return result, nil
}

// invalidateListings drops every cached listing page belonging to the user.
// Failures are logged, never propagated: the short TTL bounds staleness even
// when invalidation is unavailable.
func (s *taskServiceImpl) invalidateListings(ctx context.Context, userID uuid.UUID) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.cache.DeletePattern(ctx, listCachePattern(userID)); err != nil {
		log.Warn("failed to invalidate cached listings",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
	}
}

// emit publishes a domain event with at most one asynchronous delivery
// attempt. Delivery failures are logged and never fail the request.
func (s *taskServiceImpl) emit(ctx context.Context, eventType string, payload any) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewTaskEvent(eventType, payload)
	if err != nil {
		log.Error("failed to build event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType))
		return
	}

	go func() {
		emitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventEmitTimeout)
		defer cancel()

		if err := s.emitter.EmitEvent(emitCtx, event); err != nil {
			log.Error("failed to deliver event",
				slog.String("error", err.Error()),
				slog.String("event_type", eventType),
				slog.String("event_id", event.ID.String()))
		}
	}()
}

// listCacheKey builds the cache key for one listing page: the owner, the
// filter/sort signature, the page size, and the continuation cursor.
func listCacheKey(userID uuid.UUID, f store.ListFilters) string {
	return fmt.Sprintf("tasks:%s:%s:limit=%d:after=%s", userID, f.Signature(), f.Limit, f.After)
}

// listCachePattern matches every cached listing page for the user.
func listCachePattern(userID uuid.UUID) string {
	return fmt.Sprintf("tasks:%s:*", userID)
}
