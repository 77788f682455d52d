package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorghs/Task-Management-System/internal/domain"
	"github.com/gorghs/Task-Management-System/internal/platform/logger"
	"github.com/gorghs/Task-Management-System/internal/store"
)

// taskColumns is the column list shared by every task SELECT/RETURNING clause,
// kept in one place so scans stay aligned.
const taskColumns = "id, user_id, title, description, status, priority, due_date, created_at, updated_at, version"

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	pool   *sql.DB // retained for DB(); nil only in test doubles
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db *sql.DB, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		pool:   db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
// It returns a copy of the store that runs every query on the given transaction.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		pool:   s.pool,
		logger: s.logger,
	}
}

// DB implements store.TaskStore.DB
func (s *PostgresTaskStore) DB() *sql.DB {
	return s.pool
}

// Create implements store.TaskStore.Create
// It saves a new task with the initial version, handling domain validation.
// Returns store.ErrInvalidEntity if the owning user doesn't exist.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.UserID,
		task.Title,
		nullString(task.Description),
		task.Status,
		task.Priority,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
		task.Version,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("task_id", task.ID.String()),
				slog.String("user_id", task.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, task.UserID)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task is absent or owned by another user.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	return task, nil
}

// List implements store.TaskStore.List
// It builds a predicate conjunction from the present filters, orders by the
// composite key (sort field, id), and pages with a strict row-value keyset
// predicate so rows tying on the sort field are never skipped or repeated.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filters store.ListFilters,
) (*store.TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	filters = filters.Normalize()
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	query, args, err := buildListQuery(userID, filters)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	page := &store.TaskPage{Tasks: tasks}

	// A full page means there may be more rows; anything shorter is the end.
	if len(tasks) == filters.Limit {
		last := tasks[len(tasks)-1]
		cursor, err := store.EncodeCursor(filters, store.Cursor{
			SortValue: cursorSortValue(filters.SortField, last),
			LastID:    last.ID,
		})
		if err != nil {
			return nil, err
		}
		page.NextCursor = cursor
	}

	log.Debug("listed tasks",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(tasks)),
		slog.Bool("has_next", page.NextCursor != ""))
	return page, nil
}

// UpdateFields implements store.TaskStore.UpdateFields
// Field edits are last-write-wins: the version column is untouched.
func (s *PostgresTaskStore) UpdateFields(
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

	var setClauses []string
	var args []any
	n := 1
	addSet := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}

	if fields.Title != nil {
		addSet("title", *fields.Title)
	}
	if fields.Description != nil {
		addSet("description", nullString(*fields.Description))
	}
	if fields.Priority != nil {
		addSet("priority", *fields.Priority)
	}
	if fields.DueDate != nil {
		addSet("due_date", *fields.DueDate)
	}
	addSet("updated_at", time.Now().UTC())

	query := fmt.Sprintf(
		"UPDATE tasks SET %s WHERE id = $%d AND user_id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), n, n+1, taskColumns,
	)
	args = append(args, id, userID)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to update task fields",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	log.Debug("task fields updated", slog.String("task_id", id.String()))
	return task, nil
}

// Delete implements store.TaskStore.Delete
// Deletion is permanent and immediate; there is no soft delete.
func (s *PostgresTaskStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Debug("task deleted", slog.String("task_id", id.String()))
	return nil
}

// UpdateStatus implements store.TaskStore.UpdateStatus
// It is the compare-and-swap over the version column. The conditional update
// and the zero-rows disambiguation read must share one transaction, so this
// method is meant to be called on a WithTx store inside
// store.RunInTransaction; see the interface documentation.
func (s *PostgresTaskStore) UpdateStatus(
	ctx context.Context,
	id, userID uuid.UUID,
	status domain.TaskStatus,
	expectedVersion int64,
) (*store.StatusUpdateResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.IsValid() {
		return nil, domain.NewValidationError("status", "unrecognized status", domain.ErrInvalidStatus)
	}
	if expectedVersion < domain.InitialTaskVersion {
		return nil, domain.NewValidationError("version", "must be a positive version number", domain.ErrValidation)
	}

	updateQuery := `
		UPDATE tasks
		SET status = $1, updated_at = $2, version = version + 1
		WHERE id = $3 AND user_id = $4 AND version = $5
		RETURNING id, status, version
	`

	var result store.StatusUpdateResult
	err := s.db.QueryRowContext(
		ctx,
		updateQuery,
		status,
		time.Now().UTC(),
		id,
		userID,
		expectedVersion,
	).Scan(&result.ID, &result.Status, &result.Version)

	if err == nil {
		log.Debug("task status updated",
			slog.String("task_id", id.String()),
			slog.String("status", string(result.Status)),
			slog.Int64("version", result.Version))
		return &result, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to update task status",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	// Zero rows: disambiguate against the same transactional snapshot.
	// Either the task is absent/unowned, or another writer advanced the version.
	var storedVersion int64
	err = s.db.QueryRowContext(
		ctx,
		`SELECT version FROM tasks WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&storedVersion)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrTaskNotFound
	}
	if err != nil {
		log.Error("failed to diagnose status update failure",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	log.Debug("task status update lost version race",
		slog.String("task_id", id.String()),
		slog.Int64("expected_version", expectedVersion),
		slog.Int64("stored_version", storedVersion))
	return nil, fmt.Errorf(
		"%w: expected version %d, stored version %d",
		store.ErrVersionConflict, expectedVersion, storedVersion,
	)
}

// buildListQuery assembles the listing SQL and its bind arguments.
// The sort field was validated against the allow-list by the caller, so it is
// safe to splice into the identifier position; every value travels as a
// parameter.
func buildListQuery(userID uuid.UUID, f store.ListFilters) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + taskColumns + " FROM tasks WHERE user_id = $1")
	args := []any{userID}
	n := 2

	if f.Status != nil {
		fmt.Fprintf(&sb, " AND status = $%d", n)
		args = append(args, *f.Status)
		n++
	}
	if f.Priority != nil {
		fmt.Fprintf(&sb, " AND priority = $%d", n)
		args = append(args, *f.Priority)
		n++
	}
	if f.AsOf != nil {
		fmt.Fprintf(&sb, " AND created_at <= $%d", n)
		args = append(args, f.AsOf.UTC())
		n++
	}

	if f.After != "" {
		cursor, err := store.DecodeCursor(f, f.After)
		if err != nil {
			return "", nil, err
		}
		sortArg, err := cursorSortArg(f.SortField, cursor.SortValue)
		if err != nil {
			return "", nil, err
		}

		// Strict inequality on the composite tuple, not two independent
		// comparisons: rows tying on the sort field are ordered by id.
		op := ">"
		if f.SortOrder == store.SortDesc {
			op = "<"
		}
		fmt.Fprintf(&sb, " AND (%s, id) %s ($%d, $%d)", f.SortField, op, n, n+1)
		args = append(args, sortArg, cursor.LastID)
		n += 2
	}

	fmt.Fprintf(&sb, " ORDER BY %s %s, id %s", f.SortField, f.SortOrder, f.SortOrder)
	fmt.Fprintf(&sb, " LIMIT $%d", n)
	args = append(args, f.Limit)

	return sb.String(), args, nil
}

// cursorSortValue serializes the last row's sort-field value for the cursor.
func cursorSortValue(field store.SortField, task *domain.Task) string {
	switch field {
	case store.SortByCreatedAt:
		return task.CreatedAt.UTC().Format(time.RFC3339Nano)
	case store.SortByPriority:
		return string(task.Priority)
	default:
		return task.DueDate.UTC().Format(time.RFC3339Nano)
	}
}

// cursorSortArg converts a decoded cursor sort value back into a typed bind
// argument. A value that doesn't parse for the sort field's type means the
// cursor was corrupted.
func cursorSortArg(field store.SortField, value string) (any, error) {
	switch field {
	case store.SortByDueDate, store.SortByCreatedAt:
		t, err := time.Parse(time.RFC3339Nano, value)
		if err != nil {
			return nil, fmt.Errorf("%w: bad sort value: %v", store.ErrInvalidCursor, err)
		}
		return t, nil
	case store.SortByPriority:
		if !domain.TaskPriority(value).IsValid() {
			return nil, fmt.Errorf("%w: bad sort value", store.ErrInvalidCursor)
		}
		return value, nil
	default:
		return nil, fmt.Errorf("%w: unsupported sort field", store.ErrInvalidCursor)
	}
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one task row in taskColumns order.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var description sql.NullString

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&description,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
		&task.Version,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	return &task, nil
}

// nullString maps an empty description to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
