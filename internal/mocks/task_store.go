package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/gorghs/Task-Management-System/internal/domain"
	"github.com/gorghs/Task-Management-System/internal/store"
)

// MockTaskStore implements store.TaskStore for testing.
type MockTaskStore struct {
	// Custom behavior functions
	CreateFn       func(ctx context.Context, task *domain.Task) error
	GetByIDFn      func(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error)
	ListFn         func(ctx context.Context, userID uuid.UUID, filters store.ListFilters) (*store.TaskPage, error)
	UpdateFieldsFn func(ctx context.Context, id, userID uuid.UUID, fields store.TaskFieldUpdate) (*domain.Task, error)
	DeleteFn       func(ctx context.Context, id, userID uuid.UUID) error
	UpdateStatusFn func(ctx context.Context, id, userID uuid.UUID, status domain.TaskStatus, expectedVersion int64) (*store.StatusUpdateResult, error)

	// Database handle returned by DB(); defaults to a no-op transactional DB.
	Database *sql.DB

	// Call counters
	ListCalls int

	// Default return values
	Task         *domain.Task
	DefaultError error
}

// NewMockTaskStore creates a MockTaskStore whose DB() supports transactions.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{Database: NewDB()}
}

// Ensure MockTaskStore implements store.TaskStore
var _ store.TaskStore = (*MockTaskStore)(nil)

// Create implements store.TaskStore.Create
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	return m.DefaultError
}

// GetByID implements store.TaskStore.GetByID
func (m *MockTaskStore) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id, userID)
	}
	return m.Task, m.DefaultError
}

// List implements store.TaskStore.List
func (m *MockTaskStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filters store.ListFilters,
) (*store.TaskPage, error) {
	m.ListCalls++
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, filters)
	}
	return &store.TaskPage{}, m.DefaultError
}

// UpdateFields implements store.TaskStore.UpdateFields
func (m *MockTaskStore) UpdateFields(
	ctx context.Context,
	id, userID uuid.UUID,
	fields store.TaskFieldUpdate,
) (*domain.Task, error) {
	if m.UpdateFieldsFn != nil {
		return m.UpdateFieldsFn(ctx, id, userID, fields)
	}
	return m.Task, m.DefaultError
}

// Delete implements store.TaskStore.Delete
func (m *MockTaskStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id, userID)
	}
	return m.DefaultError
}

// UpdateStatus implements store.TaskStore.UpdateStatus
func (m *MockTaskStore) UpdateStatus(
	ctx context.Context,
	id, userID uuid.UUID,
	status domain.TaskStatus,
	expectedVersion int64,
) (*store.StatusUpdateResult, error) {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, id, userID, status, expectedVersion)
	}
	return nil, m.DefaultError
}

// WithTx implements store.TaskStore.WithTx
// The mock has no transactional state, so it returns itself.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

// DB implements store.TaskStore.DB
func (m *MockTaskStore) DB() *sql.DB {
	return m.Database
}

// MockAnalyticsStore implements store.AnalyticsStore for testing.
type MockAnalyticsStore struct {
	LeaderboardFn func(ctx context.Context, limit int) ([]store.LeaderboardEntry, error)

	// Call counter
	LeaderboardCalls int

	// Default return values
	Entries      []store.LeaderboardEntry
	DefaultError error
}

// Ensure MockAnalyticsStore implements store.AnalyticsStore
var _ store.AnalyticsStore = (*MockAnalyticsStore)(nil)

// Leaderboard implements store.AnalyticsStore.Leaderboard
func (m *MockAnalyticsStore) Leaderboard(ctx context.Context, limit int) ([]store.LeaderboardEntry, error) {
	m.LeaderboardCalls++
	if m.LeaderboardFn != nil {
		return m.LeaderboardFn(ctx, limit)
	}
	return m.Entries, m.DefaultError
}
