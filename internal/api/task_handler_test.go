package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorghs/Task-Management-System/internal/api/middleware"
	"github.com/gorghs/Task-Management-System/internal/domain"
	"github.com/gorghs/Task-Management-System/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTaskService implements service.TaskService with overridable functions.
type mockTaskService struct {
	CreateFn       func(ctx context.Context, userID uuid.UUID, title, description string, priority domain.TaskPriority, dueDate time.Time) (*domain.Task, error)
	GetByIDFn      func(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error)
	ListFn         func(ctx context.Context, userID uuid.UUID, filters store.ListFilters) (*store.TaskPage, error)
	UpdateFieldsFn func(ctx context.Context, id, userID uuid.UUID, fields store.TaskFieldUpdate) (*domain.Task, error)
	DeleteFn       func(ctx context.Context, id, userID uuid.UUID) error
	UpdateStatusFn func(ctx context.Context, id, userID uuid.UUID, status domain.TaskStatus, expectedVersion int64) (*store.StatusUpdateResult, error)
}

func (m *mockTaskService) Create(ctx context.Context, userID uuid.UUID, title, description string, priority domain.TaskPriority, dueDate time.Time) (*domain.Task, error) {
	return m.CreateFn(ctx, userID, title, description, priority, dueDate)
}

func (m *mockTaskService) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error) {
	return m.GetByIDFn(ctx, id, userID)
}

func (m *mockTaskService) List(ctx context.Context, userID uuid.UUID, filters store.ListFilters) (*store.TaskPage, error) {
	return m.ListFn(ctx, userID, filters)
}

func (m *mockTaskService) UpdateFields(ctx context.Context, id, userID uuid.UUID, fields store.TaskFieldUpdate) (*domain.Task, error) {
	return m.UpdateFieldsFn(ctx, id, userID, fields)
}

func (m *mockTaskService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return m.DeleteFn(ctx, id, userID)
}

func (m *mockTaskService) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status domain.TaskStatus, expectedVersion int64) (*store.StatusUpdateResult, error) {
	return m.UpdateStatusFn(ctx, id, userID, status, expectedVersion)
}

// newTaskRouter mounts the handler behind the identity middleware the way the
// server does.
func newTaskRouter(svc *mockTaskService) http.Handler {
	handler := NewTaskHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Route("/v1/tasks", func(r chi.Router) {
		r.Use(middleware.Identity)
		handler.Routes(r)
	})
	return r
}

func doRequest(t *testing.T, router http.Handler, method, target string, userID uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != uuid.Nil {
		req.Header.Set(middleware.UserIDHeader, userID.String())
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func handlerTask(userID uuid.UUID) *domain.Task {
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	return &domain.Task{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     "Write report",
		Status:    domain.TaskStatusPending,
		Priority:  domain.TaskPriorityMedium,
		DueDate:   now.Add(72 * time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
		Version:   domain.InitialTaskVersion,
	}
}

func TestTaskHandlerCreate(t *testing.T) {
	userID := uuid.New()

	t.Run("creates a task", func(t *testing.T) {
		task := handlerTask(userID)
		svc := &mockTaskService{
			CreateFn: func(ctx context.Context, uid uuid.UUID, title, description string, priority domain.TaskPriority, dueDate time.Time) (*domain.Task, error) {
				assert.Equal(t, userID, uid)
				assert.Equal(t, "Write report", title)
				assert.Equal(t, domain.TaskPriorityHigh, priority)
				assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), dueDate)
				return task, nil
			},
		}
		router := newTaskRouter(svc)

		rec := doRequest(t, router, http.MethodPost, "/v1/tasks", userID,
			`{"title":"Write report","priority":"high","due_date":"2026-09-15"}`)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp TaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, task.ID, resp.Task.ID)
		assert.Equal(t, "Write report", resp.Task.Title)
	})

	t.Run("rejects a request without identity", func(t *testing.T) {
		router := newTaskRouter(&mockTaskService{})
		rec := doRequest(t, router, http.MethodPost, "/v1/tasks", uuid.Nil,
			`{"title":"x","priority":"low","due_date":"2026-09-15"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		router := newTaskRouter(&mockTaskService{})
		rec := doRequest(t, router, http.MethodPost, "/v1/tasks", userID, `{"title":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a missing title", func(t *testing.T) {
		router := newTaskRouter(&mockTaskService{})
		rec := doRequest(t, router, http.MethodPost, "/v1/tasks", userID,
			`{"priority":"low","due_date":"2026-09-15"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects an unknown priority", func(t *testing.T) {
		router := newTaskRouter(&mockTaskService{})
		rec := doRequest(t, router, http.MethodPost, "/v1/tasks", userID,
			`{"title":"x","priority":"critical","due_date":"2026-09-15"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects an unparseable due date", func(t *testing.T) {
		router := newTaskRouter(&mockTaskService{})
		rec := doRequest(t, router, http.MethodPost, "/v1/tasks", userID,
			`{"title":"x","priority":"low","due_date":"15/09/2026"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTaskHandlerList(t *testing.T) {
	userID := uuid.New()

	t.Run("passes query filters to the service", func(t *testing.T) {
		var gotFilters store.ListFilters
		svc := &mockTaskService{
			ListFn: func(ctx context.Context, uid uuid.UUID, filters store.ListFilters) (*store.TaskPage, error) {
				assert.Equal(t, userID, uid)
				gotFilters = filters
				return &store.TaskPage{Tasks: []*domain.Task{handlerTask(userID)}, NextCursor: "cur"}, nil
			},
		}
		router := newTaskRouter(svc)

		rec := doRequest(t, router, http.MethodGet,
			"/v1/tasks?status=pending&priority=high&sortField=created_at&sortOrder=desc&limit=10&after=abc",
			userID, "")

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotFilters.Status)
		assert.Equal(t, domain.TaskStatusPending, *gotFilters.Status)
		require.NotNil(t, gotFilters.Priority)
		assert.Equal(t, domain.TaskPriorityHigh, *gotFilters.Priority)
		assert.Equal(t, store.SortByCreatedAt, gotFilters.SortField)
		assert.Equal(t, store.SortDesc, gotFilters.SortOrder)
		assert.Equal(t, 10, gotFilters.Limit)
		assert.Equal(t, "abc", gotFilters.After)

		var resp TaskListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Tasks, 1)
		assert.Equal(t, "cur", resp.Pagination.NextCursor)
		assert.Equal(t, 10, resp.Pagination.Limit)
	})

	t.Run("returns an empty array rather than null", func(t *testing.T) {
		svc := &mockTaskService{
			ListFn: func(ctx context.Context, uid uuid.UUID, filters store.ListFilters) (*store.TaskPage, error) {
				return &store.TaskPage{}, nil
			},
		}
		router := newTaskRouter(svc)

		rec := doRequest(t, router, http.MethodGet, "/v1/tasks", userID, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"tasks":[]`)
	})

	t.Run("rejects a non-numeric limit", func(t *testing.T) {
		router := newTaskRouter(&mockTaskService{})
		rec := doRequest(t, router, http.MethodGet, "/v1/tasks?limit=ten", userID, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps an invalid cursor to 400", func(t *testing.T) {
		svc := &mockTaskService{
			ListFn: func(ctx context.Context, uid uuid.UUID, filters store.ListFilters) (*store.TaskPage, error) {
				return nil, fmt.Errorf("%w: signature mismatch", store.ErrInvalidCursor)
			},
		}
		router := newTaskRouter(svc)

		rec := doRequest(t, router, http.MethodGet, "/v1/tasks?after=bogus", userID, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid pagination cursor")
	})
}

func TestTaskHandlerGetByID(t *testing.T) {
	userID := uuid.New()
	task := handlerTask(userID)

	t.Run("returns the task", func(t *testing.T) {
		svc := &mockTaskService{
			GetByIDFn: func(ctx context.Context, id, uid uuid.UUID) (*domain.Task, error) {
				assert.Equal(t, task.ID, id)
				assert.Equal(t, userID, uid)
				return task, nil
			},
		}
		router := newTaskRouter(svc)

		rec := doRequest(t, router, http.MethodGet, "/v1/tasks/"+task.ID.String(), userID, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp TaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, task.ID, resp.Task.ID)
	})

	t.Run("rejects a malformed task ID", func(t *testing.T) {
		router := newTaskRouter(&mockTaskService{})
		rec := doRequest(t, router, http.MethodGet, "/v1/tasks/not-a-uuid", userID, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("absent and unowned both map to 404", func(t *testing.T) {
		svc := &mockTaskService{
			GetByIDFn: func(ctx context.Context, id, uid uuid.UUID) (*domain.Task, error) {
				return nil, store.ErrTaskNotFound
			},
		}
		router := newTaskRouter(svc)

		rec := doRequest(t, router, http.MethodGet, "/v1/tasks/"+uuid.NewString(), userID, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Task not found or unauthorized")
	})
}

func TestTaskHandlerUpdate(t *testing.T) {
	userID := uuid.New()
	task := handlerTask(userID)

	t.Run("applies a partial update", func(t *testing.T) {
		svc := &mockTaskService{
			UpdateFieldsFn: func(ctx context.Context, id, uid uuid.UUID, fields store.TaskFieldUpdate) (*domain.Task, error) {
				require.NotNil(t, fields.Title)
				assert.Equal(t, "Renamed", *fields.Title)
				require.NotNil(t, fields.Priority)
				assert.Equal(t, domain.TaskPriorityLow, *fields.Priority)
				assert.Nil(t, fields.Description)
				assert.Nil(t, fields.DueDate)
				return task, nil
			},
		}
		router := newTaskRouter(svc)

		rec := doRequest(t, router, http.MethodPatch, "/v1/tasks/"+task.ID.String(), userID,
			`{"title":"Renamed","priority":"low"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects an unknown priority", func(t *testing.T) {
		router := newTaskRouter(&mockTaskService{})
		rec := doRequest(t, router, http.MethodPatch, "/v1/tasks/"+task.ID.String(), userID,
			`{"priority":"critical"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty update maps to 400", func(t *testing.T) {
		svc := &mockTaskService{
			UpdateFieldsFn: func(ctx context.Context, id, uid uuid.UUID, fields store.TaskFieldUpdate) (*domain.Task, error) {
				return nil, domain.NewValidationError("fields", "no updatable fields provided", domain.ErrValidation)
			},
		}
		router := newTaskRouter(svc)

		rec := doRequest(t, router, http.MethodPatch, "/v1/tasks/"+task.ID.String(), userID, `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTaskHandlerDelete(t *testing.T) {
	userID := uuid.New()
	taskID := uuid.New()

	t.Run("deletes the task", func(t *testing.T) {
		svc := &mockTaskService{
			DeleteFn: func(ctx context.Context, id, uid uuid.UUID) error {
				assert.Equal(t, taskID, id)
				return nil
			},
		}
		router := newTaskRouter(svc)

		rec := doRequest(t, router, http.MethodDelete, "/v1/tasks/"+taskID.String(), userID, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		svc := &mockTaskService{
			DeleteFn: func(ctx context.Context, id, uid uuid.UUID) error {
				return store.ErrTaskNotFound
			},
		}
		router := newTaskRouter(svc)

		rec := doRequest(t, router, http.MethodDelete, "/v1/tasks/"+taskID.String(), userID, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTaskHandlerUpdateStatus(t *testing.T) {
	userID := uuid.New()
	taskID := uuid.New()

	t.Run("commits the status transition", func(t *testing.T) {
		svc := &mockTaskService{
			UpdateStatusFn: func(ctx context.Context, id, uid uuid.UUID, status domain.TaskStatus, expectedVersion int64) (*store.StatusUpdateResult, error) {
				assert.Equal(t, taskID, id)
				assert.Equal(t, domain.TaskStatusCompleted, status)
				assert.Equal(t, int64(2), expectedVersion)
				return &store.StatusUpdateResult{ID: id, Status: status, Version: 3}, nil
			},
		}
		router := newTaskRouter(svc)

		rec := doRequest(t, router, http.MethodPatch, "/v1/tasks/"+taskID.String()+"/status", userID,
			`{"status":"completed","version":2}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp StatusUpdateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, taskID, resp.UpdatedTask.ID)
		assert.Equal(t, domain.TaskStatusCompleted, resp.UpdatedTask.Status)
		assert.Equal(t, int64(3), resp.UpdatedTask.Version)
	})

	t.Run("version conflict maps to 409", func(t *testing.T) {
		svc := &mockTaskService{
			UpdateStatusFn: func(ctx context.Context, id, uid uuid.UUID, status domain.TaskStatus, expectedVersion int64) (*store.StatusUpdateResult, error) {
				return nil, fmt.Errorf("%w: expected version 2, stored version 4", store.ErrVersionConflict)
			},
		}
		router := newTaskRouter(svc)

		rec := doRequest(t, router, http.MethodPatch, "/v1/tasks/"+taskID.String()+"/status", userID,
			`{"status":"completed","version":2}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "Concurrent update detected")
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		router := newTaskRouter(&mockTaskService{})
		rec := doRequest(t, router, http.MethodPatch, "/v1/tasks/"+taskID.String()+"/status", userID,
			`{"status":"done","version":1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a missing version", func(t *testing.T) {
		router := newTaskRouter(&mockTaskService{})
		rec := doRequest(t, router, http.MethodPatch, "/v1/tasks/"+taskID.String()+"/status", userID,
			`{"status":"completed"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestParseListFilters(t *testing.T) {
	t.Run("empty query yields zero filters", func(t *testing.T) {
		filters, err := parseListFilters(url.Values{})
		require.NoError(t, err)
		assert.Nil(t, filters.Status)
		assert.Nil(t, filters.Priority)
		assert.Nil(t, filters.AsOf)
		assert.Zero(t, filters.Limit)
		assert.Empty(t, filters.After)
	})

	t.Run("parses the asOfDate snapshot bound", func(t *testing.T) {
		q := url.Values{"asOfDate": []string{"2026-08-01"}}
		filters, err := parseListFilters(q)
		require.NoError(t, err)
		require.NotNil(t, filters.AsOf)
		assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), *filters.AsOf)
	})

	t.Run("sort order is case-insensitive", func(t *testing.T) {
		q := url.Values{"sortOrder": []string{"desc"}}
		filters, err := parseListFilters(q)
		require.NoError(t, err)
		assert.Equal(t, store.SortDesc, filters.SortOrder)
	})

	t.Run("rejects zero and negative limits", func(t *testing.T) {
		for _, v := range []string{"0", "-5"} {
			_, err := parseListFilters(url.Values{"limit": []string{v}})
			assert.ErrorIs(t, err, domain.ErrValidation, "limit=%s", v)
		}
	})
}

func TestParseDate(t *testing.T) {
	t.Run("accepts RFC 3339", func(t *testing.T) {
		got, err := parseDate("due_date", "2026-09-15T08:30:00Z")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 9, 15, 8, 30, 0, 0, time.UTC), got)
	})

	t.Run("accepts plain dates", func(t *testing.T) {
		got, err := parseDate("due_date", "2026-09-15")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("rejects other formats", func(t *testing.T) {
		_, err := parseDate("due_date", "15/09/2026")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
