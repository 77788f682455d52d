package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorghs/Task-Management-System/internal/api/middleware"
	"github.com/gorghs/Task-Management-System/internal/domain"
	"github.com/gorghs/Task-Management-System/internal/service"
	"github.com/gorghs/Task-Management-System/internal/store"
)

// TaskHandler handles the /v1/tasks endpoints.
type TaskHandler struct {
	taskService service.TaskService
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		taskService: taskService,
		validate:    validator.New(),
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// Routes mounts the task endpoints on a chi router.
func (h *TaskHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{taskID}", h.GetByID)
	r.Patch("/{taskID}", h.Update)
	r.Delete("/{taskID}", h.Delete)
	r.Patch("/{taskID}/status", h.UpdateStatus)
}

// Create handles POST /v1/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		RespondWithJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing authenticated user identity"})
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, domain.NewValidationError("body", "malformed JSON", domain.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		RespondWithError(w, r, err)
		return
	}

	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		RespondWithError(w, r, err)
		return
	}

	task, err := h.taskService.Create(
		r.Context(),
		userID,
		req.Title,
		req.Description,
		domain.TaskPriority(req.Priority),
		dueDate,
	)
	if err != nil {
		RespondWithError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusCreated, TaskResponse{Task: task})
}

// List handles GET /v1/tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		RespondWithJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing authenticated user identity"})
		return
	}

	filters, err := parseListFilters(r.URL.Query())
	if err != nil {
		RespondWithError(w, r, err)
		return
	}

	page, err := h.taskService.List(r.Context(), userID, filters)
	if err != nil {
		RespondWithError(w, r, err)
		return
	}

	tasks := page.Tasks
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	RespondWithJSON(w, http.StatusOK, TaskListResponse{
		Tasks: tasks,
		Pagination: Pagination{
			Limit:      filters.Normalize().Limit,
			NextCursor: page.NextCursor,
		},
	})
}

// GetByID handles GET /v1/tasks/{taskID}.
func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetByID(r.Context(), taskID, userID)
	if err != nil {
		RespondWithError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, TaskResponse{Task: task})
}

// Update handles PATCH /v1/tasks/{taskID}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, domain.NewValidationError("body", "malformed JSON", domain.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		RespondWithError(w, r, err)
		return
	}

	fields := store.TaskFieldUpdate{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		fields.Priority = &priority
	}
	if req.DueDate != nil {
		dueDate, err := parseDate("due_date", *req.DueDate)
		if err != nil {
			RespondWithError(w, r, err)
			return
		}
		fields.DueDate = &dueDate
	}

	task, err := h.taskService.UpdateFields(r.Context(), taskID, userID, fields)
	if err != nil {
		RespondWithError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, TaskResponse{Task: task})
}

// Delete handles DELETE /v1/tasks/{taskID}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), taskID, userID); err != nil {
		RespondWithError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateStatus handles PATCH /v1/tasks/{taskID}/status.
// A 409 response means the client's version lost the optimistic-lock race and
// it should re-fetch before retrying; a 404 means absent or unowned.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	var req UpdateTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, domain.NewValidationError("body", "malformed JSON", domain.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		RespondWithError(w, r, err)
		return
	}

	result, err := h.taskService.UpdateStatus(
		r.Context(),
		taskID,
		userID,
		domain.TaskStatus(req.Status),
		req.Version,
	)
	if err != nil {
		RespondWithError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, StatusUpdateResponse{UpdatedTask: result})
}

// requestScope extracts the authenticated user ID and the taskID path
// parameter, writing the error response itself when either is missing.
func (h *TaskHandler) requestScope(w http.ResponseWriter, r *http.Request) (userID, taskID uuid.UUID, ok bool) {
	userID, ok = middleware.UserIDFromContext(r.Context())
	if !ok {
		RespondWithJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing authenticated user identity"})
		return uuid.Nil, uuid.Nil, false
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		RespondWithError(w, r, domain.NewValidationError("taskID", "must be a valid UUID", domain.ErrInvalidID))
		return uuid.Nil, uuid.Nil, false
	}

	return userID, taskID, true
}

// parseListFilters builds store.ListFilters from the query string. Enum
// values are validated downstream against the store's allow-lists.
func parseListFilters(q url.Values) (store.ListFilters, error) {
	var filters store.ListFilters

	if v := q.Get("status"); v != "" {
		status := domain.TaskStatus(v)
		filters.Status = &status
	}
	if v := q.Get("priority"); v != "" {
		priority := domain.TaskPriority(v)
		filters.Priority = &priority
	}
	if v := q.Get("asOfDate"); v != "" {
		asOf, err := parseDate("asOfDate", v)
		if err != nil {
			return store.ListFilters{}, err
		}
		filters.AsOf = &asOf
	}
	if v := q.Get("sortField"); v != "" {
		filters.SortField = store.SortField(v)
	}
	if v := q.Get("sortOrder"); v != "" {
		filters.SortOrder = store.SortOrder(strings.ToUpper(v))
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return store.ListFilters{}, domain.NewValidationError("limit", "must be a positive integer", domain.ErrValidation)
		}
		filters.Limit = limit
	}
	filters.After = q.Get("after")

	return filters, nil
}
