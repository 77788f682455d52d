package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorghs/Task-Management-System/internal/domain"
	"github.com/gorghs/Task-Management-System/internal/platform/logger"
	"github.com/gorghs/Task-Management-System/internal/store"
)

// ErrorResponse is the JSON body returned on every error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error kind. Mapping is errors.Is-based over the closed error
// taxonomy; it never inspects error text.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors
	var domainValidationErr *domain.ValidationError

	switch {
	// Optimistic-lock conflicts: the client should re-fetch and retry.
	case errors.Is(err, store.ErrVersionConflict):
		return http.StatusConflict

	// Absent or unowned resources are indistinguishable by design.
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Client-input errors.
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, domain.ErrZeroDueDate),
		errors.Is(err, store.ErrInvalidCursor),
		errors.Is(err, store.ErrInvalidEntity),
		errors.As(err, &domainValidationErr),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	// Unique constraint conflicts (registration boundary only).
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Default: internal server error.
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message based
// on the error kind. This prevents leaking internal details to clients.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var domainValidationErr *domain.ValidationError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, store.ErrVersionConflict):
		return "Concurrent update detected: the task was modified by another session. Refresh and try again."

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found or unauthorized"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrInvalidCursor):
		return "Invalid pagination cursor"

	// Domain validation errors carry a field-scoped message that is safe to
	// surface as-is.
	case errors.As(err, &domainValidationErr):
		return domainValidationErr.Error()

	case errors.As(err, &validationErrs):
		if len(validationErrs) > 0 {
			fe := validationErrs[0]
			return "Invalid " + fe.Field() + ": failed " + fe.Tag() + " validation"
		}
		return "Invalid request"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	default:
		return "An unexpected error occurred"
	}
}

// RespondWithError writes the mapped status code and safe message for err.
// Unexpected errors are logged with their internal detail; the client only
// ever sees the sanitized message.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path))
	}
	RespondWithJSON(w, status, ErrorResponse{Error: GetSafeErrorMessage(err)})
}

// RespondWithJSON writes a JSON response with the given status code.
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Error("failed to encode response", slog.String("error", err.Error()))
	}
}
