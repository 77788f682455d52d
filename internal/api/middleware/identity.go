// Package middleware provides the HTTP middleware for the API surface.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// UserIDHeader is the header carrying the authenticated user's ID.
// Authentication itself (token verification, password checks) happens in an
// upstream gateway outside this service; the core trusts the identity it is
// handed and never re-validates it.
const UserIDHeader = "X-User-ID"

// userIDKey is the context key for the authenticated user ID.
type userIDKey struct{}

// WithUserID returns a new context carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the authenticated user ID stored by Identity.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	return id, ok
}

// Identity extracts the upstream-authenticated user ID from the request and
// stores it in the context. Requests without a parseable identity are
// rejected with 401 before reaching any handler.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserIDHeader)
		if raw == "" {
			respondUnauthorized(w, "missing authenticated user identity")
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			respondUnauthorized(w, "malformed authenticated user identity")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
