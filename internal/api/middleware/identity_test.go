package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity(t *testing.T) {
	t.Run("stores the user ID in the context", func(t *testing.T) {
		userID := uuid.New()

		var gotID uuid.UUID
		var gotOK bool
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID, gotOK = UserIDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
		req.Header.Set(UserIDHeader, userID.String())
		rec := httptest.NewRecorder()

		Identity(next).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, gotOK)
		assert.Equal(t, userID, gotID)
	})

	t.Run("rejects a missing identity", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not be reached")
		})

		req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
		rec := httptest.NewRecorder()

		Identity(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "missing authenticated user identity")
	})

	t.Run("rejects a malformed identity", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not be reached")
		})

		req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
		req.Header.Set(UserIDHeader, "not-a-uuid")
		rec := httptest.NewRecorder()

		Identity(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "malformed authenticated user identity")
	})
}

func TestUserIDFromContext(t *testing.T) {
	t.Run("absent by default", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		_, ok := UserIDFromContext(req.Context())
		assert.False(t, ok)
	})

	t.Run("round-trips through WithUserID", func(t *testing.T) {
		userID := uuid.New()
		ctx := WithUserID(httptest.NewRequest(http.MethodGet, "/", nil).Context(), userID)
		got, ok := UserIDFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, userID, got)
	})
}
