package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gorghs/Task-Management-System/internal/api"
	"github.com/gorghs/Task-Management-System/internal/api/middleware"
	"github.com/gorghs/Task-Management-System/internal/platform/logger"
)

// newRouter assembles the HTTP routing tree. Task and analytics routes sit
// behind the identity middleware; /health is public.
func newRouter(
	taskHandler *api.TaskHandler,
	analyticsHandler *api.AnalyticsHandler,
	appLogger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(appLogger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		api.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Identity)

		r.Route("/tasks", taskHandler.Routes)
		r.Get("/analytics/leaderboard", analyticsHandler.Leaderboard)
	})

	return r
}

// requestLogger attaches a request-scoped logger (carrying the request ID) to
// the context so every layer below logs with the same attributes.
func requestLogger(appLogger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := appLogger.With(
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			next.ServeHTTP(w, r.WithContext(logger.WithLogger(r.Context(), reqLogger)))
		})
	}
}
