package api

import (
	"log/slog"
	"net/http"

	"github.com/gorghs/Task-Management-System/internal/service"
	"github.com/gorghs/Task-Management-System/internal/store"
)

// AnalyticsHandler handles the /v1/analytics endpoints.
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
	logger           *slog.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           logger.With(slog.String("component", "analytics_handler")),
	}
}

// Leaderboard handles GET /v1/analytics/leaderboard.
func (h *AnalyticsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.analyticsService.Leaderboard(r.Context())
	if err != nil {
		RespondWithError(w, r, err)
		return
	}

	if entries == nil {
		entries = []store.LeaderboardEntry{}
	}
	RespondWithJSON(w, http.StatusOK, LeaderboardResponse{Leaderboard: entries})
}
