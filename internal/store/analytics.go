package store

import (
	"context"

	"github.com/google/uuid"
)

// LeaderboardEntry is one row of the completed-task leaderboard.
type LeaderboardEntry struct {
	UserID         uuid.UUID `json:"user_id"`
	Name           string    `json:"name"`
	CompletedTasks int64     `json:"completed_tasks"`
}

// AnalyticsStore defines the read-only aggregate queries over the task data.
type AnalyticsStore interface {
	// Leaderboard returns up to limit users ranked by completed-task count,
	// highest first.
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}
