package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gorghs/Task-Management-System/internal/domain"
	"github.com/gorghs/Task-Management-System/internal/platform/logger"
	"github.com/gorghs/Task-Management-System/internal/store"
)

// PostgresAnalyticsStore implements the store.AnalyticsStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAnalyticsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAnalyticsStore creates a new PostgreSQL implementation of the
// AnalyticsStore interface. If logger is nil, a default logger will be used.
func NewPostgresAnalyticsStore(db store.DBTX, logger *slog.Logger) *PostgresAnalyticsStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAnalyticsStore{
		db:     db,
		logger: logger.With(slog.String("component", "analytics_store")),
	}
}

// Ensure PostgresAnalyticsStore implements store.AnalyticsStore interface
var _ store.AnalyticsStore = (*PostgresAnalyticsStore)(nil)

// Leaderboard implements store.AnalyticsStore.Leaderboard
// It ranks users by completed-task count, highest first, with user ID as the
// deterministic tie-breaker.
func (s *PostgresAnalyticsStore) Leaderboard(ctx context.Context, limit int) ([]store.LeaderboardEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT u.id, u.name, COUNT(t.id) AS completed_tasks
		FROM users u
		JOIN tasks t ON u.id = t.user_id
		WHERE t.status = $1
		GROUP BY u.id, u.name
		ORDER BY completed_tasks DESC, u.id ASC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, domain.TaskStatusCompleted, limit)
	if err != nil {
		log.Error("failed to query leaderboard", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var entries []store.LeaderboardEntry
	for rows.Next() {
		var entry store.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.Name, &entry.CompletedTasks); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard rows: %w", err)
	}

	return entries, nil
}
