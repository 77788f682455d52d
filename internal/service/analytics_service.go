package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorghs/Task-Management-System/internal/domain"
	"github.com/gorghs/Task-Management-System/internal/platform/logger"
	"github.com/gorghs/Task-Management-System/internal/store"
)

// Leaderboard caching policy.
const (
	leaderboardCacheKey = "leaderboard"
	leaderboardCacheTTL = time.Hour
	leaderboardSize     = 10
)

// AnalyticsService provides the completed-task leaderboard behind a
// read-through cache.
type AnalyticsService interface {
	// Leaderboard returns the top users ranked by completed-task count.
	Leaderboard(ctx context.Context) ([]store.LeaderboardEntry, error)
}

// analyticsServiceImpl implements the AnalyticsService interface.
type analyticsServiceImpl struct {
	analyticsStore store.AnalyticsStore
	cache          Cache
	logger         *slog.Logger
}

// NewAnalyticsService creates a new AnalyticsService.
// It returns an error if any of the required dependencies are nil.
func NewAnalyticsService(
	analyticsStore store.AnalyticsStore,
	cache Cache,
	logger *slog.Logger,
) (AnalyticsService, error) {
	if analyticsStore == nil {
		return nil, domain.NewValidationError("analyticsStore", "cannot be nil", domain.ErrValidation)
	}
	if cache == nil {
		return nil, domain.NewValidationError("cache", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &analyticsServiceImpl{
		analyticsStore: analyticsStore,
		cache:          cache,
		logger:         logger.With(slog.String("component", "analytics_service")),
	}, nil
}

// Leaderboard implements AnalyticsService.Leaderboard
// Cache errors degrade to a store read; the aggregate is pure derived data.
func (s *analyticsServiceImpl) Leaderboard(ctx context.Context) ([]store.LeaderboardEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var cached []store.LeaderboardEntry
	hit, err := s.cache.Get(ctx, leaderboardCacheKey, &cached)
	if err != nil {
		log.Warn("leaderboard cache read failed, serving from store",
			slog.String("error", err.Error()))
	} else if hit {
		return cached, nil
	}

	entries, err := s.analyticsStore.Leaderboard(ctx, leaderboardSize)
	if err != nil {
		log.Error("failed to query leaderboard", slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.cache.Set(ctx, leaderboardCacheKey, entries, leaderboardCacheTTL); err != nil {
		log.Warn("leaderboard cache write failed", slog.String("error", err.Error()))
	}

	return entries, nil
}
