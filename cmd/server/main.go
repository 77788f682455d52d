// Package main implements the entry point for the task API server: it loads
// configuration, sets up logging, connects to PostgreSQL and Redis, runs the
// database migrations, wires the stores/services/handlers together, and runs
// the HTTP server until shutdown.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorghs/Task-Management-System/internal/api"
	"github.com/gorghs/Task-Management-System/internal/config"
	"github.com/gorghs/Task-Management-System/internal/events"
	"github.com/gorghs/Task-Management-System/internal/platform/cache"
	"github.com/gorghs/Task-Management-System/internal/platform/logger"
	"github.com/gorghs/Task-Management-System/internal/platform/postgres"
	"github.com/gorghs/Task-Management-System/internal/service"
	"github.com/redis/go-redis/v9"
)

// startupTimeout bounds connecting to the database and running migrations.
const startupTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// run initializes every component and blocks until shutdown. All dependencies
// are constructed here and injected downward; nothing holds ambient globals.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := openDatabase(startupCtx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := runMigrations(startupCtx, db); err != nil {
		return err
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Cache.Addr})
	cacheLayer := cache.New(redisClient, cache.Config{Prefix: cfg.Cache.KeyPrefix})
	defer func() { _ = cacheLayer.Close() }()

	// A cache that is down at startup is not fatal: requests degrade to the
	// database until Redis comes back.
	if err := cacheLayer.Ping(startupCtx); err != nil {
		appLogger.Warn("cache unavailable at startup, serving from store until it recovers",
			slog.String("error", err.Error()))
	}

	emitter := events.NewInMemoryEventEmitter(appLogger)
	emitter.RegisterHandler(events.NewLoggingHandler(appLogger))

	taskStore := postgres.NewPostgresTaskStore(db, appLogger)
	analyticsStore := postgres.NewPostgresAnalyticsStore(db, appLogger)

	taskService, err := service.NewTaskService(taskStore, cacheLayer, emitter, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}
	analyticsService, err := service.NewAnalyticsService(analyticsStore, cacheLayer, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create analytics service: %w", err)
	}

	router := newRouter(
		api.NewTaskHandler(taskService, appLogger),
		api.NewAnalyticsHandler(analyticsService, appLogger),
		appLogger,
	)

	return serve(cfg.Server.Port, router, appLogger)
}

// serve runs the HTTP server until SIGINT/SIGTERM, then shuts down gracefully.
func serve(port int, handler http.Handler, appLogger *slog.Logger) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("starting server", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-shutdownCh:
		appLogger.Info("shutting down", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	appLogger.Info("server shutdown completed")
	return nil
}
