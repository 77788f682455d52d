package events

import (
	"context"
	"log/slog"
)

// LoggingHandler is an EventHandler that records every event to the
// structured log. It stands in for the external notification channel
// (message queue, webhook fan-out) that consumes these events in a larger
// deployment.
type LoggingHandler struct {
	logger *slog.Logger
}

// NewLoggingHandler creates a new LoggingHandler.
func NewLoggingHandler(logger *slog.Logger) *LoggingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingHandler{
		logger: logger.With("component", "event_log"),
	}
}

// Ensure LoggingHandler implements EventHandler
var _ EventHandler = (*LoggingHandler)(nil)

// HandleEvent implements EventHandler.HandleEvent
func (h *LoggingHandler) HandleEvent(ctx context.Context, event *TaskEvent) error {
	h.logger.Info("domain event",
		"event_id", event.ID,
		"event_type", event.Type,
		"payload", string(event.Payload))
	return nil
}
