package service

import (
	"context"
	"log/slog"

	"synonym_arena/internal/metrics"
)

// push delivers fire-and-forget: failures are logged and counted, never
// returned, and never undo the state change that triggered them.
func push(ctx context.Context, n Notifier, log *slog.Logger, handle, msgType string, payload any) {
	if err := n.Send(ctx, handle, msgType, payload); err != nil {
		metrics.PushFailures.WithLabelValues(msgType).Inc()
		log.Warn("push failed", "connection", handle, "type", msgType, "error", err)
	}
}
