package store

import (
	"context"
	"log/slog"
	"time"
)

// retentionInterval is how often expired flow calls are purged.
const retentionInterval = time.Hour

// StartRetentionWorker periodically deletes flow calls older than
// retention until ctx is done. A zero retention disables the worker.
func StartRetentionWorker(ctx context.Context, repo Repository, retention time.Duration) {
	if retention <= 0 {
		slog.Info("Flow call retention disabled")
		return
	}

	ticker := time.NewTicker(retentionInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("Retention worker started", "interval", retentionInterval, "retention", retention)

		purgeExpiredCalls(ctx, repo, retention, time.Now())
		for {
			select {
			case now := <-ticker.C:
				purgeExpiredCalls(ctx, repo, retention, now)
			case <-ctx.Done():
				slog.Info("Retention worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func purgeExpiredCalls(ctx context.Context, repo Repository, retention time.Duration, now time.Time) {
	deleted, err := repo.DeleteFlowCallsBefore(ctx, now.Add(-retention))
	if err != nil {
		slog.Error("Retention worker failed to purge flow calls", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("Retention worker purged flow calls", "count", deleted)
	}
}
