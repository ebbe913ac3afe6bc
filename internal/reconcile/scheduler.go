package reconcile

// scheduler.go runs reconciliation as a periodic background job.
//
// The loop is long-running and context-aware for graceful shutdown. A failed
// run is logged and the loop keeps going; it does not fail the process.

import (
	"context"
	"log/slog"
	"time"
)

// StartScheduler runs one reconciliation immediately, then one per interval,
// until ctx is cancelled. Intended to be launched in its own goroutine.
func (r *Reconciler) StartScheduler(ctx context.Context, interval time.Duration) {
	slog.Info("sheet sync scheduler started",
		"spreadsheet_id", r.cfg.SpreadsheetID,
		"sheet", r.cfg.SheetName,
		"interval", interval.String(),
	)

	r.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sheet sync scheduler stopped")
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

// runOnce performs one scheduled run and logs its outcome.
func (r *Reconciler) runOnce(ctx context.Context) {
	start := time.Now()
	res, err := r.Run(ctx)
	if err != nil {
		slog.Error("sheet sync failed",
			"error", err,
			"rows_processed", res.Rows,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	slog.Info("sheet sync completed",
		"inserted", res.Inserted,
		"updated", res.Updated,
		"unchanged", res.Unchanged,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
