package pipeline

import (
	"context"
	"time"
)

// RunContinuous runs processing cycles until ctx is cancelled: each
// cycle processes unread messages and then reviews due follow-ups. The
// first cycle runs immediately; later cycles fire on the configured
// check interval. Returns the accumulated stats across all cycles.
func (o *Orchestrator) RunContinuous(ctx context.Context) (RunStats, error) {
	interval := o.cfg.CheckInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	o.logger.Info("continuous mode started", "interval", interval)

	var total RunStats
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		stats, err := o.ProcessMessages(ctx)
		total.Processed += stats.Processed
		total.Sent += stats.Sent
		total.Skipped += stats.Skipped
		total.Errors += stats.Errors
		if err != nil {
			if ctx.Err() != nil {
				return total, nil
			}
			// Fetch failures are transient; keep polling.
			o.logger.Error("processing cycle failed", "error", err)
		}

		if err := o.CheckFollowUps(ctx); err != nil {
			if ctx.Err() != nil {
				return total, nil
			}
			o.logger.Error("follow-up check failed", "error", err)
		}

		select {
		case <-ctx.Done():
			o.logger.Info("continuous mode stopped",
				"processed", total.Processed,
				"sent", total.Sent,
				"skipped", total.Skipped,
				"errors", total.Errors,
			)
			return total, nil
		case <-ticker.C:
		}
	}
}
