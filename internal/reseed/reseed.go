// Package reseed re-runs the idempotent tune seed loader on a cron
// schedule. The loader no-ops while the tune namespace holds records, so
// the scheduler only matters after an out-of-band wipe: the next tick
// restores the curated dataset without a restart.
package reseed

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"tunebook/pkg/logger"
)

// Start starts the reseed scheduler when a cron expression is configured.
// load runs the seed pass; callers hand in a loader that holds the service
// write lock so a scheduled run cannot interleave with request-driven
// mutations. Returns a cancel func; with no cron it is a no-op cancel.
func Start(ctx context.Context, load func() (int, error), cronExpr string) (context.CancelFunc, error) {
	if cronExpr == "" {
		logger.Info("reseed_disabled")
		return func() {}, nil
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("reseed_invalid_cron", "cron", cronExpr)
		return nil, fmt.Errorf("invalid reseed cron expression: %s", cronExpr)
	}

	logger.Info("reseed_enabled", "cron", cronExpr)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, load, cronExpr)
	return cancel, nil
}

// runScheduler computes the next tick for the configured cron expression
// via gronx and sleeps until then, which supports full cron syntax without
// a polling loop.
func runScheduler(ctx context.Context, load func() (int, error), cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("reseed_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("reseed_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				logger.Info("reseed_scheduler_stopping")
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			if n, err := load(); err != nil {
				logger.Error("reseed_run_error", "error", err)
			} else if n > 0 {
				logger.Info("reseed_restored", "count", n)
			}
		case <-ctx.Done():
			logger.Info("reseed_scheduler_stopping")
			return
		}
	}
}
