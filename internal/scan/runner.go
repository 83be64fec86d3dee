package scan

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Runner re-runs the scanner on a fixed interval until the context is
// cancelled. The first cycle starts immediately.
type Runner struct {
	scanner  *Scanner
	interval time.Duration
	logger   *slog.Logger
}

// NewRunner creates a Runner driving the given scanner.
func NewRunner(scanner *Scanner, interval time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		scanner:  scanner,
		interval: interval,
		logger:   logger.With(slog.String("component", "runner")),
	}
}

// Run loops until ctx is cancelled. A failed cycle is logged and the loop
// keeps its cadence; only cancellation stops it. A receive on trigger starts
// a cycle immediately without resetting the cadence; nil disables triggers.
func (r *Runner) Run(ctx context.Context, trigger <-chan struct{}) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.scanner.RunOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Error("scan cycle failed", slog.String("error", err.Error()))
		}

		// A nil trigger channel blocks forever, leaving only the ticker.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-trigger:
			r.logger.Debug("scan triggered by quote movement")
		}
	}
}
