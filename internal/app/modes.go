package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dkelsey/arbscan/internal/scan"
	"github.com/dkelsey/arbscan/internal/venue/polymarket"
)

// maxWatchAssets bounds how many outcome tokens watch mode subscribes to over
// the WebSocket. One market contributes two tokens.
const maxWatchAssets = 200

// ScanMode runs a single detection cycle and returns.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")

	rec, err := deps.Scanner.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("scan mode: %w", err)
	}

	for _, opp := range rec.Opportunities {
		a.logger.InfoContext(ctx, "opportunity",
			slog.String("kind", string(opp.Kind)),
			slog.Float64("profit_percent", opp.ProfitPercent),
			slog.String("question", opp.QuestionSummary),
		)
	}
	a.logger.InfoContext(ctx, "scan finished",
		slog.String("scan_id", rec.ID),
		slog.Int("considered", rec.Summary.SnapshotsConsidered),
		slog.Int("skipped", rec.Summary.SnapshotsSkipped),
		slog.Int("opportunities", len(rec.Opportunities)),
	)
	return nil
}

// WatchMode runs detection cycles on an interval until the context is
// cancelled. When a Polymarket WebSocket host is configured, live best-ask
// movement triggers an immediate extra cycle between ticks.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting watch mode",
		slog.Duration("interval", a.cfg.Scan.Interval.Duration))

	g, ctx := errgroup.WithContext(ctx)

	if deps.Metrics != nil {
		g.Go(func() error {
			return deps.Metrics.Serve(ctx, a.cfg.Metrics.Addr, a.logger)
		})
	}

	var trigger chan struct{}
	if a.cfg.Polymarket.WsHost != "" {
		trigger = make(chan struct{}, 1)
		if err := a.startQuoteFeed(ctx, deps, trigger); err != nil {
			a.logger.WarnContext(ctx, "quote feed unavailable, falling back to interval-only rescans",
				slog.String("error", err.Error()))
			trigger = nil
		}
	}

	runner := scan.NewRunner(deps.Scanner, a.cfg.Scan.Interval.Duration, a.logger)
	g.Go(func() error {
		return runner.Run(ctx, trigger)
	})

	return g.Wait()
}

// startQuoteFeed connects the Polymarket book WebSocket and turns best-ask
// changes into rescan triggers. The send is non-blocking: a burst of updates
// during a running cycle collapses into one pending trigger.
func (a *App) startQuoteFeed(ctx context.Context, deps *Dependencies, trigger chan<- struct{}) error {
	assetIDs, err := deps.Polymarket.WatchAssets(ctx, maxWatchAssets)
	if err != nil {
		return err
	}
	if len(assetIDs) == 0 {
		return fmt.Errorf("no open markets to watch")
	}

	feed := polymarket.NewQuoteFeed(a.cfg.Polymarket.WsHost)
	if err := feed.Connect(ctx); err != nil {
		return err
	}
	a.closers = append(a.closers, func() { _ = feed.Close() })

	if err := feed.Subscribe(assetIDs); err != nil {
		return err
	}
	feed.OnAskUpdate(func(string, float64, bool) {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})

	a.logger.InfoContext(ctx, "quote feed connected",
		slog.Int("assets", len(assetIDs)))
	return nil
}
