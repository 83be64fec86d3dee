// Package scan runs detection cycles: fetch every venue, run the engine,
// then fan the finished record out to the store, cache, archive, and
// notification channels.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dkelsey/arbscan/internal/domain"
	"github.com/dkelsey/arbscan/internal/engine"
	"github.com/dkelsey/arbscan/internal/metrics"
	"github.com/dkelsey/arbscan/internal/notify"
	"github.com/dkelsey/arbscan/internal/venue"
)

// Archiver uploads a durable export of one scan. Implemented by the S3
// archiver; nil disables archival.
type Archiver interface {
	ArchiveScan(ctx context.Context, rec *domain.ScanRecord) (string, error)
}

// Scanner runs one detection cycle end to end. Every collaborator except the
// adapters and the engine is optional; a nil collaborator disables that
// fan-out leg.
type Scanner struct {
	adapters []venue.Adapter
	engine   *engine.Engine

	store    domain.ScanStore
	cache    domain.ResultCache
	archiver Archiver
	notifier *notify.Notifier
	metrics  *metrics.Metrics

	logger *slog.Logger
}

// Options carries the optional fan-out collaborators.
type Options struct {
	Store    domain.ScanStore
	Cache    domain.ResultCache
	Archiver Archiver
	Notifier *notify.Notifier
	Metrics  *metrics.Metrics
}

// New creates a Scanner over the given venue adapters and engine.
func New(adapters []venue.Adapter, eng *engine.Engine, opts Options, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		adapters: adapters,
		engine:   eng,
		store:    opts.Store,
		cache:    opts.Cache,
		archiver: opts.Archiver,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		logger:   logger.With(slog.String("component", "scanner")),
	}
}

// RunOnce executes one full scan cycle and returns the completed record.
//
// Venue fetches run concurrently; a failing venue is logged and skipped so
// one platform outage degrades coverage instead of killing the cycle. The
// cycle only fails when every venue fails. Fan-out errors (store, cache,
// archive, notify) are logged, never fatal: the scan's findings are already
// in the returned record.
func (s *Scanner) RunOnce(ctx context.Context) (domain.ScanRecord, error) {
	started := time.Now().UTC()

	results := make([]*venue.Result, len(s.adapters))
	g, gctx := errgroup.WithContext(ctx)
	for i, ad := range s.adapters {
		i, ad := i, ad
		g.Go(func() error {
			res, err := ad.Fetch(gctx)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.Error("venue fetch failed",
					slog.String("venue", string(ad.Venue())),
					slog.String("error", err.Error()))
				return nil
			}
			results[i] = &res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.failScan(ctx, err)
		return domain.ScanRecord{}, fmt.Errorf("scan: fetch: %w", err)
	}

	var snapshots []domain.MarketSnapshot
	dropped := make(map[domain.Venue]int, len(s.adapters))
	fetched := 0
	for i, res := range results {
		if res == nil {
			continue
		}
		fetched++
		snapshots = append(snapshots, res.Snapshots...)
		dropped[s.adapters[i].Venue()] = res.Dropped
		if s.metrics != nil {
			s.metrics.SnapshotsFetched.
				WithLabelValues(string(s.adapters[i].Venue())).
				Set(float64(len(res.Snapshots)))
		}
	}
	if fetched == 0 && len(s.adapters) > 0 {
		err := fmt.Errorf("scan: every venue fetch failed")
		s.failScan(ctx, err)
		return domain.ScanRecord{}, err
	}

	run := s.engine.Run(ctx, snapshots)
	if run.Incomplete {
		s.failScan(ctx, ctx.Err())
		return domain.ScanRecord{}, fmt.Errorf("scan: %w", ctx.Err())
	}

	rec := domain.ScanRecord{
		ID:             uuid.NewString(),
		StartedAt:      started,
		FinishedAt:     time.Now().UTC(),
		Opportunities:  run.Opportunities,
		Summary:        run.Summary,
		RecordsDropped: dropped,
	}

	s.fanOut(ctx, &rec)

	s.logger.Info("scan complete",
		slog.String("scan_id", rec.ID),
		slog.Int("snapshots", run.Summary.SnapshotsConsidered),
		slog.Int("opportunities", len(rec.Opportunities)),
		slog.Duration("elapsed", rec.FinishedAt.Sub(rec.StartedAt)))
	return rec, nil
}

func (s *Scanner) failScan(ctx context.Context, cause error) {
	if s.metrics != nil {
		s.metrics.ScanFailures.Inc()
	}
	if s.notifier != nil && cause != nil && ctx.Err() == nil {
		if err := s.notifier.Notify(ctx, notify.EventScanFailed,
			"scan failed", cause.Error()); err != nil {
			s.logger.Error("notify failed", slog.String("error", err.Error()))
		}
	}
}

// fanOut delivers the finished record to every configured consumer.
func (s *Scanner) fanOut(ctx context.Context, rec *domain.ScanRecord) {
	if s.metrics != nil {
		s.metrics.ObserveScan(rec)
	}
	if s.store != nil {
		if err := s.store.Insert(ctx, *rec); err != nil {
			s.logger.Error("persist scan failed",
				slog.String("scan_id", rec.ID),
				slog.String("error", err.Error()))
		}
	}
	if s.cache != nil {
		if err := s.cache.SetLatest(ctx, *rec); err != nil {
			s.logger.Error("cache scan failed",
				slog.String("scan_id", rec.ID),
				slog.String("error", err.Error()))
		}
	}
	if s.archiver != nil {
		path, err := s.archiver.ArchiveScan(ctx, rec)
		if err != nil {
			s.logger.Error("archive scan failed",
				slog.String("scan_id", rec.ID),
				slog.String("error", err.Error()))
		} else {
			s.logger.Debug("scan archived", slog.String("path", path))
		}
	}
	if s.notifier != nil && len(rec.Opportunities) > 0 {
		event := notify.EventInformational
		if len(rec.MonetaryOpportunities()) > 0 {
			event = notify.EventMonetary
		}
		title, message := notify.FormatScan(rec)
		if err := s.notifier.Notify(ctx, event, title, message); err != nil {
			s.logger.Error("notify failed",
				slog.String("scan_id", rec.ID),
				slog.String("error", err.Error()))
		}
	}
}
