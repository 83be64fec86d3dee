package polymarket

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dkelsey/arbscan/internal/domain"
	"github.com/dkelsey/arbscan/internal/venue"
)

// bookConcurrency bounds parallel CLOB book requests per fetch. The CLOB API
// rate-limits aggressively above ~10 concurrent readers.
const bookConcurrency = 8

// MarketLister lists the current open market set.
type MarketLister interface {
	ListOpenMarkets(ctx context.Context, maxMarkets int) ([]APIMarket, error)
}

// BookSource reads one outcome token's orderbook.
type BookSource interface {
	GetBook(ctx context.Context, tokenID string) (APIBook, error)
}

// Adapter normalizes Polymarket's Gamma market listing plus per-token CLOB
// books into market snapshots.
type Adapter struct {
	gamma      MarketLister
	clob       BookSource
	maxMarkets int
	logger     *slog.Logger
}

// NewAdapter creates a Polymarket adapter. maxMarkets bounds the listing,
// zero means unbounded.
func NewAdapter(gamma MarketLister, clob BookSource, maxMarkets int, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		gamma:      gamma,
		clob:       clob,
		maxMarkets: maxMarkets,
		logger:     logger.With(slog.String("component", "polymarket")),
	}
}

// Venue implements venue.Adapter.
func (a *Adapter) Venue() domain.Venue { return domain.VenuePolymarket }

// Fetch lists open binary markets and resolves each side's best ask from the
// CLOB book. Markets that fail normalization are counted as dropped; a book
// fetch error drops that market rather than failing the cycle.
func (a *Adapter) Fetch(ctx context.Context) (venue.Result, error) {
	markets, err := a.gamma.ListOpenMarkets(ctx, a.maxMarkets)
	if err != nil {
		return venue.Result{}, fmt.Errorf("polymarket: fetch: %w", err)
	}

	type candidate struct {
		market APIMarket
		tokens [2]string
	}
	var res venue.Result
	cands := make([]candidate, 0, len(markets))
	for _, m := range markets {
		tokens, ok := m.TokenIDs()
		if m.Question == "" || m.Closed || !bool(m.Active) || !m.Binary() || !ok {
			res.Dropped++
			continue
		}
		cands = append(cands, candidate{market: m, tokens: tokens})
	}

	snaps := make([]*domain.MarketSnapshot, len(cands))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bookConcurrency)
	for i, c := range cands {
		i, c := i, c
		g.Go(func() error {
			snap, err := a.snapshot(gctx, c.market, c.tokens)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				a.logger.Debug("dropping market",
					slog.String("market_id", c.market.ID),
					slog.String("error", err.Error()))
				return nil
			}
			snaps[i] = snap
			return nil
		})
	}
	// Workers swallow per-market errors; Wait only surfaces ctx cancellation.
	if err := g.Wait(); err != nil {
		return venue.Result{}, fmt.Errorf("polymarket: fetch: %w", err)
	}

	for _, snap := range snaps {
		if snap == nil {
			res.Dropped++
			continue
		}
		res.Snapshots = append(res.Snapshots, *snap)
	}
	a.logger.Info("fetched markets",
		slog.Int("snapshots", len(res.Snapshots)),
		slog.Int("dropped", res.Dropped))
	return res, nil
}

// WatchAssets returns outcome token IDs from the current open market set, up
// to maxAssets, for WebSocket book subscriptions.
func (a *Adapter) WatchAssets(ctx context.Context, maxAssets int) ([]string, error) {
	markets, err := a.gamma.ListOpenMarkets(ctx, a.maxMarkets)
	if err != nil {
		return nil, fmt.Errorf("polymarket: watch assets: %w", err)
	}

	seen := make(map[string]bool)
	var ids []string
	for _, m := range markets {
		tokens, ok := m.TokenIDs()
		if m.Question == "" || m.Closed || !bool(m.Active) || !m.Binary() || !ok {
			continue
		}
		for _, tid := range tokens {
			if tid == "" || seen[tid] {
				continue
			}
			seen[tid] = true
			ids = append(ids, tid)
			if maxAssets > 0 && len(ids) >= maxAssets {
				return ids, nil
			}
		}
	}
	return ids, nil
}

func (a *Adapter) snapshot(ctx context.Context, m APIMarket, tokens [2]string) (*domain.MarketSnapshot, error) {
	snap := &domain.MarketSnapshot{
		ID:       m.ID,
		Venue:    domain.VenuePolymarket,
		Question: m.Question,
		Volume:   m.VolumeUSD(),
	}

	yesBook, err := a.clob.GetBook(ctx, tokens[0])
	if err != nil {
		return nil, fmt.Errorf("yes book: %w", err)
	}
	if ask, ok := yesBook.BestAsk(); ok {
		snap.YesAsk = domain.Price(ask)
	}

	noBook, err := a.clob.GetBook(ctx, tokens[1])
	if err != nil {
		return nil, fmt.Errorf("no book: %w", err)
	}
	if ask, ok := noBook.BestAsk(); ok {
		snap.NoAsk = domain.Price(ask)
	}

	return snap, nil
}
