package kalshi

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dkelsey/arbscan/internal/domain"
	"github.com/dkelsey/arbscan/internal/venue"
)

// MarketLister lists the current open market set.
type MarketLister interface {
	ListOpenMarkets(ctx context.Context, maxMarkets int) ([]APIMarket, error)
}

// Adapter normalizes Kalshi's cent-denominated market listing into market
// snapshots. Kalshi inlines top-of-book asks in the listing itself, so no
// per-market book calls are needed.
type Adapter struct {
	client     MarketLister
	maxMarkets int
	logger     *slog.Logger
}

// NewAdapter creates a Kalshi adapter. maxMarkets bounds the listing, zero
// means unbounded.
func NewAdapter(client MarketLister, maxMarkets int, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		client:     client,
		maxMarkets: maxMarkets,
		logger:     logger.With(slog.String("component", "kalshi")),
	}
}

// Venue implements venue.Adapter.
func (a *Adapter) Venue() domain.Venue { return domain.VenueKalshi }

// Fetch lists open markets and converts cent prices to probabilities. A zero
// ask means no resting offers on that side and maps to an absent price, never
// to 0.00.
func (a *Adapter) Fetch(ctx context.Context) (venue.Result, error) {
	markets, err := a.client.ListOpenMarkets(ctx, a.maxMarkets)
	if err != nil {
		return venue.Result{}, fmt.Errorf("kalshi: fetch: %w", err)
	}

	var res venue.Result
	for _, m := range markets {
		snap, ok := normalize(m)
		if !ok {
			res.Dropped++
			continue
		}
		res.Snapshots = append(res.Snapshots, snap)
	}
	a.logger.Info("fetched markets",
		slog.Int("snapshots", len(res.Snapshots)),
		slog.Int("dropped", res.Dropped))
	return res, nil
}

// normalize converts one listing row to a snapshot. The second return is
// false for rows outside the scanner's domain.
func normalize(m APIMarket) (domain.MarketSnapshot, bool) {
	if m.Ticker == "" || m.Status != "open" || m.Result != "" {
		return domain.MarketSnapshot{}, false
	}
	question := m.Title
	if m.Subtitle != "" {
		question += " " + m.Subtitle
	}
	if strings.TrimSpace(question) == "" {
		return domain.MarketSnapshot{}, false
	}

	snap := domain.MarketSnapshot{
		ID:       m.Ticker,
		Venue:    domain.VenueKalshi,
		Question: question,
		Volume:   float64(m.Volume),
	}
	if p, ok := centsToProb(m.YesAsk); ok {
		snap.YesAsk = domain.Price(p)
	}
	if p, ok := centsToProb(m.NoAsk); ok {
		snap.NoAsk = domain.Price(p)
	}
	return snap, true
}

// centsToProb converts a cent price (1-99) to a probability. Zero and
// out-of-range values mean no quote.
func centsToProb(cents int64) (float64, bool) {
	if cents <= 0 || cents > 100 {
		return 0, false
	}
	return float64(cents) / 100, true
}
