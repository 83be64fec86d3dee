package engine

import (
	"github.com/dkelsey/arbscan/internal/domain"
)

// Spread detects the classic single-market Dutch book: both complementary
// outcomes of one binary market can be bought for less than the guaranteed
// $1 payout. This is the only classifier that needs no matching step -- the
// two sides belong to the same market and must sum to exactly 1 at
// resolution, so an ask-side sum below that bound is structural arbitrage,
// not a probabilistic signal.
//
// It returns nil for incomplete snapshots and for sums at or above
// 1-threshold; sub-threshold results are dropped, never clamped.
func Spread(snap *domain.MarketSnapshot, threshold float64) *domain.Opportunity {
	total, ok := snap.TotalCost()
	if !ok {
		return nil
	}
	if total >= 1-threshold {
		return nil
	}
	return &domain.Opportunity{
		Kind:            domain.KindSpread,
		ProfitPercent:   (1 - total) * 100,
		QuestionSummary: snap.Question,
		Snapshots:       []domain.MarketSnapshot{*snap},
		Spread: &domain.SpreadDetail{
			YesAsk:    *snap.YesAsk,
			NoAsk:     *snap.NoAsk,
			TotalCost: total,
		},
	}
}
