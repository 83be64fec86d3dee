package engine

import (
	"github.com/dkelsey/arbscan/internal/domain"
)

// NearCertain flags a single-sided mispricing: when one outcome's ask is at
// or below 1-certaintyThreshold, the market is pricing the opposite outcome
// as near-certain, and the cheap side's implied profit is reported.
//
// This is directional risk exposure, not risk-free profit. Unlike a spread,
// nothing guarantees the market resolves as implied; the flag only says the
// price is far from an outcome the market itself treats as settled. When
// both sides are that cheap (a deeply broken book) the cheaper side is
// reported.
func NearCertain(snap *domain.MarketSnapshot, certaintyThreshold float64) *domain.Opportunity {
	if !snap.Complete() {
		return nil
	}
	cutoff := 1 - certaintyThreshold

	side := ""
	price := 0.0
	switch {
	case *snap.YesAsk <= cutoff && *snap.NoAsk <= cutoff:
		side, price = "yes", *snap.YesAsk
		if *snap.NoAsk < price {
			side, price = "no", *snap.NoAsk
		}
	case *snap.YesAsk <= cutoff:
		side, price = "yes", *snap.YesAsk
	case *snap.NoAsk <= cutoff:
		side, price = "no", *snap.NoAsk
	default:
		return nil
	}

	return &domain.Opportunity{
		Kind:            domain.KindNearCertain,
		ProfitPercent:   (1 - price) * 100,
		QuestionSummary: snap.Question,
		Snapshots:       []domain.MarketSnapshot{*snap},
		NearCertain: &domain.NearCertainDetail{
			CheapSide:          side,
			CheapPrice:         price,
			ImpliedProbability: 1 - price,
		},
	}
}
