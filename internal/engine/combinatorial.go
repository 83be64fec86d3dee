package engine

import (
	"github.com/dkelsey/arbscan/internal/domain"
	"github.com/dkelsey/arbscan/internal/match"
)

// Combinatorial screens for cross-market pairings: a base market and a
// textually similar one whose cross pairing (YES of one plus NO of the
// other) can be bought below $1.
//
// Textual similarity is a proxy for logical relatedness, nothing more. Two
// markets about different elections can clear the match threshold on generic
// phrasing alone, so every emitted opportunity carries its raw match score
// and is a candidate for human review, not a proven linkage.
//
// The second return value is the number of match candidates evaluated, for
// the scan summary.
func Combinatorial(base *domain.MarketSnapshot, all []domain.MarketSnapshot, matchThreshold int, profitThreshold float64, topN int) ([]domain.Opportunity, int) {
	if !base.Complete() {
		return nil, 0
	}

	cands := match.Rank(base, all, topN)

	var opps []domain.Opportunity
	for _, cand := range cands {
		if cand.Score < matchThreshold {
			// Candidates are ordered best first; the rest score lower.
			break
		}
		linked := cand.B
		if !linked.Complete() {
			continue
		}

		// Test both cross pairings against the $1 bound.
		costYesNo := *base.YesAsk + *linked.NoAsk
		costNoYes := *base.NoAsk + *linked.YesAsk
		best := costYesNo
		if costNoYes < best {
			best = costNoYes
		}
		if best >= 1-profitThreshold {
			continue
		}

		opps = append(opps, domain.Opportunity{
			Kind:            domain.KindCombinatorial,
			ProfitPercent:   (1 - best) * 100,
			QuestionSummary: base.Question,
			Snapshots:       []domain.MarketSnapshot{*base, *linked},
			Combinatorial: &domain.CombinatorialDetail{
				BaseQuestion:   base.Question,
				LinkedQuestion: linked.Question,
				MatchScore:     cand.Score,
				TotalCost:      best,
			},
		})
	}
	return opps, len(cands)
}
