package engine

import (
	"math"

	"github.com/dkelsey/arbscan/internal/domain"
	"github.com/dkelsey/arbscan/internal/match"
)

// CrossVenue compares the YES price of a market against its best counterpart
// on another venue. Venues model "the same" event with different settlement
// mechanics and fee structures, so identity here is the fuzziest of all the
// classifiers -- the caller gets the raw match score and the per-venue prices
// and has to make the final judgment.
//
// An opportunity is emitted when the best counterpart clears matchThreshold
// and the YES prices differ by more than profitThreshold; the cheaper venue
// is named. The second return value is the number of candidates evaluated.
func CrossVenue(base *domain.MarketSnapshot, all []domain.MarketSnapshot, matchThreshold int, profitThreshold float64, topN int) (*domain.Opportunity, int) {
	if !base.Complete() {
		return nil, 0
	}

	foreign := make([]domain.MarketSnapshot, 0, len(all))
	for i := range all {
		if all[i].Venue != base.Venue {
			foreign = append(foreign, all[i])
		}
	}
	if len(foreign) == 0 {
		return nil, 0
	}

	cands := match.Rank(base, foreign, topN)

	// Best-ranked complete counterpart wins; lower-ranked candidates are
	// not considered even if they happen to show a wider gap.
	for _, cand := range cands {
		if cand.Score < matchThreshold {
			break
		}
		other := cand.B
		if !other.Complete() {
			continue
		}

		gap := math.Abs(*base.YesAsk - *other.YesAsk)
		if gap <= profitThreshold {
			return nil, len(cands)
		}

		cheaper := base.Venue
		if *other.YesAsk < *base.YesAsk {
			cheaper = other.Venue
		}
		return &domain.Opportunity{
			Kind:            domain.KindCrossVenue,
			ProfitPercent:   gap * 100,
			QuestionSummary: base.Question,
			Snapshots:       []domain.MarketSnapshot{*base, *other},
			CrossVenue: &domain.CrossVenueDetail{
				VenueA:       base.Venue,
				VenueB:       other.Venue,
				YesAskA:      *base.YesAsk,
				YesAskB:      *other.YesAsk,
				CheaperVenue: cheaper,
				MatchScore:   cand.Score,
			},
		}, len(cands)
	}
	return nil, len(cands)
}
