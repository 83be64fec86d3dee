package domain

// OpportunityKind discriminates the variant payload of an Opportunity.
type OpportunityKind string

const (
	// KindSpread: YES ask + NO ask of a single market sums below $1.
	KindSpread OpportunityKind = "spread"
	// KindCombinatorial: cross pairing of two textually linked markets sums
	// below $1. Heuristic; requires manual confirmation of the linkage.
	KindCombinatorial OpportunityKind = "combinatorial"
	// KindNearCertain: one side priced as a long shot, flagging the other
	// side as near-certain. Directional exposure, not risk-free.
	KindNearCertain OpportunityKind = "near_certain"
	// KindAmbiguous: question text contains resolution-risk keywords.
	// Informational only; carries no profit figure.
	KindAmbiguous OpportunityKind = "ambiguous_resolution"
	// KindCrossVenue: the same event priced differently on two venues.
	KindCrossVenue OpportunityKind = "cross_venue"
)

// Monetary reports whether opportunities of this kind carry a profit figure.
// Informational kinds are never ranked against monetary ones.
func (k OpportunityKind) Monetary() bool { return k != KindAmbiguous }

// AllKinds lists every opportunity kind in a fixed order.
func AllKinds() []OpportunityKind {
	return []OpportunityKind{
		KindSpread, KindCombinatorial, KindNearCertain, KindAmbiguous, KindCrossVenue,
	}
}

// SpreadDetail carries the price pair and total cost of a single-market
// spread opportunity.
type SpreadDetail struct {
	YesAsk    float64
	NoAsk     float64
	TotalCost float64
}

// CombinatorialDetail links a base market to a textually similar one, with
// the match score exposed so a human can judge whether the pairing is real.
type CombinatorialDetail struct {
	BaseQuestion   string
	LinkedQuestion string
	MatchScore     int
	TotalCost      float64
}

// NearCertainDetail names the cheap side and the probability the market
// implies for the opposite outcome.
type NearCertainDetail struct {
	CheapSide          string // "yes" or "no"
	CheapPrice         float64
	ImpliedProbability float64 // probability of the opposite outcome
}

// AmbiguousDetail lists the ambiguity keywords found in the question text.
type AmbiguousDetail struct {
	Keywords []string
}

// CrossVenueDetail records both venues' YES prices, which one is cheaper,
// and the match score behind the pairing.
type CrossVenueDetail struct {
	VenueA       Venue
	VenueB       Venue
	YesAskA      float64
	YesAskB      float64
	CheaperVenue Venue
	MatchScore   int
}

// Opportunity is a tagged variant over the five classifier kinds. Kind
// selects which detail pointer is populated; exactly one is non-nil.
//
// ProfitPercent is (1 - totalCost) * 100 (or the venue spread analog) and is
// never negative on a surfaced opportunity: sub-threshold results are dropped
// by the classifiers, not clamped. Informational kinds carry zero.
type Opportunity struct {
	Kind            OpportunityKind
	ProfitPercent   float64
	QuestionSummary string
	Snapshots       []MarketSnapshot // the 1-2 snapshots that produced it

	Spread        *SpreadDetail
	Combinatorial *CombinatorialDetail
	NearCertain   *NearCertainDetail
	Ambiguous     *AmbiguousDetail
	CrossVenue    *CrossVenueDetail
}

// Volume returns the summed volume of the source snapshots. Display and
// ranking tie-break only, never correctness.
func (o *Opportunity) Volume() float64 {
	var v float64
	for i := range o.Snapshots {
		v += o.Snapshots[i].Volume
	}
	return v
}
