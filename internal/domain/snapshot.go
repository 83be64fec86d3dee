package domain

// Venue identifies the prediction-market platform a snapshot came from.
type Venue string

const (
	VenuePolymarket Venue = "polymarket"
	VenueKalshi     Venue = "kalshi"
)

// MarketSnapshot is the normalized, point-in-time view of one binary market:
// the question text plus the best ask price for each outcome. A nil YesAsk or
// NoAsk means that side of the book had no liquidity at capture time; it is
// never the same thing as a zero price.
//
// Snapshots are built fresh by a venue adapter at the start of each scan and
// are treated as immutable for the rest of the cycle.
type MarketSnapshot struct {
	ID       string
	Venue    Venue
	Question string
	YesAsk   *float64
	NoAsk    *float64
	Volume   float64
}

// Complete reports whether both sides of the book are quoted. Classifiers
// that price the YES+NO pair only operate on complete snapshots.
func (s *MarketSnapshot) Complete() bool {
	return s.YesAsk != nil && s.NoAsk != nil
}

// TotalCost returns YesAsk+NoAsk. The second return is false when either
// side is unquoted; the sum is never defaulted to zero.
func (s *MarketSnapshot) TotalCost() (float64, bool) {
	if !s.Complete() {
		return 0, false
	}
	return *s.YesAsk + *s.NoAsk, true
}

// Ref is the venue-qualified identity of the snapshot, used for dedup keys
// and cross-venue display.
func (s *MarketSnapshot) Ref() string {
	return string(s.Venue) + ":" + s.ID
}

// Price returns a *float64 for literal prices in tests and adapters.
func Price(v float64) *float64 { return &v }
