// Package venue defines the adapter contract between platform API clients and
// the detection engine. An adapter turns one venue's market listing into
// normalized snapshots; everything venue-specific (pagination, price units,
// token plumbing) stays behind it.
package venue

import (
	"context"

	"github.com/dkelsey/arbscan/internal/domain"
)

// Result is one venue's contribution to a scan cycle.
type Result struct {
	Snapshots []domain.MarketSnapshot
	// Dropped counts raw records that could not be normalized (missing
	// question, unparseable prices, wrong outcome shape). Dropped records
	// are accounted for but never fail the fetch.
	Dropped int
}

// Adapter fetches and normalizes the current market set of one venue.
type Adapter interface {
	Venue() domain.Venue
	Fetch(ctx context.Context) (Result, error)
}
