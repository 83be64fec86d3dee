package domain

import "time"

// ScanSummary reports what a scan cycle looked at, for observability. A
// skipped snapshot is one the engine excluded (incomplete book) rather than
// one that errored; the engine never fails on a single bad record.
type ScanSummary struct {
	SnapshotsConsidered int
	SnapshotsSkipped    int
	MatchesEvaluated    int
}

// ScanRecord is one completed scan cycle: its ranked opportunities plus the
// summary counters and the per-venue fetch accounting. This is what gets
// persisted, cached, and archived; the engine itself retains nothing between
// cycles.
type ScanRecord struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    time.Time
	Opportunities []Opportunity
	Summary       ScanSummary
	// RecordsDropped counts raw venue records that failed normalization,
	// per venue. Dropped records are not errors; they are out of domain.
	RecordsDropped map[Venue]int
}

// MonetaryOpportunities returns only the kinds that carry a profit figure,
// preserving order.
func (r *ScanRecord) MonetaryOpportunities() []Opportunity {
	out := make([]Opportunity, 0, len(r.Opportunities))
	for _, o := range r.Opportunities {
		if o.Kind.Monetary() {
			out = append(out, o)
		}
	}
	return out
}

// InformationalOpportunities returns the non-monetary flags, preserving order.
func (r *ScanRecord) InformationalOpportunities() []Opportunity {
	out := make([]Opportunity, 0, len(r.Opportunities))
	for _, o := range r.Opportunities {
		if !o.Kind.Monetary() {
			out = append(out, o)
		}
	}
	return out
}
