package engine

import (
	"fmt"
	"strings"

	"github.com/dkelsey/arbscan/internal/domain"
)

// defaultMaxCandidates bounds how many match candidates the combinatorial
// and cross-venue classifiers consider per base market.
const defaultMaxCandidates = 5

// Config holds every classifier threshold and toggle for one engine
// instance. Thresholds are validated eagerly by New: silently clamping an
// out-of-domain threshold would change the economic meaning of the results.
type Config struct {
	// SpreadThreshold is the minimum structural profit fraction for a
	// single-market spread, in [0,1). A spread opportunity is emitted when
	// yesAsk+noAsk < 1-SpreadThreshold.
	SpreadThreshold float64
	// ComboThreshold is the profit threshold for cross-market pairings, in [0,1).
	ComboThreshold float64
	// ComboMatchThreshold is the minimum question similarity for a
	// cross-market pairing, in [0,100].
	ComboMatchThreshold int
	// CertaintyThreshold interprets a side priced at or below 1-threshold as
	// a near-certainty signal for the opposite side, in (0.5,1).
	CertaintyThreshold float64
	// AmbiguityKeywords are matched case-insensitively as substrings of the
	// question text. Order is preserved in the emitted flag.
	AmbiguityKeywords []string
	// CrossVenueThreshold is the minimum YES-price gap between venues, in [0,1).
	CrossVenueThreshold float64
	// CrossVenueMatchThreshold is the minimum similarity for a cross-venue
	// pairing, in [0,100]. Cross-venue identity is never exact, so this is
	// normally the strictest match threshold of all.
	CrossVenueMatchThreshold int
	// EnabledKinds selects which classifiers run. Empty enables all.
	EnabledKinds []domain.OpportunityKind
	// MaxMatchCandidates caps candidates per base market for the matching
	// classifiers. Zero means the default.
	MaxMatchCandidates int
}

// Defaults returns a Config with the thresholds the scanner ships with.
func Defaults() Config {
	return Config{
		SpreadThreshold:          0.02,
		ComboThreshold:           0.05,
		ComboMatchThreshold:      75,
		CertaintyThreshold:       0.95,
		AmbiguityKeywords:        []string{"if ", "unless", "and ", " or ", "both", "either"},
		CrossVenueThreshold:      0.05,
		CrossVenueMatchThreshold: 85,
		MaxMatchCandidates:       defaultMaxCandidates,
	}
}

// Validate checks every threshold against its valid domain and returns a
// combined error describing every problem found.
func (c Config) Validate() error {
	var errs []string

	if c.SpreadThreshold < 0 || c.SpreadThreshold >= 1 {
		errs = append(errs, fmt.Sprintf("spread_threshold must be in [0,1), got %g", c.SpreadThreshold))
	}
	if c.ComboThreshold < 0 || c.ComboThreshold >= 1 {
		errs = append(errs, fmt.Sprintf("combo_threshold must be in [0,1), got %g", c.ComboThreshold))
	}
	if c.ComboMatchThreshold < 0 || c.ComboMatchThreshold > 100 {
		errs = append(errs, fmt.Sprintf("combo_match_threshold must be in [0,100], got %d", c.ComboMatchThreshold))
	}
	if c.CertaintyThreshold <= 0.5 || c.CertaintyThreshold >= 1 {
		errs = append(errs, fmt.Sprintf("certainty_threshold must be in (0.5,1), got %g", c.CertaintyThreshold))
	}
	if c.CrossVenueThreshold < 0 || c.CrossVenueThreshold >= 1 {
		errs = append(errs, fmt.Sprintf("cross_venue_threshold must be in [0,1), got %g", c.CrossVenueThreshold))
	}
	if c.CrossVenueMatchThreshold < 0 || c.CrossVenueMatchThreshold > 100 {
		errs = append(errs, fmt.Sprintf("cross_venue_match_threshold must be in [0,100], got %d", c.CrossVenueMatchThreshold))
	}
	if c.MaxMatchCandidates < 0 {
		errs = append(errs, fmt.Sprintf("max_match_candidates must be >= 0, got %d", c.MaxMatchCandidates))
	}

	known := make(map[domain.OpportunityKind]bool, 5)
	for _, k := range domain.AllKinds() {
		known[k] = true
	}
	for _, k := range c.EnabledKinds {
		if !known[k] {
			errs = append(errs, fmt.Sprintf("unknown opportunity kind %q", k))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", domain.ErrInvalidConfig, strings.Join(errs, "\n  - "))
	}
	return nil
}

// enabled reports whether the classifier for the given kind should run.
func (c Config) enabled(kind domain.OpportunityKind) bool {
	if len(c.EnabledKinds) == 0 {
		return true
	}
	for _, k := range c.EnabledKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// maxCandidates resolves the candidate cap, applying the default when unset.
func (c Config) maxCandidates() int {
	if c.MaxMatchCandidates > 0 {
		return c.MaxMatchCandidates
	}
	return defaultMaxCandidates
}
