package notify

import (
	"fmt"
	"strings"

	"github.com/dkelsey/arbscan/internal/domain"
)

// maxAlertLines caps how many opportunities one alert lists; the full set is
// always in the store and the archive.
const maxAlertLines = 10

// FormatScan builds the alert title and body for a completed scan. The body
// lists monetary opportunities in ranking order, then a one-line count of
// informational flags.
func FormatScan(rec *domain.ScanRecord) (title, message string) {
	monetary := rec.MonetaryOpportunities()
	flags := rec.InformationalOpportunities()

	title = fmt.Sprintf("%d opportunities (%d flags)", len(monetary), len(flags))

	var b strings.Builder
	for i, opp := range monetary {
		if i == maxAlertLines {
			fmt.Fprintf(&b, "... and %d more\n", len(monetary)-maxAlertLines)
			break
		}
		fmt.Fprintf(&b, "%s %.2f%% - %s\n", kindLabel(opp.Kind), opp.ProfitPercent, opp.QuestionSummary)
	}
	if len(flags) > 0 {
		fmt.Fprintf(&b, "%d markets flagged for ambiguous resolution\n", len(flags))
	}
	fmt.Fprintf(&b, "scanned %d markets, skipped %d",
		rec.Summary.SnapshotsConsidered, rec.Summary.SnapshotsSkipped)

	return title, b.String()
}

func kindLabel(kind domain.OpportunityKind) string {
	switch kind {
	case domain.KindSpread:
		return "[spread]"
	case domain.KindCombinatorial:
		return "[combo]"
	case domain.KindNearCertain:
		return "[near-certain]"
	case domain.KindCrossVenue:
		return "[cross-venue]"
	default:
		return "[" + string(kind) + "]"
	}
}
