// Package export renders scan results into flat files for download and
// archival.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/dkelsey/arbscan/internal/domain"
)

// csvHeader is the fixed column set of a scan export. Kind-specific detail
// is flattened into the generic columns; absent values render as empty
// strings, never as zeros.
var csvHeader = []string{
	"kind", "profit_percent", "question", "venues", "markets",
	"yes_ask", "no_ask", "total_cost", "match_score", "volume", "notes",
}

// CSV renders the scan's ranked opportunities as a CSV document, one row per
// opportunity, in ranking order.
func CSV(rec *domain.ScanRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("export: write header: %w", err)
	}
	for i := range rec.Opportunities {
		if err := w.Write(row(&rec.Opportunities[i])); err != nil {
			return nil, fmt.Errorf("export: write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: flush: %w", err)
	}
	return buf.Bytes(), nil
}

func row(opp *domain.Opportunity) []string {
	venues := make([]string, 0, len(opp.Snapshots))
	refs := make([]string, 0, len(opp.Snapshots))
	for i := range opp.Snapshots {
		venues = append(venues, string(opp.Snapshots[i].Venue))
		refs = append(refs, opp.Snapshots[i].ID)
	}

	profit := ""
	if opp.Kind.Monetary() {
		profit = formatFloat(opp.ProfitPercent)
	}

	yesAsk, noAsk, totalCost, matchScore, notes := "", "", "", "", ""
	switch {
	case opp.Spread != nil:
		yesAsk = formatFloat(opp.Spread.YesAsk)
		noAsk = formatFloat(opp.Spread.NoAsk)
		totalCost = formatFloat(opp.Spread.TotalCost)
	case opp.Combinatorial != nil:
		totalCost = formatFloat(opp.Combinatorial.TotalCost)
		matchScore = strconv.Itoa(opp.Combinatorial.MatchScore)
		notes = "linked: " + opp.Combinatorial.LinkedQuestion
	case opp.NearCertain != nil:
		notes = fmt.Sprintf("cheap side %s at %s (implied %s)",
			opp.NearCertain.CheapSide,
			formatFloat(opp.NearCertain.CheapPrice),
			formatFloat(opp.NearCertain.ImpliedProbability))
	case opp.Ambiguous != nil:
		notes = "keywords: " + strings.Join(opp.Ambiguous.Keywords, ", ")
	case opp.CrossVenue != nil:
		yesAsk = formatFloat(opp.CrossVenue.YesAskA)
		noAsk = formatFloat(opp.CrossVenue.YesAskB)
		matchScore = strconv.Itoa(opp.CrossVenue.MatchScore)
		notes = "cheaper on " + string(opp.CrossVenue.CheaperVenue)
	}

	return []string{
		string(opp.Kind),
		profit,
		opp.QuestionSummary,
		strings.Join(venues, "|"),
		strings.Join(refs, "|"),
		yesAsk, noAsk, totalCost, matchScore,
		formatFloat(opp.Volume()),
		notes,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
