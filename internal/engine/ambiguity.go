package engine

import (
	"strings"

	"github.com/dkelsey/arbscan/internal/domain"
)

// Ambiguity flags markets whose question text contains keywords that tend
// to mark conditional or compound resolution criteria ("if", "unless", ...),
// which carry settlement-dispute risk. Keywords are matched as
// case-insensitive substrings in configured order.
//
// The result is informational: it carries no profit figure and is never
// ranked against monetary opportunities.
func Ambiguity(snap *domain.MarketSnapshot, keywords []string) *domain.Opportunity {
	if len(keywords) == 0 {
		return nil
	}
	question := strings.ToLower(snap.Question)

	var matched []string
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(question, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	return &domain.Opportunity{
		Kind:            domain.KindAmbiguous,
		QuestionSummary: snap.Question,
		Snapshots:       []domain.MarketSnapshot{*snap},
		Ambiguous: &domain.AmbiguousDetail{
			Keywords: matched,
		},
	}
}
