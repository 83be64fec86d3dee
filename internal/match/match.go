// Package match scores the textual similarity of market questions and ranks
// candidate pairings. Venues phrase the same real-world event differently
// ("Will X win the election?" vs "X wins 2024 election"), so cross-market and
// cross-venue linking cannot key on identifiers; it has to go through fuzzy
// text similarity.
//
// The score is a deterministic heuristic, not a semantic proof: two unrelated
// questions with generic phrasing can still score above a caller's threshold.
// Every consumer surfaces the raw score so a human can judge the pairing.
// Matching is also not transitive; each pair must clear the threshold on its
// own.
package match

import (
	"sort"
	"strings"
	"unicode"

	"github.com/dkelsey/arbscan/internal/domain"
)

// MaxScore is the similarity score of an exact (case-insensitive) match.
const MaxScore = 100

// Candidate pairs two snapshots from the current scan with their similarity
// score in [0,100]. Both pointers borrow from the scan's snapshot set and
// must not outlive the cycle.
type Candidate struct {
	A, B  *domain.MarketSnapshot
	Score int
}

// Score computes token-multiset similarity between two questions in [0,100].
// It is symmetric, order-insensitive within the question, and returns
// MaxScore for case-insensitive exact matches.
func Score(a, b string) int {
	ta := tokenize(a)
	tb := tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	if equalTokens(ta, tb) {
		return MaxScore
	}

	counts := make(map[string]int, len(ta))
	for _, tok := range ta {
		counts[tok]++
	}
	overlap := 0
	for _, tok := range tb {
		if counts[tok] > 0 {
			counts[tok]--
			overlap++
		}
	}

	// Dice coefficient over token multisets, scaled to 0..100. Integer
	// arithmetic keeps the score exactly reproducible across runs.
	return (2*overlap*MaxScore + (len(ta)+len(tb))/2) / (len(ta) + len(tb))
}

// Rank scores base against every other snapshot in the set and returns the
// candidates ordered best first, at most topN of them. The base snapshot is
// never matched against itself.
//
// Ties on score prefer the candidate with higher volume: the more liquid
// market is more likely the intended real match. That is a heuristic for
// stable ordering, not a correctness guarantee. Remaining ties fall back to
// the venue-qualified ID so the order is fully deterministic.
func Rank(base *domain.MarketSnapshot, all []domain.MarketSnapshot, topN int) []Candidate {
	if topN <= 0 {
		return nil
	}
	cands := make([]Candidate, 0, len(all))
	for i := range all {
		other := &all[i]
		if other.Ref() == base.Ref() {
			continue
		}
		cands = append(cands, Candidate{
			A:     base,
			B:     other,
			Score: Score(base.Question, other.Question),
		})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		if cands[i].B.Volume != cands[j].B.Volume {
			return cands[i].B.Volume > cands[j].B.Volume
		}
		return cands[i].B.Ref() < cands[j].B.Ref()
	})

	if len(cands) > topN {
		cands = cands[:topN]
	}
	return cands
}

// stopwords are filler tokens that carry no event identity. "a" is kept:
// it shows up as a literal name ("Team A", "Category A") often enough that
// dropping it breaks real matches.
var stopwords = map[string]bool{
	"will": true, "the": true, "of": true, "to": true, "in": true,
	"on": true, "for": true, "by": true, "at": true, "be": true,
	"is": true, "an": true, "do": true, "does": true,
}

// tokenize lowercases the question, splits it on any non-alphanumeric rune,
// drops stopwords, and stems trailing plurals, so punctuation, word order,
// and minor inflection ("win" vs "wins") never affect the score. If the
// question is nothing but stopwords the unfiltered tokens are kept instead.
func tokenize(s string) []string {
	raw := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	toks := make([]string, 0, len(raw))
	for _, t := range raw {
		if stopwords[t] {
			continue
		}
		toks = append(toks, stem(t))
	}
	if len(toks) == 0 {
		return raw
	}
	return toks
}

// stem trims a trailing plural "s". Deliberately crude: anything smarter
// (Porter stemming, lemmatization) would make scores harder to reason about
// without materially improving the pairing heuristic.
func stem(t string) string {
	if len(t) > 3 && strings.HasSuffix(t, "s") && !strings.HasSuffix(t, "ss") {
		return t[:len(t)-1]
	}
	return t
}

func equalTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
