package match

import (
	"testing"

	"github.com/dkelsey/arbscan/internal/domain"
)

func snap(id string, venue domain.Venue, question string, volume float64) domain.MarketSnapshot {
	return domain.MarketSnapshot{
		ID:       id,
		Venue:    venue,
		Question: question,
		Volume:   volume,
	}
}

func TestScore_ExactMatchIsMax(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"identical", "Will BTC close above 100k?", "Will BTC close above 100k?"},
		{"case_insensitive", "Will BTC close above 100k?", "will btc CLOSE ABOVE 100k?"},
		{"punctuation_only_diff", "Team A wins, championship", "Team A wins championship!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.a, tt.b); got != MaxScore {
				t.Errorf("Score(%q, %q) = %d, want %d", tt.a, tt.b, got, MaxScore)
			}
		})
	}
}

func TestScore_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Will Team A win the championship?", "Team A wins championship 2025"},
		{"Will X win the election?", "X wins 2024 election"},
		{"Fed cuts rates in March", "Will the CPI print exceed 3%?"},
		{"", "anything"},
	}
	for _, p := range pairs {
		if ab, ba := Score(p[0], p[1]), Score(p[1], p[0]); ab != ba {
			t.Errorf("Score(%q, %q) = %d but reversed = %d", p[0], p[1], ab, ba)
		}
	}
}

func TestScore_RewordedVariantsScoreHigh(t *testing.T) {
	a := "Will Team A win the championship?"
	b := "Team A wins championship 2025"
	if got := Score(a, b); got < 80 {
		t.Errorf("Score(%q, %q) = %d, want >= 80", a, b, got)
	}

	c := "Will Japan raise interest rates?"
	if got := Score(a, c); got >= 50 {
		t.Errorf("Score(%q, %q) = %d, want < 50 for unrelated questions", a, c, got)
	}
}

func TestScore_EmptyQuestions(t *testing.T) {
	if got := Score("", "Will X happen?"); got != 0 {
		t.Errorf("Score with empty side = %d, want 0", got)
	}
}

func TestRank_NeverMatchesSelf(t *testing.T) {
	all := []domain.MarketSnapshot{
		snap("m1", domain.VenuePolymarket, "Will X win?", 100),
		snap("m2", domain.VenuePolymarket, "Will X win?", 50),
	}
	got := Rank(&all[0], all, 10)
	if len(got) != 1 {
		t.Fatalf("Rank returned %d candidates, want 1", len(got))
	}
	if got[0].B.ID != "m2" {
		t.Errorf("best candidate = %s, want m2", got[0].B.ID)
	}
	if got[0].Score != MaxScore {
		t.Errorf("identical question score = %d, want %d", got[0].Score, MaxScore)
	}
}

func TestRank_OrderedByScoreThenVolume(t *testing.T) {
	base := snap("base", domain.VenuePolymarket, "Will Team A win the championship?", 10)
	all := []domain.MarketSnapshot{
		base,
		snap("far", domain.VenueKalshi, "Oil price above $90 in June", 9999),
		snap("close", domain.VenueKalshi, "Team A wins championship 2025", 5),
		snap("tie-low", domain.VenueKalshi, "Will Team A win the championship?", 10),
		snap("tie-high", domain.VenueKalshi, "Will Team A win the championship?", 500),
	}
	got := Rank(&base, all, 10)
	if len(got) != 4 {
		t.Fatalf("Rank returned %d candidates, want 4", len(got))
	}
	// Exact rewordings first, higher volume breaking the score tie.
	if got[0].B.ID != "tie-high" || got[1].B.ID != "tie-low" {
		t.Errorf("tie-break order = [%s %s], want [tie-high tie-low]", got[0].B.ID, got[1].B.ID)
	}
	if got[len(got)-1].B.ID != "far" {
		t.Errorf("least similar = %s, want far", got[len(got)-1].B.ID)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("candidates not ordered by score at %d: %d > %d", i, got[i].Score, got[i-1].Score)
		}
	}
}

func TestRank_TopNTruncates(t *testing.T) {
	base := snap("base", domain.VenuePolymarket, "Will X happen?", 0)
	all := []domain.MarketSnapshot{base}
	for _, id := range []string{"a", "b", "c", "d"} {
		all = append(all, snap(id, domain.VenueKalshi, "Will X happen soon?", 0))
	}
	if got := Rank(&base, all, 2); len(got) != 2 {
		t.Errorf("Rank with topN=2 returned %d candidates", len(got))
	}
	if got := Rank(&base, all, 0); got != nil {
		t.Errorf("Rank with topN=0 returned %v, want nil", got)
	}
}
