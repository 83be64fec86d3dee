package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/dkelsey/arbscan/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return e
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative spread threshold", func(c *Config) { c.SpreadThreshold = -0.01 }},
		{"spread threshold at one", func(c *Config) { c.SpreadThreshold = 1 }},
		{"combo threshold out of range", func(c *Config) { c.ComboThreshold = 1.5 }},
		{"match threshold above 100", func(c *Config) { c.ComboMatchThreshold = 101 }},
		{"certainty at half", func(c *Config) { c.CertaintyThreshold = 0.5 }},
		{"certainty at one", func(c *Config) { c.CertaintyThreshold = 1 }},
		{"cross venue match negative", func(c *Config) { c.CrossVenueMatchThreshold = -1 }},
		{"unknown kind", func(c *Config) { c.EnabledKinds = []domain.OpportunityKind{"sprad"} }},
		{"negative candidate cap", func(c *Config) { c.MaxMatchCandidates = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			if _, err := New(cfg, testLogger()); !errors.Is(err, domain.ErrInvalidConfig) {
				t.Fatalf("New() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestNewCollectsAllConfigErrors(t *testing.T) {
	cfg := Defaults()
	cfg.SpreadThreshold = -1
	cfg.CertaintyThreshold = 0.2
	_, err := New(cfg, testLogger())
	if err == nil {
		t.Fatal("New() = nil error")
	}
	for _, field := range []string{"spread_threshold", "certainty_threshold"} {
		if !containsField(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
}

func containsField(s, field string) bool {
	for i := 0; i+len(field) <= len(s); i++ {
		if s[i:i+len(field)] == field {
			return true
		}
	}
	return false
}

// A snapshot quoting only one side produces no opportunities of any kind and
// is counted as skipped.
func TestRunSkipsIncompleteSnapshots(t *testing.T) {
	e := mustEngine(t, Defaults())
	snaps := []domain.MarketSnapshot{{
		ID: "m1", Venue: domain.VenuePolymarket,
		Question: "Resolves YES if both teams qualify, unless postponed",
		YesAsk:   domain.Price(0.01),
	}}

	res := e.Run(context.Background(), snaps)
	if len(res.Opportunities) != 0 {
		t.Fatalf("got %d opportunities, want 0", len(res.Opportunities))
	}
	want := domain.ScanSummary{SnapshotsConsidered: 1, SnapshotsSkipped: 1}
	if res.Summary != want {
		t.Errorf("Summary = %+v, want %+v", res.Summary, want)
	}
}

func TestRunIdempotent(t *testing.T) {
	e := mustEngine(t, Defaults())
	snaps := []domain.MarketSnapshot{
		{
			ID: "pm-1", Venue: domain.VenuePolymarket,
			Question: "Will Team A win the championship?",
			YesAsk:   domain.Price(0.30), NoAsk: domain.Price(0.65), Volume: 100,
		},
		{
			ID: "pm-2", Venue: domain.VenuePolymarket,
			Question: "Team A wins championship 2025",
			YesAsk:   domain.Price(0.80), NoAsk: domain.Price(0.60), Volume: 50,
		},
		{
			ID: "k-1", Venue: domain.VenueKalshi,
			Question: "Resolves YES unless the match is postponed",
			YesAsk:   domain.Price(0.40), NoAsk: domain.Price(0.70), Volume: 10,
		},
	}

	first := e.Run(context.Background(), snaps)
	second := e.Run(context.Background(), snaps)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("runs differ:\nfirst  %+v\nsecond %+v", first, second)
	}
	if len(first.Opportunities) == 0 {
		t.Fatal("fixture produced no opportunities")
	}
}

// The same pairing discovered from both sides must surface once.
func TestRunDeduplicatesSymmetricPairs(t *testing.T) {
	e := mustEngine(t, Config{
		SpreadThreshold:     0.02,
		ComboThreshold:      0.05,
		ComboMatchThreshold: 75,
		CertaintyThreshold:  0.95,
		EnabledKinds:        []domain.OpportunityKind{domain.KindCombinatorial},
	})
	snaps := []domain.MarketSnapshot{
		{
			ID: "pm-1", Venue: domain.VenuePolymarket,
			Question: "Will Team A win the championship?",
			YesAsk:   domain.Price(0.30), NoAsk: domain.Price(0.75),
		},
		{
			ID: "pm-2", Venue: domain.VenuePolymarket,
			Question: "Team A wins championship 2025",
			YesAsk:   domain.Price(0.80), NoAsk: domain.Price(0.60),
		},
	}

	res := e.Run(context.Background(), snaps)
	if len(res.Opportunities) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(res.Opportunities))
	}
	opp := res.Opportunities[0]
	if opp.Kind != domain.KindCombinatorial {
		t.Fatalf("Kind = %q, want combinatorial", opp.Kind)
	}
	if !almostEqual(opp.ProfitPercent, 10.0) {
		t.Errorf("ProfitPercent = %v, want 10.0", opp.ProfitPercent)
	}
	if res.Summary.MatchesEvaluated == 0 {
		t.Error("MatchesEvaluated not counted")
	}
}

func TestRunRanking(t *testing.T) {
	e := mustEngine(t, Defaults())
	snaps := []domain.MarketSnapshot{
		{
			ID: "small", Venue: domain.VenuePolymarket,
			Question: "Modest spread market",
			YesAsk:   domain.Price(0.45), NoAsk: domain.Price(0.50), Volume: 100,
		},
		{
			ID: "big", Venue: domain.VenuePolymarket,
			Question: "Wide spread market",
			YesAsk:   domain.Price(0.30), NoAsk: domain.Price(0.50), Volume: 10,
		},
		{
			ID: "flag", Venue: domain.VenueKalshi,
			Question: "Resolves NO unless turnout exceeds 60%",
			YesAsk:   domain.Price(0.40), NoAsk: domain.Price(0.70), Volume: 500,
		},
	}

	res := e.Run(context.Background(), snaps)
	if len(res.Opportunities) < 3 {
		t.Fatalf("got %d opportunities, want at least 3", len(res.Opportunities))
	}

	// Monetary results first, profit descending.
	sawInformational := false
	prev := -1.0
	for i, opp := range res.Opportunities {
		if !opp.Kind.Monetary() {
			sawInformational = true
			continue
		}
		if sawInformational {
			t.Fatalf("monetary opportunity at %d after informational flag", i)
		}
		if prev >= 0 && opp.ProfitPercent > prev+priceEps {
			t.Fatalf("profit %v at %d exceeds previous %v", opp.ProfitPercent, i, prev)
		}
		prev = opp.ProfitPercent
	}
	if !sawInformational {
		t.Fatal("ambiguity flag missing from results")
	}
	if res.Opportunities[0].ProfitPercent < 20-priceEps {
		t.Errorf("top opportunity profit = %v, want the 20%% spread first",
			res.Opportunities[0].ProfitPercent)
	}
}

func TestRunEnabledKindsFilter(t *testing.T) {
	e := mustEngine(t, Config{
		SpreadThreshold:    0.02,
		CertaintyThreshold: 0.95,
		AmbiguityKeywords:  []string{"unless"},
		EnabledKinds:       []domain.OpportunityKind{domain.KindSpread},
	})
	snaps := []domain.MarketSnapshot{{
		ID: "m1", Venue: domain.VenuePolymarket,
		Question: "Resolves NO unless the vote passes",
		YesAsk:   domain.Price(0.02), NoAsk: domain.Price(0.90),
	}}

	res := e.Run(context.Background(), snaps)
	if len(res.Opportunities) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(res.Opportunities))
	}
	if res.Opportunities[0].Kind != domain.KindSpread {
		t.Errorf("Kind = %q, want spread only", res.Opportunities[0].Kind)
	}
	if res.Summary.MatchesEvaluated != 0 {
		t.Errorf("MatchesEvaluated = %d, want 0 with matching disabled",
			res.Summary.MatchesEvaluated)
	}
}

func TestRunCancelledContext(t *testing.T) {
	e := mustEngine(t, Defaults())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snaps := []domain.MarketSnapshot{{
		ID: "m1", Venue: domain.VenuePolymarket,
		Question: "Any market",
		YesAsk:   domain.Price(0.45), NoAsk: domain.Price(0.50),
	}}

	res := e.Run(ctx, snaps)
	if !res.Incomplete {
		t.Error("Incomplete not set on cancelled run")
	}
	if len(res.Opportunities) != 0 {
		t.Errorf("got %d opportunities from cancelled run, want 0", len(res.Opportunities))
	}
}
