package engine

import (
	"testing"

	"github.com/dkelsey/arbscan/internal/domain"
)

func TestCombinatorialLinkedPair(t *testing.T) {
	base := domain.MarketSnapshot{
		ID:       "pm-1",
		Venue:    domain.VenuePolymarket,
		Question: "Will Team A win the championship?",
		YesAsk:   domain.Price(0.30),
		NoAsk:    domain.Price(0.75),
		Volume:   1000,
	}
	linked := domain.MarketSnapshot{
		ID:       "pm-2",
		Venue:    domain.VenuePolymarket,
		Question: "Team A wins championship 2025",
		YesAsk:   domain.Price(0.80),
		NoAsk:    domain.Price(0.60),
		Volume:   500,
	}
	all := []domain.MarketSnapshot{base, linked}

	opps, evaluated := Combinatorial(&base, all, 80, 0.05, 5)
	if evaluated == 0 {
		t.Fatal("no candidates evaluated")
	}
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	opp := opps[0]
	if opp.Kind != domain.KindCombinatorial {
		t.Errorf("Kind = %q, want %q", opp.Kind, domain.KindCombinatorial)
	}
	// Cheapest cross pairing: base YES 0.30 + linked NO 0.60 = 0.90.
	if !almostEqual(opp.ProfitPercent, 10.0) {
		t.Errorf("ProfitPercent = %v, want 10.0", opp.ProfitPercent)
	}
	if opp.Combinatorial == nil {
		t.Fatal("Combinatorial detail missing")
	}
	if opp.Combinatorial.MatchScore < 80 {
		t.Errorf("MatchScore = %d, want >= 80", opp.Combinatorial.MatchScore)
	}
	if !almostEqual(opp.Combinatorial.TotalCost, 0.90) {
		t.Errorf("TotalCost = %v, want 0.90", opp.Combinatorial.TotalCost)
	}
}

func TestCombinatorialPicksCheaperPairing(t *testing.T) {
	base := domain.MarketSnapshot{
		ID:       "a",
		Venue:    domain.VenuePolymarket,
		Question: "Will the incumbent win the election?",
		YesAsk:   domain.Price(0.90),
		NoAsk:    domain.Price(0.20),
	}
	linked := domain.MarketSnapshot{
		ID:       "b",
		Venue:    domain.VenuePolymarket,
		Question: "Incumbent wins election",
		YesAsk:   domain.Price(0.65),
		NoAsk:    domain.Price(0.90),
	}

	opps, _ := Combinatorial(&base, []domain.MarketSnapshot{base, linked}, 75, 0.05, 5)
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	// base NO 0.20 + linked YES 0.65 = 0.85 beats base YES 0.90 + linked NO 0.90.
	if !almostEqual(opps[0].ProfitPercent, 15.0) {
		t.Errorf("ProfitPercent = %v, want 15.0", opps[0].ProfitPercent)
	}
}

func TestCombinatorialRejections(t *testing.T) {
	question := "Will the bill pass the senate?"
	near := "Bill to pass the senate"

	tests := []struct {
		name   string
		base   domain.MarketSnapshot
		linked domain.MarketSnapshot
	}{
		{
			name: "no profitable pairing",
			base: domain.MarketSnapshot{
				ID: "a", Venue: domain.VenuePolymarket, Question: question,
				YesAsk: domain.Price(0.55), NoAsk: domain.Price(0.55),
			},
			linked: domain.MarketSnapshot{
				ID: "b", Venue: domain.VenuePolymarket, Question: near,
				YesAsk: domain.Price(0.55), NoAsk: domain.Price(0.55),
			},
		},
		{
			name: "unrelated question below match threshold",
			base: domain.MarketSnapshot{
				ID: "a", Venue: domain.VenuePolymarket, Question: question,
				YesAsk: domain.Price(0.30), NoAsk: domain.Price(0.30),
			},
			linked: domain.MarketSnapshot{
				ID: "b", Venue: domain.VenuePolymarket, Question: "Bitcoin above 100k by March?",
				YesAsk: domain.Price(0.30), NoAsk: domain.Price(0.30),
			},
		},
		{
			name: "linked market missing a side",
			base: domain.MarketSnapshot{
				ID: "a", Venue: domain.VenuePolymarket, Question: question,
				YesAsk: domain.Price(0.30), NoAsk: domain.Price(0.30),
			},
			linked: domain.MarketSnapshot{
				ID: "b", Venue: domain.VenuePolymarket, Question: near,
				YesAsk: domain.Price(0.10),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			all := []domain.MarketSnapshot{tt.base, tt.linked}
			opps, _ := Combinatorial(&tt.base, all, 75, 0.05, 5)
			if len(opps) != 0 {
				t.Fatalf("got %d opportunities, want 0", len(opps))
			}
		})
	}
}

func TestCombinatorialIncompleteBase(t *testing.T) {
	base := domain.MarketSnapshot{
		ID: "a", Venue: domain.VenuePolymarket, Question: "Will it rain?",
		YesAsk: domain.Price(0.10),
	}
	opps, evaluated := Combinatorial(&base, []domain.MarketSnapshot{base}, 75, 0.05, 5)
	if opps != nil || evaluated != 0 {
		t.Fatalf("got %v (evaluated %d), want nil and 0", opps, evaluated)
	}
}
