package engine

import (
	"testing"

	"github.com/dkelsey/arbscan/internal/domain"
)

func TestCrossVenue(t *testing.T) {
	question := "Will the Fed cut rates in December?"
	counterpart := "Fed cuts rates in December"

	base := domain.MarketSnapshot{
		ID: "pm-1", Venue: domain.VenuePolymarket, Question: question,
		YesAsk: domain.Price(0.40), NoAsk: domain.Price(0.62), Volume: 2000,
	}

	tests := []struct {
		name        string
		others      []domain.MarketSnapshot
		wantNil     bool
		wantProfit  float64
		wantCheaper domain.Venue
	}{
		{
			name: "priced apart across venues",
			others: []domain.MarketSnapshot{{
				ID: "k-1", Venue: domain.VenueKalshi, Question: counterpart,
				YesAsk: domain.Price(0.52), NoAsk: domain.Price(0.50),
			}},
			wantProfit:  12.0,
			wantCheaper: domain.VenuePolymarket,
		},
		{
			name: "other venue cheaper",
			others: []domain.MarketSnapshot{{
				ID: "k-1", Venue: domain.VenueKalshi, Question: counterpart,
				YesAsk: domain.Price(0.31), NoAsk: domain.Price(0.71),
			}},
			wantProfit:  9.0,
			wantCheaper: domain.VenueKalshi,
		},
		{
			name: "gap under threshold",
			others: []domain.MarketSnapshot{{
				ID: "k-1", Venue: domain.VenueKalshi, Question: counterpart,
				YesAsk: domain.Price(0.42), NoAsk: domain.Price(0.60),
			}},
			wantNil: true,
		},
		{
			name: "counterpart below match threshold",
			others: []domain.MarketSnapshot{{
				ID: "k-1", Venue: domain.VenueKalshi, Question: "Oil above $90 by December?",
				YesAsk: domain.Price(0.90), NoAsk: domain.Price(0.12),
			}},
			wantNil: true,
		},
		{
			name: "same venue only",
			others: []domain.MarketSnapshot{{
				ID: "pm-2", Venue: domain.VenuePolymarket, Question: counterpart,
				YesAsk: domain.Price(0.90), NoAsk: domain.Price(0.12),
			}},
			wantNil: true,
		},
		{
			name: "counterpart missing a side",
			others: []domain.MarketSnapshot{{
				ID: "k-1", Venue: domain.VenueKalshi, Question: counterpart,
				YesAsk: domain.Price(0.90),
			}},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			all := append([]domain.MarketSnapshot{base}, tt.others...)
			opp, _ := CrossVenue(&base, all, 80, 0.05, 5)
			if tt.wantNil {
				if opp != nil {
					t.Fatalf("CrossVenue() = %+v, want nil", opp)
				}
				return
			}
			if opp == nil {
				t.Fatal("CrossVenue() = nil, want opportunity")
			}
			if opp.Kind != domain.KindCrossVenue {
				t.Errorf("Kind = %q, want %q", opp.Kind, domain.KindCrossVenue)
			}
			if !almostEqual(opp.ProfitPercent, tt.wantProfit) {
				t.Errorf("ProfitPercent = %v, want %v", opp.ProfitPercent, tt.wantProfit)
			}
			d := opp.CrossVenue
			if d == nil {
				t.Fatal("CrossVenue detail missing")
			}
			if d.CheaperVenue != tt.wantCheaper {
				t.Errorf("CheaperVenue = %q, want %q", d.CheaperVenue, tt.wantCheaper)
			}
			if d.MatchScore < 80 {
				t.Errorf("MatchScore = %d, want >= 80", d.MatchScore)
			}
		})
	}
}

// The best-matching counterpart decides the outcome even when a weaker match
// shows a wider price gap.
func TestCrossVenueBestMatchWins(t *testing.T) {
	base := domain.MarketSnapshot{
		ID: "pm-1", Venue: domain.VenuePolymarket,
		Question: "Will Team A win the championship?",
		YesAsk:   domain.Price(0.40), NoAsk: domain.Price(0.62),
	}
	exact := domain.MarketSnapshot{
		ID: "k-1", Venue: domain.VenueKalshi,
		Question: "Will Team A win the championship?",
		YesAsk:   domain.Price(0.42), NoAsk: domain.Price(0.60),
	}
	loose := domain.MarketSnapshot{
		ID: "k-2", Venue: domain.VenueKalshi,
		Question: "Team A wins championship 2025",
		YesAsk:   domain.Price(0.90), NoAsk: domain.Price(0.12),
	}

	opp, _ := CrossVenue(&base, []domain.MarketSnapshot{base, exact, loose}, 80, 0.05, 5)
	if opp != nil {
		t.Fatalf("CrossVenue() = %+v, want nil: exact counterpart gap is under threshold", opp)
	}
}
