package engine

import (
	"reflect"
	"testing"

	"github.com/dkelsey/arbscan/internal/domain"
)

func TestAmbiguity(t *testing.T) {
	keywords := []string{"if", "unless", "both", "either"}

	tests := []struct {
		name     string
		question string
		keywords []string
		want     []string
	}{
		{
			name:     "single keyword",
			question: "The market resolves NO unless the vote passes",
			keywords: keywords,
			want:     []string{"unless"},
		},
		{
			name:     "case insensitive",
			question: "UNLESS the deal closes by Friday",
			keywords: keywords,
			want:     []string{"unless"},
		},
		{
			name:     "multiple keywords in configured order",
			question: "Resolves YES if both teams qualify",
			keywords: keywords,
			want:     []string{"if", "both"},
		},
		{
			name:     "no keywords present",
			question: "Will the rocket launch succeed?",
			keywords: keywords,
			want:     nil,
		},
		{
			name:     "empty keyword list",
			question: "Resolves YES if both teams qualify",
			keywords: nil,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := domain.MarketSnapshot{
				ID:       "m1",
				Venue:    domain.VenuePolymarket,
				Question: tt.question,
				YesAsk:   domain.Price(0.40),
				NoAsk:    domain.Price(0.65),
			}
			opp := Ambiguity(&snap, tt.keywords)
			if tt.want == nil {
				if opp != nil {
					t.Fatalf("Ambiguity() = %+v, want nil", opp)
				}
				return
			}
			if opp == nil {
				t.Fatal("Ambiguity() = nil, want flag")
			}
			if opp.Kind != domain.KindAmbiguous {
				t.Errorf("Kind = %q, want %q", opp.Kind, domain.KindAmbiguous)
			}
			if opp.Kind.Monetary() {
				t.Error("ambiguity flag must be informational")
			}
			if opp.ProfitPercent != 0 {
				t.Errorf("ProfitPercent = %v, want 0", opp.ProfitPercent)
			}
			if opp.Ambiguous == nil {
				t.Fatal("Ambiguous detail missing")
			}
			if !reflect.DeepEqual(opp.Ambiguous.Keywords, tt.want) {
				t.Errorf("Keywords = %v, want %v", opp.Ambiguous.Keywords, tt.want)
			}
		})
	}
}
