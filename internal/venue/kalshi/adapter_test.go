package kalshi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dkelsey/arbscan/internal/domain"
)

type fakeLister struct {
	markets []APIMarket
	err     error
}

func (f *fakeLister) ListOpenMarkets(_ context.Context, _ int) ([]APIMarket, error) {
	return f.markets, f.err
}

func TestAdapterFetch(t *testing.T) {
	lister := &fakeLister{markets: []APIMarket{
		{
			Ticker: "FED-DEC", Title: "Fed cuts rates", Subtitle: "December meeting",
			Status: "open", YesAsk: 42, NoAsk: 60, Volume: 1200,
		},
		{
			Ticker: "THIN", Title: "Thin market",
			Status: "open", YesAsk: 15, NoAsk: 0,
		},
		{
			Ticker: "SETTLED", Title: "Already settled",
			Status: "open", Result: "yes", YesAsk: 99, NoAsk: 1,
		},
		{
			Ticker: "CLOSED", Title: "Closed market",
			Status: "closed", YesAsk: 50, NoAsk: 52,
		},
		{
			Ticker: "NOTITLE", Status: "open", YesAsk: 50, NoAsk: 52,
		},
	}}

	a := NewAdapter(lister, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if a.Venue() != domain.VenueKalshi {
		t.Fatalf("Venue() = %q", a.Venue())
	}

	res, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if res.Dropped != 3 {
		t.Errorf("Dropped = %d, want 3", res.Dropped)
	}
	if len(res.Snapshots) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(res.Snapshots))
	}

	fed := res.Snapshots[0]
	if fed.ID != "FED-DEC" {
		t.Fatalf("first snapshot = %s, want FED-DEC", fed.ID)
	}
	if fed.Question != "Fed cuts rates December meeting" {
		t.Errorf("Question = %q", fed.Question)
	}
	if fed.YesAsk == nil || *fed.YesAsk != 0.42 {
		t.Errorf("YesAsk = %v, want 0.42", fed.YesAsk)
	}
	if fed.NoAsk == nil || *fed.NoAsk != 0.60 {
		t.Errorf("NoAsk = %v, want 0.60", fed.NoAsk)
	}
	if fed.Volume != 1200 {
		t.Errorf("Volume = %v, want 1200", fed.Volume)
	}

	thin := res.Snapshots[1]
	if thin.YesAsk == nil || *thin.YesAsk != 0.15 {
		t.Errorf("thin YesAsk = %v, want 0.15", thin.YesAsk)
	}
	if thin.NoAsk != nil {
		t.Errorf("thin NoAsk = %v, want nil for zero cent price", *thin.NoAsk)
	}
}

func TestAdapterFetchListError(t *testing.T) {
	lister := &fakeLister{err: errors.New("kalshi down")}
	a := NewAdapter(lister, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := a.Fetch(context.Background()); err == nil {
		t.Fatal("Fetch() = nil error, want listing failure")
	}
}

func TestCentsToProb(t *testing.T) {
	tests := []struct {
		cents  int64
		want   float64
		quoted bool
	}{
		{0, 0, false},
		{-5, 0, false},
		{1, 0.01, true},
		{42, 0.42, true},
		{100, 1.00, true},
		{101, 0, false},
	}
	for _, tt := range tests {
		got, ok := centsToProb(tt.cents)
		if ok != tt.quoted || got != tt.want {
			t.Errorf("centsToProb(%d) = %v,%v, want %v,%v",
				tt.cents, got, ok, tt.want, tt.quoted)
		}
	}
}
