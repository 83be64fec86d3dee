package polymarket

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

type fakeBooks struct {
	books map[string]APIBook
	errs  map[string]error
}

func (f *fakeBooks) GetBook(_ context.Context, tokenID string) (APIBook, error) {
	if err, ok := f.errs[tokenID]; ok {
		return APIBook{}, err
	}
	return f.books[tokenID], nil
}

func book(prices ...string) APIBook {
	var b APIBook
	for _, p := range prices {
		b.Asks = append(b.Asks, APIPriceLevel{Price: p, Size: "100"})
	}
	return b
}

func openMarket(id, question, yesTok, noTok string) APIMarket {
	return APIMarket{
		ID:           id,
		Question:     question,
		Active:       true,
		Volume:       "1500.5",
		Outcomes:     `["Yes","No"]`,
		ClobTokenIDs: `["` + yesTok + `","` + noTok + `"]`,
	}
}

func TestAdapterFetch(t *testing.T) {
	lister := &fakeLister{markets: []APIMarket{
		openMarket("m1", "Will it rain tomorrow?", "y1", "n1"),
	}}
	books := &fakeBooks{books: map[string]APIBook{
		"y1": book("0.45", "0.47"),
		"n1": book("0.52", "0.50"),
	}}

	a := NewAdapter(lister, books, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if a.Venue() != domain.VenuePolymarket {
		t.Fatalf("Venue() = %q", a.Venue())
	}

	res, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if res.Dropped != 0 {
		t.Errorf("Dropped = %d, want 0", res.Dropped)
	}
	if len(res.Snapshots) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(res.Snapshots))
	}
	snap := res.Snapshots[0]
	if snap.ID != "m1" || snap.Venue != domain.VenuePolymarket {
		t.Errorf("identity = %s", snap.Ref())
	}
	if snap.YesAsk == nil || *snap.YesAsk != 0.45 {
		t.Errorf("YesAsk = %v, want best ask 0.45", snap.YesAsk)
	}
	if snap.NoAsk == nil || *snap.NoAsk != 0.50 {
		t.Errorf("NoAsk = %v, want best ask 0.50", snap.NoAsk)
	}
	if snap.Volume != 1500.5 {
		t.Errorf("Volume = %v, want 1500.5", snap.Volume)
	}
}

func TestAdapterFetchEmptyAskSide(t *testing.T) {
	lister := &fakeLister{markets: []APIMarket{
		openMarket("m1", "Thin market?", "y1", "n1"),
	}}
	books := &fakeBooks{books: map[string]APIBook{
		"y1": book("0.10"),
		"n1": {}, // no resting asks
	}}

	a := NewAdapter(lister, books, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	res, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(res.Snapshots) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(res.Snapshots))
	}
	snap := res.Snapshots[0]
	if snap.YesAsk == nil || *snap.YesAsk != 0.10 {
		t.Errorf("YesAsk = %v, want 0.10", snap.YesAsk)
	}
	if snap.NoAsk != nil {
		t.Errorf("NoAsk = %v, want nil for empty book side", *snap.NoAsk)
	}
	if snap.Complete() {
		t.Error("snapshot with empty NO book must not be complete")
	}
}

func TestAdapterFetchDrops(t *testing.T) {
	closed := openMarket("m2", "Closed market", "y2", "n2")
	closed.Closed = true
	categorical := openMarket("m3", "Who wins the primary?", "y3", "n3")
	categorical.Outcomes = `["Candidate A","Candidate B","Candidate C"]`
	badTokens := openMarket("m4", "Malformed tokens", "", "")
	badTokens.ClobTokenIDs = `["only-one"]`

	lister := &fakeLister{markets: []APIMarket{
		openMarket("m1", "Good market?", "y1", "n1"),
		closed,
		categorical,
		badTokens,
		openMarket("m5", "Book fetch fails", "y5", "n5"),
	}}
	books := &fakeBooks{
		books: map[string]APIBook{
			"y1": book("0.40"),
			"n1": book("0.55"),
		},
		errs: map[string]error{"y5": errors.New("boom")},
	}

	a := NewAdapter(lister, books, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	res, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(res.Snapshots) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(res.Snapshots))
	}
	if res.Snapshots[0].ID != "m1" {
		t.Errorf("kept %s, want m1", res.Snapshots[0].ID)
	}
	if res.Dropped != 4 {
		t.Errorf("Dropped = %d, want 4", res.Dropped)
	}
}

func TestAdapterFetchListError(t *testing.T) {
	lister := &fakeLister{err: errors.New("gamma down")}
	a := NewAdapter(lister, &fakeBooks{}, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := a.Fetch(context.Background()); err == nil {
		t.Fatal("Fetch() = nil error, want listing failure")
	}
}

func TestFlexBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`"true"`, true},
		{`"TRUE"`, true},
		{`"1"`, true},
		{`"false"`, false},
	}
	for _, tt := range tests {
		var f flexBool
		if err := f.UnmarshalJSON([]byte(tt.in)); err != nil {
			t.Fatalf("UnmarshalJSON(%s) error: %v", tt.in, err)
		}
		if bool(f) != tt.want {
			t.Errorf("flexBool(%s) = %v, want %v", tt.in, bool(f), tt.want)
		}
	}
}
