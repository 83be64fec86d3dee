package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// APIMarket is the subset of the Gamma API market object the scanner needs.
type APIMarket struct {
	ID           string   `json:"id"`
	Question     string   `json:"question"`
	Active       flexBool `json:"active"`
	Closed       bool     `json:"closed"`
	Volume       string   `json:"volume"`
	Outcomes     string   `json:"outcomes"`       // JSON-encoded: e.g. "[\"Yes\",\"No\"]"
	ClobTokenIDs string   `json:"clobTokenIds"`   // JSON-encoded: e.g. "[\"123\",\"456\"]"
}

// TokenIDs decodes the JSON-encoded CLOB token list. A binary market carries
// exactly two: YES first, NO second.
func (m *APIMarket) TokenIDs() ([2]string, bool) {
	var ids []string
	if err := json.Unmarshal([]byte(m.ClobTokenIDs), &ids); err != nil || len(ids) != 2 {
		return [2]string{}, false
	}
	return [2]string{ids[0], ids[1]}, true
}

// Binary reports whether the market's outcome set is the Yes/No pair. Gamma
// also lists categorical markets, which the scanner skips.
func (m *APIMarket) Binary() bool {
	var outcomes []string
	if err := json.Unmarshal([]byte(m.Outcomes), &outcomes); err != nil || len(outcomes) != 2 {
		return false
	}
	return strings.EqualFold(outcomes[0], "yes") && strings.EqualFold(outcomes[1], "no")
}

// VolumeUSD parses the string-encoded volume, zero when absent.
func (m *APIMarket) VolumeUSD() float64 {
	v, _ := strconv.ParseFloat(m.Volume, 64)
	return v
}

// APIBook is one side-aggregated orderbook from the CLOB /book endpoint.
type APIBook struct {
	Market  string          `json:"market"`
	AssetID string          `json:"asset_id"`
	Bids    []APIPriceLevel `json:"bids"`
	Asks    []APIPriceLevel `json:"asks"`
}

// APIPriceLevel is a single price level; the CLOB API encodes both fields as
// decimal strings.
type APIPriceLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// BestAsk returns the lowest ask in the book, or false when the ask side is
// empty or unparseable. An empty side means no liquidity, not a zero price.
func (b *APIBook) BestAsk() (float64, bool) {
	best := 0.0
	found := false
	for _, lvl := range b.Asks {
		p, err := strconv.ParseFloat(lvl.Price, 64)
		if err != nil || p <= 0 {
			continue
		}
		if !found || p < best {
			best = p
			found = true
		}
	}
	return best, found
}
