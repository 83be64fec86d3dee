package kalshi

// APIMarket is the subset of the Kalshi market object the scanner needs.
// Prices are quoted in cents (1-99); a zero ask means that side has no
// resting offers.
type APIMarket struct {
	Ticker    string  `json:"ticker"`
	Title     string  `json:"title"`
	Subtitle  string  `json:"subtitle"`
	Status    string  `json:"status"` // "open", "closed", "settled"
	YesAsk    int64   `json:"yes_ask"`
	NoAsk     int64   `json:"no_ask"`
	Volume    int64   `json:"volume"`
	CloseTime string  `json:"close_time"`
	Category  string  `json:"category"`
	Result    string  `json:"result"` // "yes", "no", "" (unsettled)
}

// APIErrorResponse is a Kalshi API error payload.
type APIErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
