package trading

// Instrument is the upstream identity of a tradable instrument. The UID is
// what the trading API expects instead of a human-readable ticker.
type Instrument struct {
	UID       string `json:"uid"`
	Figi      string `json:"figi"`
	Ticker    string `json:"ticker"`
	ClassCode string `json:"class_code"`
	Name      string `json:"name"`
	Type      string `json:"type"`
}

// Account is a brokerage account visible to the token.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
