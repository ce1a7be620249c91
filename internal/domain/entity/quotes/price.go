package quotes

import "time"

// PriceEntry is a cached last price for a ticker. Entries are replaced on
// refresh and never deleted; growth is bounded by the number of distinct
// tickers queried.
type PriceEntry struct {
	Ticker        string    `json:"ticker"`
	InstrumentUID string    `json:"instrument_uid"`
	Figi          string    `json:"figi,omitempty"`
	Price         float64   `json:"price"`
	FetchedAt     time.Time `json:"fetched_at"`
}
