package trading

// Position is a single holding inside a portfolio, with prices already
// converted from the upstream unit/nano representation.
type Position struct {
	InstrumentUID string  `json:"instrument_uid"`
	Figi          string  `json:"figi,omitempty"`
	Type          string  `json:"type,omitempty"`
	Quantity      float64 `json:"quantity"`
	AveragePrice  float64 `json:"average_price"`
	CurrentPrice  float64 `json:"current_price"`
}

// Portfolio is the account-wide view returned by the upstream API.
type Portfolio struct {
	AccountID   string     `json:"account_id"`
	TotalAmount float64    `json:"total_amount"`
	Currency    string     `json:"currency,omitempty"`
	Positions   []Position `json:"positions"`
}
