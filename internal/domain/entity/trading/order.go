package trading

// Direction is the order side as exposed on the HTTP surface.
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// Valid reports whether the direction is one of the two supported sides.
func (d Direction) Valid() bool {
	return d == DirectionBuy || d == DirectionSell
}

// LimitOrder is a fully resolved limit order ready to be sent upstream.
type LimitOrder struct {
	AccountID      string    `json:"account_id"`
	InstrumentUID  string    `json:"instrument_uid"`
	Ticker         string    `json:"ticker"`
	Quantity       int64     `json:"quantity"`
	Price          float64   `json:"price"`
	Direction      Direction `json:"direction"`
	IdempotencyKey string    `json:"idempotency_key"`
}

// OrderResult is the upstream acknowledgement of a placed order.
type OrderResult struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
