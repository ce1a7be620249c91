package interfaces

import (
	"context"
	"errors"

	quotes "main/internal/domain/entity/quotes"
	trading "main/internal/domain/entity/trading"
)

// Gateway failure taxonomy. Implementations wrap one of these sentinels so
// callers can tell a network failure from an upstream rejection without
// depending on the transport.
var (
	ErrTransport = errors.New("upstream transport failure")
	ErrUpstream  = errors.New("upstream rejected request")
	ErrDecode    = errors.New("malformed upstream response")
)

// Broker is the remote trading API gateway. Each method issues exactly one
// authenticated upstream call; there is no retry or circuit breaking, a
// failed call is a single reported failure.
type Broker interface {
	// FindInstruments searches instruments matching the query (usually a
	// ticker). An empty result is not an error.
	FindInstruments(ctx context.Context, query string) ([]trading.Instrument, error)

	// LastPrice fetches the most recent price for an instrument UID.
	LastPrice(ctx context.Context, instrumentUID string) (quotes.Quotation, error)

	// Accounts lists accounts available to the configured token.
	Accounts(ctx context.Context) ([]trading.Account, error)

	// Portfolio fetches the portfolio of the given account.
	Portfolio(ctx context.Context, accountID string) (*trading.Portfolio, error)

	// PostLimitOrder places a limit order and returns the upstream
	// acknowledgement.
	PostLimitOrder(ctx context.Context, order trading.LimitOrder) (*trading.OrderResult, error)
}
