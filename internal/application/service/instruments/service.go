package instruments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	trading "main/internal/domain/entity/trading"
	interfaces "main/internal/domain/interfaces"
)

var (
	ErrInstrumentNotFound = errors.New("instrument not found")
	ErrNoAccount          = errors.New("no account available")
)

// Resolver maps human-readable tickers to upstream instrument UIDs and keeps
// the single account id used for trading. Both caches are filled on first
// use and never invalidated; a renamed or delisted instrument needs a
// process restart to be picked up.
type Resolver struct {
	broker interfaces.Broker

	mu        sync.RWMutex
	byTicker  map[string]trading.Instrument
	accountID string
}

func NewResolver(broker interfaces.Broker) *Resolver {
	return &Resolver{
		broker:   broker,
		byTicker: make(map[string]trading.Instrument),
	}
}

// Resolve returns the instrument for a ticker, querying the upstream search
// endpoint only on the first call. Concurrent first calls may both hit the
// upstream; the last write wins, which is harmless since the mapping is
// stable.
func (r *Resolver) Resolve(ctx context.Context, ticker string) (trading.Instrument, error) {
	key := strings.ToUpper(strings.TrimSpace(ticker))
	if key == "" {
		return trading.Instrument{}, ErrInstrumentNotFound
	}

	r.mu.RLock()
	cached, ok := r.byTicker[key]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	found, err := r.broker.FindInstruments(ctx, key)
	if err != nil {
		return trading.Instrument{}, fmt.Errorf("find instrument %s: %w", key, err)
	}

	instrument, ok := pickInstrument(found, key)
	if !ok {
		return trading.Instrument{}, fmt.Errorf("%w: %s", ErrInstrumentNotFound, key)
	}

	r.mu.Lock()
	r.byTicker[key] = instrument
	r.mu.Unlock()
	return instrument, nil
}

// AccountID returns the cached account id, listing accounts upstream only
// once per process. The first open account wins.
func (r *Resolver) AccountID(ctx context.Context) (string, error) {
	r.mu.RLock()
	cached := r.accountID
	r.mu.RUnlock()
	if cached != "" {
		return cached, nil
	}

	accounts, err := r.broker.Accounts(ctx)
	if err != nil {
		return "", fmt.Errorf("list accounts: %w", err)
	}
	if len(accounts) == 0 {
		return "", ErrNoAccount
	}

	id := accounts[0].ID
	r.mu.Lock()
	r.accountID = id
	r.mu.Unlock()
	return id, nil
}

// pickInstrument prefers the exact ticker match and falls back to the first
// search result.
func pickInstrument(found []trading.Instrument, ticker string) (trading.Instrument, bool) {
	for _, instrument := range found {
		if strings.EqualFold(instrument.Ticker, ticker) {
			return instrument, true
		}
	}
	if len(found) > 0 {
		return found[0], true
	}
	return trading.Instrument{}, false
}
