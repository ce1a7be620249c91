package quotes

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	appinstruments "main/internal/application/service/instruments"
	quotes "main/internal/domain/entity/quotes"
	interfaces "main/internal/domain/interfaces"
)

// DefaultTTL is how long a fetched quote stays fresh; an older entry is
// refetched on the next read.
const DefaultTTL = 5 * time.Second

// Service memoizes the last fetched price per ticker for a fixed window so
// repeated reads do not hammer the upstream. Expiry is checked lazily on
// read; there is no background refresh and no eviction.
type Service struct {
	broker   interfaces.Broker
	resolver *appinstruments.Resolver
	ttl      time.Duration
	now      func() time.Time

	mu     sync.RWMutex
	prices map[string]quotes.PriceEntry
}

func NewService(broker interfaces.Broker, resolver *appinstruments.Resolver, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		broker:   broker,
		resolver: resolver,
		ttl:      ttl,
		now:      time.Now,
		prices:   make(map[string]quotes.PriceEntry),
	}
}

// WithClock replaces the time source. Tests use it to step through the TTL
// window deterministically.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetPrice returns the cached entry when it is still fresh, otherwise
// resolves the instrument, fetches the latest price upstream, and stores a
// fresh entry with the current timestamp.
func (s *Service) GetPrice(ctx context.Context, ticker string) (quotes.PriceEntry, error) {
	key := strings.ToUpper(strings.TrimSpace(ticker))

	s.mu.RLock()
	entry, ok := s.prices[key]
	s.mu.RUnlock()
	if ok && s.now().Sub(entry.FetchedAt) < s.ttl {
		return entry, nil
	}

	instrument, err := s.resolver.Resolve(ctx, key)
	if err != nil {
		return quotes.PriceEntry{}, err
	}

	price, err := s.broker.LastPrice(ctx, instrument.UID)
	if err != nil {
		return quotes.PriceEntry{}, fmt.Errorf("last price %s: %w", key, err)
	}

	entry = quotes.PriceEntry{
		Ticker:        key,
		InstrumentUID: instrument.UID,
		Figi:          instrument.Figi,
		Price:         price.ToFloat(),
		FetchedAt:     s.now(),
	}

	s.mu.Lock()
	s.prices[key] = entry
	s.mu.Unlock()
	return entry, nil
}
