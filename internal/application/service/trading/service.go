package trading

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	appinstruments "main/internal/application/service/instruments"
	trading "main/internal/domain/entity/trading"
	interfaces "main/internal/domain/interfaces"
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrInvalidPrice     = errors.New("price must be positive")
	ErrInvalidDirection = errors.New("direction must be buy or sell")
)

// OrderRequest is the caller's view of a limit order before resolution.
type OrderRequest struct {
	Ticker    string
	Quantity  int64
	Price     float64
	Direction trading.Direction
}

// Service owns the trading operations of the façade: portfolio retrieval and
// limit-order placement against the single resolved account.
type Service struct {
	broker   interfaces.Broker
	resolver *appinstruments.Resolver
	events   interfaces.OrderEventPublisher
	logger   *logrus.Logger
}

func NewService(broker interfaces.Broker, resolver *appinstruments.Resolver, events interfaces.OrderEventPublisher, logger *logrus.Logger) *Service {
	return &Service{
		broker:   broker,
		resolver: resolver,
		events:   events,
		logger:   logger,
	}
}

// Portfolio resolves the account and fetches its portfolio.
func (s *Service) Portfolio(ctx context.Context) (*trading.Portfolio, error) {
	accountID, err := s.resolver.AccountID(ctx)
	if err != nil {
		return nil, err
	}
	portfolio, err := s.broker.Portfolio(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("portfolio %s: %w", accountID, err)
	}
	return portfolio, nil
}

// PlaceLimitOrder validates the request, resolves the ticker and account,
// and posts a limit order upstream. Upstream errors are returned as-is; the
// order endpoint does not mask failures.
func (s *Service) PlaceLimitOrder(ctx context.Context, req OrderRequest) (*trading.OrderResult, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if req.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if !req.Direction.Valid() {
		return nil, ErrInvalidDirection
	}

	instrument, err := s.resolver.Resolve(ctx, req.Ticker)
	if err != nil {
		return nil, err
	}
	accountID, err := s.resolver.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	order := trading.LimitOrder{
		AccountID:      accountID,
		InstrumentUID:  instrument.UID,
		Ticker:         instrument.Ticker,
		Quantity:       req.Quantity,
		Price:          req.Price,
		Direction:      req.Direction,
		IdempotencyKey: uuid.NewString(),
	}

	result, err := s.broker.PostLimitOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("post limit order %s: %w", order.Ticker, err)
	}

	if s.events != nil {
		if pubErr := s.events.PublishOrderPlaced(ctx, order, *result); pubErr != nil {
			s.logger.WithError(pubErr).Warn("publish order event")
		}
	}
	return result, nil
}
