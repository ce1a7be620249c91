package interfaces

import (
	"context"

	trading "main/internal/domain/entity/trading"
)

// OrderEventPublisher broadcasts acknowledged orders to interested
// consumers. Publishing is best effort: a failure must never affect the
// order itself.
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order trading.LimitOrder, result trading.OrderResult) error
}
