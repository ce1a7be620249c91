package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	trading "main/internal/domain/entity/trading"
	interfaces "main/internal/domain/interfaces"
)

// Publisher broadcasts order-placed events to a RabbitMQ fanout exchange.
// It is an optional sidecar of the order flow: wiring it is controlled by
// configuration and publish failures never fail the order.
type Publisher struct {
	channel  *amqp.Channel
	exchange string
	logger   *logrus.Logger
	mu       sync.Mutex
}

var _ interfaces.OrderEventPublisher = (*Publisher)(nil)

// OrderPlacedEvent is the wire payload consumers receive.
type OrderPlacedEvent struct {
	Order    trading.LimitOrder  `json:"order"`
	Result   trading.OrderResult `json:"result"`
	PlacedAt time.Time           `json:"placed_at"`
}

func NewPublisher(conn *amqp.Connection, exchange string, logger *logrus.Logger) (*Publisher, error) {
	if exchange == "" {
		return nil, errors.New("exchange name cannot be empty")
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{
		channel:  ch,
		exchange: exchange,
		logger:   logger,
	}, nil
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if err := p.channel.Close(); err != nil {
		p.logger.Errorf("close rabbitmq channel: %v", err)
	}
}

func (p *Publisher) PublishOrderPlaced(ctx context.Context, order trading.LimitOrder, result trading.OrderResult) error {
	body, err := json.Marshal(OrderPlacedEvent{
		Order:    order,
		Result:   result,
		PlacedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.channel.PublishWithContext(ctx, p.exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
