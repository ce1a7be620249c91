package invest

import (
	"context"
	"fmt"

	investgo "github.com/russianinvestments/invest-api-go-sdk/investgo"
	pb "github.com/russianinvestments/invest-api-go-sdk/proto"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	quotes "main/internal/domain/entity/quotes"
	trading "main/internal/domain/entity/trading"
	interfaces "main/internal/domain/interfaces"
)

// Config carries the upstream connection settings.
type Config struct {
	Endpoint      string
	Token         string
	AppName       string
	SkipTLSVerify bool
}

// Gateway implements interfaces.Broker on top of the invest API SDK. The SDK
// binds the context passed to NewGateway for the lifetime of the connection,
// so the per-call contexts only scope the façade side of each request.
type Gateway struct {
	client      *investgo.Client
	instruments *investgo.InstrumentsServiceClient
	marketdata  *investgo.MarketDataServiceClient
	users       *investgo.UsersServiceClient
	operations  *investgo.OperationsServiceClient
	orders      *investgo.OrdersServiceClient
}

var _ interfaces.Broker = (*Gateway)(nil)

func NewGateway(ctx context.Context, cfg Config, logger *logrus.Logger) (*Gateway, error) {
	client, err := investgo.NewClient(ctx, investgo.Config{
		EndPoint:           cfg.Endpoint,
		Token:              cfg.Token,
		AppName:            cfg.AppName,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create invest api client: %w", err)
	}

	return &Gateway{
		client:      client,
		instruments: client.NewInstrumentsServiceClient(),
		marketdata:  client.NewMarketDataServiceClient(),
		users:       client.NewUsersServiceClient(),
		operations:  client.NewOperationsServiceClient(),
		orders:      client.NewOrdersServiceClient(),
	}, nil
}

func (g *Gateway) Close() error {
	return g.client.Stop()
}

func (g *Gateway) FindInstruments(_ context.Context, query string) ([]trading.Instrument, error) {
	resp, err := g.instruments.FindInstrument(query)
	if err != nil {
		return nil, classify(err)
	}

	items := resp.GetInstruments()
	found := make([]trading.Instrument, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		found = append(found, trading.Instrument{
			UID:       item.GetUid(),
			Figi:      item.GetFigi(),
			Ticker:    item.GetTicker(),
			ClassCode: item.GetClassCode(),
			Name:      item.GetName(),
			Type:      item.GetInstrumentType(),
		})
	}
	return found, nil
}

func (g *Gateway) LastPrice(_ context.Context, instrumentUID string) (quotes.Quotation, error) {
	resp, err := g.marketdata.GetLastPrices([]string{instrumentUID})
	if err != nil {
		return quotes.Quotation{}, classify(err)
	}

	for _, lp := range resp.GetLastPrices() {
		if lp == nil {
			continue
		}
		price := lp.GetPrice()
		if price == nil {
			continue
		}
		return quotes.Quotation{Units: price.GetUnits(), Nano: price.GetNano()}, nil
	}
	return quotes.Quotation{}, fmt.Errorf("%w: last price missing for %s", interfaces.ErrDecode, instrumentUID)
}

func (g *Gateway) Accounts(_ context.Context) ([]trading.Account, error) {
	resp, err := g.users.GetAccounts(pb.AccountStatus_ACCOUNT_STATUS_OPEN.Enum())
	if err != nil {
		return nil, classify(err)
	}

	items := resp.GetAccounts()
	accounts := make([]trading.Account, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		accounts = append(accounts, trading.Account{
			ID:   item.GetId(),
			Name: item.GetName(),
		})
	}
	return accounts, nil
}

func (g *Gateway) Portfolio(_ context.Context, accountID string) (*trading.Portfolio, error) {
	resp, err := g.operations.GetPortfolio(accountID, pb.PortfolioRequest_RUB)
	if err != nil {
		return nil, classify(err)
	}

	portfolio := &trading.Portfolio{
		AccountID:   accountID,
		TotalAmount: moneyToFloat(resp.GetTotalAmountPortfolio()),
		Currency:    resp.GetTotalAmountPortfolio().GetCurrency(),
	}

	positions := resp.GetPositions()
	portfolio.Positions = make([]trading.Position, 0, len(positions))
	for _, position := range positions {
		if position == nil {
			continue
		}
		portfolio.Positions = append(portfolio.Positions, trading.Position{
			InstrumentUID: position.GetInstrumentUid(),
			Figi:          position.GetFigi(),
			Type:          position.GetInstrumentType(),
			Quantity:      quotationToFloat(position.GetQuantity()),
			AveragePrice:  moneyToFloat(position.GetAveragePositionPrice()),
			CurrentPrice:  moneyToFloat(position.GetCurrentPrice()),
		})
	}
	return portfolio, nil
}

func (g *Gateway) PostLimitOrder(_ context.Context, order trading.LimitOrder) (*trading.OrderResult, error) {
	price := quotes.FloatToQuotation(order.Price)
	direction := pb.OrderDirection_ORDER_DIRECTION_BUY
	if order.Direction == trading.DirectionSell {
		direction = pb.OrderDirection_ORDER_DIRECTION_SELL
	}

	resp, err := g.orders.PostOrder(&investgo.PostOrderRequest{
		InstrumentId: order.InstrumentUID,
		Quantity:     order.Quantity,
		Price:        &pb.Quotation{Units: price.Units, Nano: price.Nano},
		Direction:    direction,
		AccountId:    order.AccountID,
		OrderType:    pb.OrderType_ORDER_TYPE_LIMIT,
		OrderId:      order.IdempotencyKey,
	})
	if err != nil {
		return nil, classify(err)
	}

	return &trading.OrderResult{
		OrderID: resp.GetOrderId(),
		Status:  resp.GetExecutionReportStatus().String(),
		Message: resp.GetMessage(),
	}, nil
}

func quotationToFloat(q *pb.Quotation) float64 {
	if q == nil {
		return 0
	}
	return quotes.Quotation{Units: q.GetUnits(), Nano: q.GetNano()}.ToFloat()
}

func moneyToFloat(m *pb.MoneyValue) float64 {
	if m == nil {
		return 0
	}
	return quotes.Quotation{Units: m.GetUnits(), Nano: m.GetNano()}.ToFloat()
}

// classify maps transport-level failures onto the gateway error taxonomy.
func classify(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", interfaces.ErrTransport, err)
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %v", interfaces.ErrTransport, err)
	case codes.Internal, codes.DataLoss:
		return fmt.Errorf("%w: %v", interfaces.ErrDecode, err)
	default:
		return fmt.Errorf("%w: %v", interfaces.ErrUpstream, err)
	}
}
