package testutil

import (
	"context"
	"sync"

	quotes "main/internal/domain/entity/quotes"
	trading "main/internal/domain/entity/trading"
	interfaces "main/internal/domain/interfaces"
)

// FakeBroker is an in-memory interfaces.Broker for tests. Every method
// counts its calls; Err fails all calls, the per-method errors fail one.
type FakeBroker struct {
	mu sync.Mutex

	Instruments     []trading.Instrument
	Price           quotes.Quotation
	AccountsList    []trading.Account
	PortfolioResult *trading.Portfolio
	OrderResult     *trading.OrderResult

	Err          error
	FindErr      error
	PriceErr     error
	AccountsErr  error
	PortfolioErr error
	OrderErr     error

	FindCalls      int
	PriceCalls     int
	AccountCalls   int
	PortfolioCalls int
	OrderCalls     int

	LastOrder trading.LimitOrder
}

var _ interfaces.Broker = (*FakeBroker)(nil)

func (f *FakeBroker) FindInstruments(_ context.Context, _ string) ([]trading.Instrument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FindCalls++
	if err := firstErr(f.Err, f.FindErr); err != nil {
		return nil, err
	}
	return f.Instruments, nil
}

func (f *FakeBroker) LastPrice(_ context.Context, _ string) (quotes.Quotation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PriceCalls++
	if err := firstErr(f.Err, f.PriceErr); err != nil {
		return quotes.Quotation{}, err
	}
	return f.Price, nil
}

func (f *FakeBroker) Accounts(_ context.Context) ([]trading.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AccountCalls++
	if err := firstErr(f.Err, f.AccountsErr); err != nil {
		return nil, err
	}
	return f.AccountsList, nil
}

func (f *FakeBroker) Portfolio(_ context.Context, accountID string) (*trading.Portfolio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PortfolioCalls++
	if err := firstErr(f.Err, f.PortfolioErr); err != nil {
		return nil, err
	}
	if f.PortfolioResult != nil {
		return f.PortfolioResult, nil
	}
	return &trading.Portfolio{AccountID: accountID, Positions: []trading.Position{}}, nil
}

func (f *FakeBroker) PostLimitOrder(_ context.Context, order trading.LimitOrder) (*trading.OrderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.OrderCalls++
	f.LastOrder = order
	if err := firstErr(f.Err, f.OrderErr); err != nil {
		return nil, err
	}
	if f.OrderResult != nil {
		return f.OrderResult, nil
	}
	return &trading.OrderResult{OrderID: "order-1", Status: "EXECUTION_REPORT_STATUS_NEW"}, nil
}

// Calls returns the total number of upstream calls issued.
func (f *FakeBroker) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.FindCalls + f.PriceCalls + f.AccountCalls + f.PortfolioCalls + f.OrderCalls
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
