package exchange

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/skeller88/cycle/internal/domain"
)

// BacktestExchange holds virtual balances and replayed tickers. The replay
// driver injects each minute bucket's tickers before invoking the strategy;
// the paper venue settles fills against the balance book.
type BacktestExchange struct {
	id       string
	balances *domain.BalanceBook

	mu      sync.RWMutex
	tickers map[string]domain.Ticker
}

// NewBacktestExchange creates an empty backtest exchange.
func NewBacktestExchange(id string) *BacktestExchange {
	return &BacktestExchange{
		id:       id,
		balances: domain.NewBalanceBook(),
		tickers:  make(map[string]domain.Ticker),
	}
}

func (e *BacktestExchange) ID() string { return e.id }

// Deposit credits the virtual account, e.g. the initial base capital before a
// replay starts.
func (e *BacktestExchange) Deposit(asset string, amount decimal.Decimal) {
	e.balances.Credit(asset, amount)
}

// SetLatestTickers replaces the quotes for the given tickers' pairs.
func (e *BacktestExchange) SetLatestTickers(tickers []domain.Ticker) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range tickers {
		e.tickers[t.Pair] = t
	}
}

// FetchBalances is a no-op: backtest balances are mutated only by deposits and
// paper fills, both of which update the book directly.
func (e *BacktestExchange) FetchBalances(ctx context.Context) error { return nil }

// FetchLatestTickers is a no-op: the replay driver injects tickers.
func (e *BacktestExchange) FetchLatestTickers(ctx context.Context) error { return nil }

func (e *BacktestExchange) GetBalance(asset string) decimal.Decimal {
	return e.balances.Get(asset)
}

func (e *BacktestExchange) GetTicker(pairName string) (domain.Ticker, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.tickers[pairName]
	if !ok {
		return domain.Ticker{}, fmt.Errorf("no ticker for %s", pairName)
	}
	return t, nil
}

// Balances exposes the balance book for the paper venue.
func (e *BacktestExchange) Balances() *domain.BalanceBook {
	return e.balances
}
