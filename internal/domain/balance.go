package domain

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// BalanceBook tracks per-asset balances. Used by the backtest exchange and the
// paper venue; live balances come from the exchange itself. Thread-safe.
type BalanceBook struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
}

// NewBalanceBook creates an empty balance book.
func NewBalanceBook() *BalanceBook {
	return &BalanceBook{balances: make(map[string]decimal.Decimal)}
}

// Get returns the balance for an asset, zero if the asset is unknown.
func (b *BalanceBook) Get(asset string) decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[asset]
}

// Credit adds amount to the asset's balance.
func (b *BalanceBook) Credit(asset string, amount decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[asset] = b.balances[asset].Add(amount)
}

// Debit subtracts amount from the asset's balance. Fails if the balance would
// go negative.
func (b *BalanceBook) Debit(asset string, amount decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	have := b.balances[asset]
	if have.LessThan(amount) {
		return fmt.Errorf("insufficient %s balance: need %s, have %s", asset, amount, have)
	}
	b.balances[asset] = have.Sub(amount)
	return nil
}

// Snapshot returns a copy of all balances.
func (b *BalanceBook) Snapshot() map[string]decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]decimal.Decimal, len(b.balances))
	for k, v := range b.balances {
		out[k] = v
	}
	return out
}
