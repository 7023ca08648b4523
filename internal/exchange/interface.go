package exchange

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/skeller88/cycle/internal/domain"
)

// Exchange provides balance and ticker snapshots for one venue. The cycle
// executor refreshes both at the start of every in-window step so it never
// acts on quotes cached from a previous step.
type Exchange interface {
	// ID identifies the venue, e.g. "binance" or "backtest".
	ID() string

	// FetchBalances refreshes the exchange's balance snapshot.
	FetchBalances(ctx context.Context) error

	// FetchLatestTickers refreshes the exchange's ticker snapshot.
	FetchLatestTickers(ctx context.Context) error

	// GetBalance returns the balance for an asset from the latest snapshot.
	GetBalance(asset string) decimal.Decimal

	// GetTicker returns the latest quote for a pair name.
	GetTicker(pairName string) (domain.Ticker, error)
}
