package exchange

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skeller88/cycle/internal/domain"
)

func TestBacktestExchange_DepositAndBalance(t *testing.T) {
	ex := NewBacktestExchange("backtest")

	ex.Deposit("BTC", decimal.NewFromInt(2))
	ex.Deposit("BTC", decimal.NewFromInt(1))

	if !ex.GetBalance("BTC").Equal(decimal.NewFromInt(3)) {
		t.Errorf("balance = %s, want 3", ex.GetBalance("BTC"))
	}
	if !ex.GetBalance("USD").IsZero() {
		t.Errorf("unknown asset balance = %s, want 0", ex.GetBalance("USD"))
	}
}

func TestBacktestExchange_Tickers(t *testing.T) {
	ex := NewBacktestExchange("backtest")

	if _, err := ex.GetTicker("BTC_USD"); err == nil {
		t.Error("expected error before any tickers are set")
	}

	ex.SetLatestTickers([]domain.Ticker{{
		Pair:      "BTC_USD",
		Bid:       decimal.NewFromInt(99),
		Ask:       decimal.NewFromInt(101),
		Exchange:  "backtest",
		Timestamp: time.Now(),
	}})

	tkr, err := ex.GetTicker("BTC_USD")
	if err != nil {
		t.Fatalf("GetTicker failed: %v", err)
	}
	if !tkr.Ask.Equal(decimal.NewFromInt(101)) {
		t.Errorf("ask = %s, want 101", tkr.Ask)
	}

	// A later bucket replaces the quote.
	ex.SetLatestTickers([]domain.Ticker{{
		Pair: "BTC_USD",
		Bid:  decimal.NewFromInt(100),
		Ask:  decimal.NewFromInt(102),
	}})
	tkr, _ = ex.GetTicker("BTC_USD")
	if !tkr.Ask.Equal(decimal.NewFromInt(102)) {
		t.Errorf("ask after update = %s, want 102", tkr.Ask)
	}
}

func TestBacktestExchange_FetchesAreNoOps(t *testing.T) {
	ex := NewBacktestExchange("backtest")
	ctx := context.Background()

	if err := ex.FetchBalances(ctx); err != nil {
		t.Errorf("FetchBalances: %v", err)
	}
	if err := ex.FetchLatestTickers(ctx); err != nil {
		t.Errorf("FetchLatestTickers: %v", err)
	}
}
