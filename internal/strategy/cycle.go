package strategy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skeller88/cycle/internal/domain"
	"github.com/skeller88/cycle/internal/exchange"
	"github.com/skeller88/cycle/internal/execution"
	"github.com/skeller88/cycle/internal/storage"
)

// Params is the explicit, fully-validated configuration of a cycle executor.
type Params struct {
	Pair                   domain.Pair
	BuyWindow              domain.TimeWindow
	SellWindow             domain.TimeWindow
	OrderPaddingPercent    decimal.Decimal
	BalancePercentPerTrade decimal.Decimal

	Execution *execution.Service
	Store     *storage.Store
}

func (p Params) validate() error {
	if p.Pair.Base == "" || p.Pair.Quote == "" {
		return errors.New("pair base and quote are required")
	}
	if p.Execution == nil {
		return errors.New("execution service is required")
	}
	if p.Store == nil {
		return errors.New("store is required")
	}
	if p.OrderPaddingPercent.IsNegative() {
		return errors.New("order padding must be non-negative")
	}
	if !p.BalancePercentPerTrade.IsPositive() {
		return errors.New("balance fraction must be positive")
	}
	return nil
}

// CycleExecutor triggers at most one order per step: buy inside the buy
// window, sell inside the sell window, nothing otherwise. Counters of
// triggered orders are persisted durably after every submission.
//
// A single executor is driven by exactly one scheduler or replay driver;
// steps never overlap.
type CycleExecutor struct {
	params     Params
	strategyID string
	state      domain.ExecutionState
}

// NewCycleExecutor validates params at construction, not at first use.
func NewCycleExecutor(p Params) (*CycleExecutor, error) {
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("invalid cycle executor params: %w", err)
	}
	return &CycleExecutor{
		params:     p,
		strategyID: domain.StrategyID(p.Pair, p.BuyWindow, p.SellWindow),
	}, nil
}

// StrategyID returns the derived durable identity of this strategy.
func (c *CycleExecutor) StrategyID() string {
	return c.strategyID
}

// State returns the in-memory copy of the counters.
func (c *CycleExecutor) State() domain.ExecutionState {
	return c.state
}

// InitializeOrResume creates the execution record on first run, or resumes the
// existing one. Prior counters are never silently reset; on resume they are
// surfaced in the log so the operator sees what history is being continued.
func (c *CycleExecutor) InitializeOrResume(ctx context.Context) error {
	exec, err := c.params.Store.Initialize(ctx, c.strategyID)
	if errors.Is(err, domain.ErrAlreadyExists) {
		exec, err = c.params.Store.Load(ctx, c.strategyID)
		if err != nil {
			return fmt.Errorf("resuming %s: %w", c.strategyID, err)
		}
		slog.Info("resuming existing strategy execution",
			"strategy_id", c.strategyID,
			"buy_order_count", exec.State.BuyOrderCount,
			"sell_order_count", exec.State.SellOrderCount)
	} else if err != nil {
		return fmt.Errorf("initializing %s: %w", c.strategyID, err)
	} else {
		slog.Info("initialized strategy execution", "strategy_id", c.strategyID)
	}

	c.state = exec.State
	return nil
}

// Step runs one evaluation cycle: classify the window, and inside a window
// refresh balances and tickers, size and price the order, submit it at most
// once, then persist the incremented counter. Outside a window it returns
// immediately with no side effects.
//
// If persisting the counter fails after a successful submission, the order
// has still been placed; the resulting PersistenceError surfaces the
// inconsistency instead of hiding it.
func (c *CycleExecutor) Step(ctx context.Context, now time.Time, ex exchange.Exchange) error {
	side := domain.ClassifyWindow(now, c.params.BuyWindow, c.params.SellWindow)
	if side == domain.SideNone {
		return nil
	}

	// Refresh, never reuse quotes cached from a previous step.
	if err := ex.FetchBalances(ctx); err != nil {
		return &domain.MarketDataError{Op: "fetch balances", Err: err}
	}
	if err := ex.FetchLatestTickers(ctx); err != nil {
		return &domain.MarketDataError{Op: "fetch tickers", Err: err}
	}

	ticker, err := ex.GetTicker(c.params.Pair.Name())
	if err != nil {
		return &domain.MarketDataError{Op: "get ticker", Err: err}
	}

	var amount, price decimal.Decimal
	if side == domain.SideBuy {
		amount, price = SizeBuyOrder(c.params.BalancePercentPerTrade, c.params.OrderPaddingPercent,
			ex.GetBalance(c.params.Pair.Base), ticker.Ask)
	} else {
		amount, price = SizeSellOrder(c.params.BalancePercentPerTrade, c.params.OrderPaddingPercent,
			ex.GetBalance(c.params.Pair.Quote), ticker.Bid)
	}

	// Guard against corrupt or stale balance data.
	if !amount.IsPositive() {
		slog.Debug("skipping step: non-positive order amount",
			"strategy_id", c.strategyID,
			"side", string(side),
			"amount", amount.String())
		return nil
	}

	req := domain.OrderRequest{
		Base:     c.params.Pair.Base,
		Quote:    c.params.Pair.Quote,
		Side:     side,
		Amount:   amount,
		Price:    price,
		Exchange: ex.ID(),
	}

	order, err := c.params.Execution.ExecuteOrder(ctx, req, execution.ExecuteOptions{
		WritePendingOrder:  true,
		CheckIfOrderFilled: true,
	})
	if err != nil {
		return &domain.SubmissionError{OrderID: order.ID, Err: err}
	}

	next := c.state
	if side == domain.SideBuy {
		next.BuyOrderCount++
	} else {
		next.SellOrderCount++
	}

	if err := c.params.Store.UpdateCounters(ctx, c.strategyID, next); err != nil {
		// The order is already on the venue; the counters are now behind.
		slog.Error("order submitted but counter update failed; manual reconciliation required",
			"strategy_id", c.strategyID,
			"order_id", order.ID,
			"err", err)
		return &domain.PersistenceError{StrategyID: c.strategyID, Err: err}
	}
	c.state = next

	return nil
}
