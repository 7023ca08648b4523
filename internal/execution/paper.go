package execution

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skeller88/cycle/internal/domain"
	"github.com/skeller88/cycle/internal/exchange"
)

// Fill records a simulated execution.
type Fill struct {
	OrderID   string
	Pair      string
	Side      domain.OrderSide
	Price     decimal.Decimal
	Amount    decimal.Decimal
	Timestamp time.Time
}

// PaperVenue fills orders immediately against the backtest exchange's virtual
// balances. Used for replays and pre-production validation.
type PaperVenue struct {
	exchange *exchange.BacktestExchange

	mu     sync.Mutex
	orders map[string]domain.Order
	fills  []Fill
}

// NewPaperVenue creates a paper venue settling against the given exchange.
func NewPaperVenue(ex *exchange.BacktestExchange) *PaperVenue {
	return &PaperVenue{
		exchange: ex,
		orders:   make(map[string]domain.Order),
		fills:    make([]Fill, 0),
	}
}

// PlaceOrder executes the order at its limit price against the virtual
// balance book. Buys debit quote and credit base; sells the reverse.
func (p *PaperVenue) PlaceOrder(ctx context.Context, order domain.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	balances := p.exchange.Balances()

	switch order.Side {
	case domain.SideBuy:
		cost := order.Amount.Mul(order.Price)
		if err := balances.Debit(order.Quote, cost); err != nil {
			return err
		}
		balances.Credit(order.Base, order.Amount)

	case domain.SideSell:
		if err := balances.Debit(order.Base, order.Amount); err != nil {
			return err
		}
		balances.Credit(order.Quote, order.Amount.Mul(order.Price))

	default:
		return fmt.Errorf("invalid order side %q", order.Side)
	}

	order.Status = domain.StatusFilled
	p.orders[order.ID] = order
	p.fills = append(p.fills, Fill{
		OrderID:   order.ID,
		Pair:      order.PairName(),
		Side:      order.Side,
		Price:     order.Price,
		Amount:    order.Amount,
		Timestamp: time.Now(),
	})

	slog.Debug("paper fill",
		"order_id", order.ID,
		"pair", order.PairName(),
		"side", string(order.Side),
		"amount", order.Amount.String(),
		"price", order.Price.String())

	return nil
}

// FetchOrderStatus returns the stored status; paper orders fill on placement.
func (p *PaperVenue) FetchOrderStatus(ctx context.Context, orderID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	order, ok := p.orders[orderID]
	if !ok {
		return "", fmt.Errorf("order not found: %s", orderID)
	}
	return order.Status, nil
}

// Fills returns a copy of all recorded fills.
func (p *PaperVenue) Fills() []Fill {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Fill, len(p.fills))
	copy(out, p.fills)
	return out
}
