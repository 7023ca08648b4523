package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderSide is the direction of an order.
type OrderSide string

const (
	SideNone OrderSide = ""
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// Order lifecycle statuses.
const (
	StatusPending  = "PENDING" // written locally, not yet handed to the venue
	StatusOpen     = "OPEN"    // accepted by the venue
	StatusFilled   = "FILLED"
	StatusCanceled = "CANCELED"
)

// OrderRequest is the ephemeral value built by the cycle executor for a single
// step. It is owned by the executor until handed to the execution service.
type OrderRequest struct {
	Base     string
	Quote    string
	Side     OrderSide
	Amount   decimal.Decimal
	Price    decimal.Decimal
	Exchange string
}

// PairName returns the canonical pair name of the request.
func (r OrderRequest) PairName() string {
	return Pair{Base: r.Base, Quote: r.Quote}.Name()
}

// Order is a submitted (or about to be submitted) order with durable identity.
type Order struct {
	ID            string
	Base          string
	Quote         string
	Side          OrderSide
	Amount        decimal.Decimal
	Price         decimal.Decimal
	Exchange      string
	Status        string
	CreatedAtUnix int64
}

// NewOrder mints an order from a request with a fresh ID and pending status.
func NewOrder(req OrderRequest, now time.Time) Order {
	return Order{
		ID:            uuid.NewString(),
		Base:          req.Base,
		Quote:         req.Quote,
		Side:          req.Side,
		Amount:        req.Amount,
		Price:         req.Price,
		Exchange:      req.Exchange,
		Status:        StatusPending,
		CreatedAtUnix: now.Unix(),
	}
}

// PairName returns the canonical pair name of the order.
func (o Order) PairName() string {
	return Pair{Base: o.Base, Quote: o.Quote}.Name()
}

// IsOpen reports whether the order is still active on the venue.
func (o Order) IsOpen() bool {
	return o.Status == StatusPending || o.Status == StatusOpen
}
