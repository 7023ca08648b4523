package execution

import (
	"context"

	"github.com/skeller88/cycle/internal/domain"
)

// Venue submits orders to an execution destination (paper or a real exchange).
type Venue interface {
	// PlaceOrder hands a new order to the venue.
	PlaceOrder(ctx context.Context, order domain.Order) error

	// FetchOrderStatus returns the venue's view of an order's status.
	FetchOrderStatus(ctx context.Context, orderID string) (string, error)
}
