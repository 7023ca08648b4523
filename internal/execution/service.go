package execution

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/skeller88/cycle/internal/domain"
	"github.com/skeller88/cycle/internal/infra"
	"github.com/skeller88/cycle/internal/storage"
)

// ExecuteOptions controls per-call behavior of the execution service.
type ExecuteOptions struct {
	// WritePendingOrder persists the order before handing it to the venue, so
	// a crash between write and submission leaves an auditable pending row.
	WritePendingOrder bool
	// CheckIfOrderFilled polls the venue for fill status in the background
	// after a successful submission.
	CheckIfOrderFilled bool
}

// Service is the order execution collaborator: it owns delivery semantics
// (at-least-once handoff, fill confirmation, fault isolation) so the cycle
// executor only ever calls it once per step.
type Service struct {
	venue           Venue
	store           *storage.Store
	breaker         *infra.CircuitBreaker
	numStatusChecks int

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewService creates an execution service around a venue.
func NewService(venue Venue, store *storage.Store) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		venue:           venue,
		store:           store,
		breaker:         infra.NewCircuitBreaker(infra.DefaultCircuitBreakerConfig("order-submission")),
		numStatusChecks: 5,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// ExecuteOrder mints an order from the request and submits it to the venue.
// The venue is invoked at most once per call; failures are returned, never
// retried here (retry policy belongs to the caller's scheduler).
func (s *Service) ExecuteOrder(ctx context.Context, req domain.OrderRequest, opts ExecuteOptions) (domain.Order, error) {
	order := domain.NewOrder(req, time.Now())

	if opts.WritePendingOrder {
		if err := s.store.SavePendingOrder(ctx, order); err != nil {
			return order, fmt.Errorf("writing pending order: %w", err)
		}
	}

	if !s.breaker.Allow() {
		return order, fmt.Errorf("order submission rejected: venue circuit open")
	}

	if err := s.venue.PlaceOrder(ctx, order); err != nil {
		s.breaker.RecordFailure()
		if opts.WritePendingOrder {
			if serr := s.store.UpdateOrderStatus(ctx, order.ID, domain.StatusCanceled); serr != nil {
				slog.Error("failed to cancel rejected order record",
					"order_id", order.ID, "err", serr)
			}
		}
		return order, fmt.Errorf("placing order: %w", err)
	}
	s.breaker.RecordSuccess()

	order.Status = domain.StatusOpen
	if opts.WritePendingOrder {
		if err := s.store.UpdateOrderStatus(ctx, order.ID, domain.StatusOpen); err != nil {
			slog.Error("failed to mark order open", "order_id", order.ID, "err", err)
		}
	}

	slog.Info("order submitted",
		"order_id", order.ID,
		"pair", order.PairName(),
		"side", string(order.Side),
		"amount", order.Amount.String(),
		"price", order.Price.String())

	if opts.CheckIfOrderFilled {
		s.wg.Add(1)
		go s.pollFill(order)
	}

	return order, nil
}

// pollFill checks the venue a bounded number of times with exponential backoff
// and records the terminal status.
func (s *Service) pollFill(order domain.Order) {
	defer s.wg.Done()

	for attempt := 0; attempt < s.numStatusChecks; attempt++ {
		status, err := s.venue.FetchOrderStatus(s.ctx, order.ID)
		if err != nil {
			slog.Warn("fill check failed", "order_id", order.ID, "attempt", attempt, "err", err)
		} else if status == domain.StatusFilled || status == domain.StatusCanceled {
			if err := s.store.UpdateOrderStatus(s.ctx, order.ID, status); err != nil {
				slog.Error("failed to record order status", "order_id", order.ID, "err", err)
			} else {
				slog.Info("order reached terminal status", "order_id", order.ID, "status", status)
			}
			return
		}

		select {
		case <-s.ctx.Done():
			return
		case <-time.After(infra.CalculateBackoff(attempt)):
		}
	}

	slog.Warn("order still open after fill checks", "order_id", order.ID)
}

// Close stops background fill polling and waits for it to finish.
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}
