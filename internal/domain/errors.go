package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates no strategy execution record exists for the key.
	ErrNotFound = errors.New("strategy execution not found")
	// ErrAlreadyExists indicates a strategy execution record already exists.
	// Initializing over an existing record would silently reset counters, so
	// the store refuses; callers resume instead.
	ErrAlreadyExists = errors.New("strategy execution already exists")
)

// MarketDataError wraps a balance or ticker fetch failure. The step aborts
// without mutating state; the scheduler continues on the next tick.
type MarketDataError struct {
	Op  string
	Err error
}

func (e *MarketDataError) Error() string {
	return fmt.Sprintf("market data: %s: %v", e.Op, e.Err)
}

func (e *MarketDataError) Unwrap() error { return e.Err }

// SubmissionError wraps an order execution failure. The step aborts before any
// counter update; no partial increment ever occurs.
type SubmissionError struct {
	OrderID string
	Err     error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("order submission %s: %v", e.OrderID, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// PersistenceError wraps a counter update failure that occurred after a
// successful submission. The order has been placed; the bookkeeping is behind
// and needs manual reconciliation. The core never retries this itself.
type PersistenceError struct {
	StrategyID string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting state for %s: %v", e.StrategyID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
