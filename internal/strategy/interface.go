package strategy

import (
	"context"
	"time"

	"github.com/skeller88/cycle/internal/exchange"
)

// Executor is the contract the scheduler and replay driver invoke: strictly
// sequential, non-overlapping steps for the lifetime of the process.
type Executor interface {
	// InitializeOrResume prepares the durable execution record before the
	// first step.
	InitializeOrResume(ctx context.Context) error

	// Step evaluates one cycle at the given time against the given exchange.
	Step(ctx context.Context, now time.Time, ex exchange.Exchange) error
}
