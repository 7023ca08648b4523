// Package scheduler drives a strategy executor at a fixed wall-clock cadence.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/skeller88/cycle/internal/exchange"
	"github.com/skeller88/cycle/internal/strategy"
)

// Scheduler calls Step on an interval derived from executions per hour.
// Step errors are logged and do not stop the loop.
type Scheduler struct {
	executor strategy.Executor
	exchange exchange.Exchange
	interval time.Duration
}

func NewScheduler(executor strategy.Executor, ex exchange.Exchange, executionsPerHour int) *Scheduler {
	if executionsPerHour < 1 {
		executionsPerHour = 1
	}
	return &Scheduler{
		executor: executor,
		exchange: ex,
		interval: time.Duration(3600/executionsPerHour) * time.Second,
	}
}

// Interval reports the step cadence.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Run steps immediately, then on every tick until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("scheduler started", "interval", s.interval.String())

	s.step(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.step(ctx)
		}
	}
}

func (s *Scheduler) step(ctx context.Context) {
	if err := s.executor.Step(ctx, time.Now(), s.exchange); err != nil {
		slog.Error("strategy step failed", "error", err)
	}
}
