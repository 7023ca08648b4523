package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skeller88/cycle/backtest"
	"github.com/skeller88/cycle/internal/app"
	"github.com/skeller88/cycle/internal/exchange"
	"github.com/skeller88/cycle/internal/execution"
	"github.com/skeller88/cycle/internal/infra"
	"github.com/skeller88/cycle/internal/scheduler"
	"github.com/skeller88/cycle/internal/strategy"
)

func main() {
	configPath := flag.String("config", "", "config file path (default: resolved from workspace)")
	live := flag.Bool("live", false, "trade against the live exchange instead of replaying")
	tickerDir := flag.String("ticker_dir", "", "directory of minute ticker CSV files (backtest)")
	seed := flag.Int64("seed", 0, "PRNG seed for reproducible backtests (0 = time-based)")
	flag.Parse()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath, *live); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()

	cfg := bootstrap.Config
	infra.PrintBanner(cfg, *live)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, bootstrap, *live, *tickerDir, *seed); err != nil && ctx.Err() == nil {
		slog.Error("❌ Run failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("👋 Shutting down gracefully...")
}

func run(ctx context.Context, bootstrap *app.Bootstrap, live bool, tickerDir string, seed int64) error {
	cfg := bootstrap.Config
	pairName := cfg.Cycle.Pair.Name()

	var ex exchange.Exchange
	var venue execution.Venue
	var paperEx *exchange.BacktestExchange

	if live {
		liveEx := exchange.NewLiveExchange(cfg, []string{pairName})
		liveEx.Start(ctx)
		defer liveEx.Stop()
		ex = liveEx
		venue = execution.NewRestVenue(cfg)
	} else {
		paperEx = exchange.NewBacktestExchange("paper")
		paperEx.Deposit(cfg.Cycle.Pair.Base, cfg.Cycle.InitialBaseCapital)
		ex = paperEx
		venue = execution.NewPaperVenue(paperEx)
	}

	svc := execution.NewService(venue, bootstrap.Store)
	defer svc.Close()

	executor, err := strategy.NewCycleExecutor(strategy.Params{
		Pair:                   cfg.Cycle.Pair,
		BuyWindow:              cfg.Cycle.BuyWindow,
		SellWindow:             cfg.Cycle.SellWindow,
		OrderPaddingPercent:    cfg.Cycle.OrderPaddingPercent,
		BalancePercentPerTrade: cfg.Cycle.BalancePercentPerTrade,
		Execution:              svc,
		Store:                  bootstrap.Store,
	})
	if err != nil {
		return err
	}

	if err := executor.InitializeOrResume(ctx); err != nil {
		return err
	}
	slog.Info("✅ Strategy ready", "strategy_id", executor.StrategyID())

	if live {
		return scheduler.NewScheduler(executor, ex, cfg.Cycle.ExecutionsPerHour).Run(ctx)
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	slog.Info("replay seed", "seed", seed)

	replayer := backtest.NewReplayer(tickerDir, cfg.Cycle.ExecutionsPerHour, paperEx, executor, rng)
	return replayer.Run(ctx)
}
