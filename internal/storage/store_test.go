package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skeller88/cycle/internal/domain"
)

const testStrategyID = "cycle_strategy_BTC_USD_buy_11_13_sell_20_22"

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cycle.db")
	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, dbPath
}

func TestStore_InitializeAndLoad(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	exec, err := store.Initialize(ctx, testStrategyID)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if exec.State.BuyOrderCount != 0 || exec.State.SellOrderCount != 0 {
		t.Errorf("expected zero counters, got %+v", exec.State)
	}

	loaded, err := store.Load(ctx, testStrategyID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.StrategyID != testStrategyID {
		t.Errorf("StrategyID = %q, want %q", loaded.StrategyID, testStrategyID)
	}
}

func TestStore_InitializeTwiceFails(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Initialize(ctx, testStrategyID); err != nil {
		t.Fatalf("first Initialize failed: %v", err)
	}

	_, err := store.Initialize(ctx, testStrategyID)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	// The second Initialize must not have reset the record.
	store.UpdateCounters(ctx, testStrategyID, domain.ExecutionState{BuyOrderCount: 2})
	if _, err := store.Initialize(ctx, testStrategyID); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	loaded, err := store.Load(ctx, testStrategyID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.State.BuyOrderCount != 2 {
		t.Errorf("counters were reset: %+v", loaded.State)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Load(context.Background(), "cycle_strategy_nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_UpdateCounters(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Initialize(ctx, testStrategyID); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	state := domain.ExecutionState{BuyOrderCount: 1, SellOrderCount: 0}
	if err := store.UpdateCounters(ctx, testStrategyID, state); err != nil {
		t.Fatalf("UpdateCounters failed: %v", err)
	}

	loaded, err := store.Load(ctx, testStrategyID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.State != state {
		t.Errorf("State = %+v, want %+v", loaded.State, state)
	}
}

func TestStore_UpdateCountersMissing(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.UpdateCounters(context.Background(), "cycle_strategy_nope", domain.ExecutionState{})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_RefusesCounterRegression(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Initialize(ctx, testStrategyID); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := store.UpdateCounters(ctx, testStrategyID, domain.ExecutionState{BuyOrderCount: 3}); err != nil {
		t.Fatalf("UpdateCounters failed: %v", err)
	}

	err := store.UpdateCounters(ctx, testStrategyID, domain.ExecutionState{BuyOrderCount: 2})
	if err == nil {
		t.Error("expected error for non-monotonic counter update")
	}
}

func TestStore_DurableAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cycle.db")
	ctx := context.Background()

	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if _, err := store.Initialize(ctx, testStrategyID); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	state := domain.ExecutionState{BuyOrderCount: 4, SellOrderCount: 7}
	if err := store.UpdateCounters(ctx, testStrategyID, state); err != nil {
		t.Fatalf("UpdateCounters failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Simulates a process restart: the last persisted counters survive.
	reopened, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	loaded, err := reopened.Load(ctx, testStrategyID)
	if err != nil {
		t.Fatalf("Load after reopen failed: %v", err)
	}
	if loaded.State != state {
		t.Errorf("State after reopen = %+v, want %+v", loaded.State, state)
	}
}

func TestStore_OrderLifecycle(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	order := domain.NewOrder(domain.OrderRequest{
		Base:     "BTC",
		Quote:    "USD",
		Side:     domain.SideBuy,
		Amount:   decimal.NewFromInt(5),
		Price:    decimal.NewFromInt(102),
		Exchange: "backtest",
	}, time.Now())

	if err := store.SavePendingOrder(ctx, order); err != nil {
		t.Fatalf("SavePendingOrder failed: %v", err)
	}

	status, err := store.GetOrderStatus(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrderStatus failed: %v", err)
	}
	if status != domain.StatusPending {
		t.Errorf("status = %q, want %q", status, domain.StatusPending)
	}

	if err := store.UpdateOrderStatus(ctx, order.ID, domain.StatusFilled); err != nil {
		t.Fatalf("UpdateOrderStatus failed: %v", err)
	}
	status, _ = store.GetOrderStatus(ctx, order.ID)
	if status != domain.StatusFilled {
		t.Errorf("status = %q, want %q", status, domain.StatusFilled)
	}

	if err := store.UpdateOrderStatus(ctx, "missing-id", domain.StatusFilled); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown order, got %v", err)
	}
}
