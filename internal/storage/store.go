package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/skeller88/cycle/internal/domain"
)

// Store persists strategy execution state and order records in SQLite. It is
// the durability boundary of the cycle executor: a step is not complete until
// its counter update has committed here.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS strategy_executions (
			strategy_id TEXT PRIMARY KEY,
			state TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create strategy_executions table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			pair TEXT NOT NULL,
			side TEXT NOT NULL,
			amount TEXT NOT NULL,
			price TEXT NOT NULL,
			exchange TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create orders table: %w", err)
	}

	return &Store{db: db}, nil
}

// Initialize creates and persists a zero-valued execution record. It fails
// with domain.ErrAlreadyExists if a record for the strategy exists: silently
// recreating one would reset counters and lose execution history.
func (s *Store) Initialize(ctx context.Context, strategyID string) (domain.StrategyExecution, error) {
	now := time.Now().Unix()
	exec := domain.StrategyExecution{
		StrategyID:    strategyID,
		CreatedAtUnix: now,
		UpdatedAtUnix: now,
	}

	stateJSON, err := json.Marshal(exec.State)
	if err != nil {
		return domain.StrategyExecution{}, fmt.Errorf("failed to marshal state: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO strategy_executions (strategy_id, state, created_at, updated_at) VALUES (?, ?, ?, ?) ON CONFLICT(strategy_id) DO NOTHING",
		strategyID, string(stateJSON), now, now,
	)
	if err != nil {
		return domain.StrategyExecution{}, fmt.Errorf("failed to insert strategy execution: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.StrategyExecution{}, err
	}
	if affected == 0 {
		return domain.StrategyExecution{}, fmt.Errorf("initialize %s: %w", strategyID, domain.ErrAlreadyExists)
	}

	return exec, nil
}

// Load fetches the execution record, failing with domain.ErrNotFound if absent.
func (s *Store) Load(ctx context.Context, strategyID string) (domain.StrategyExecution, error) {
	var (
		stateJSON string
		exec      domain.StrategyExecution
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT strategy_id, state, created_at, updated_at FROM strategy_executions WHERE strategy_id = ?",
		strategyID,
	).Scan(&exec.StrategyID, &stateJSON, &exec.CreatedAtUnix, &exec.UpdatedAtUnix)
	if err == sql.ErrNoRows {
		return domain.StrategyExecution{}, fmt.Errorf("load %s: %w", strategyID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.StrategyExecution{}, fmt.Errorf("failed to load strategy execution: %w", err)
	}

	if err := json.Unmarshal([]byte(stateJSON), &exec.State); err != nil {
		return domain.StrategyExecution{}, fmt.Errorf("failed to unmarshal state for %s: %w", strategyID, err)
	}

	return exec, nil
}

// UpdateCounters performs a read-modify-write of the counter state inside a
// transaction: the update is visible atomically to subsequent reads and is
// committed before the caller's step is considered complete. Counters may
// never move backwards; a regression indicates a second writer and is refused.
func (s *Store) UpdateCounters(ctx context.Context, strategyID string, state domain.ExecutionState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var stateJSON string
	err = tx.QueryRowContext(ctx,
		"SELECT state FROM strategy_executions WHERE strategy_id = ?", strategyID,
	).Scan(&stateJSON)
	if err == sql.ErrNoRows {
		return fmt.Errorf("update %s: %w", strategyID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read current state: %w", err)
	}

	var current domain.ExecutionState
	if err := json.Unmarshal([]byte(stateJSON), &current); err != nil {
		return fmt.Errorf("failed to unmarshal current state: %w", err)
	}

	if state.BuyOrderCount < current.BuyOrderCount || state.SellOrderCount < current.SellOrderCount {
		return fmt.Errorf("refusing non-monotonic counter update for %s: stored %+v, new %+v",
			strategyID, current, state)
	}

	newJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal new state: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE strategy_executions SET state = ?, updated_at = ? WHERE strategy_id = ?",
		string(newJSON), time.Now().Unix(), strategyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update state: %w", err)
	}

	return tx.Commit()
}

// SavePendingOrder records an order before it is handed to the venue, so a
// crash between write and submission leaves an auditable pending row.
func (s *Store) SavePendingOrder(ctx context.Context, order domain.Order) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO orders (id, pair, side, amount, price, exchange, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		order.ID, order.PairName(), string(order.Side), order.Amount.String(), order.Price.String(),
		order.Exchange, order.Status, order.CreatedAtUnix, order.CreatedAtUnix,
	)
	if err != nil {
		return fmt.Errorf("failed to save pending order %s: %w", order.ID, err)
	}
	return nil
}

// UpdateOrderStatus advances an order's lifecycle status.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now().Unix(), orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", orderID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("update order %s: %w", orderID, domain.ErrNotFound)
	}
	return nil
}

// GetOrderStatus returns the stored status of an order.
func (s *Store) GetOrderStatus(ctx context.Context, orderID string) (string, error) {
	var status string
	err := s.db.QueryRowContext(ctx, "SELECT status FROM orders WHERE id = ?", orderID).Scan(&status)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return status, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
