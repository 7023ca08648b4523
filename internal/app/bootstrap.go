// Package app orchestrates application startup.
package app

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/skeller88/cycle/internal/infra"
	"github.com/skeller88/cycle/internal/storage"
)

// Bootstrap performs core system initialization and owns the resulting
// long-lived resources.
type Bootstrap struct {
	Config *infra.Config
	Store  *storage.Store

	unlock func()
}

func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads config, sets up logging, prepares the per-mode workspace
// and opens the execution store. configPath overrides the default resolution
// when non-empty.
func (b *Bootstrap) Initialize(configPath string, live bool) error {
	slog.Info("🚀 Bootstrapping cycle strategy...")

	if configPath == "" {
		configPath = infra.ResolveConfigPath()
	}
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// Live and backtest runs keep separate databases so a replay can never
	// touch live execution state.
	mode := "backtest"
	if live {
		mode = "live"
	}

	workDir := infra.GetWorkspaceDir()
	dataDir := filepath.Join(workDir, "data", mode)
	if err := infra.EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	// Single-process lock: two processes sharing a WAL database corrupt it.
	unlock, err := infra.CreateLockFile(workDir)
	if err != nil {
		return err
	}
	b.unlock = unlock

	dbPath := filepath.Join(dataDir, "cycle.db")
	store, err := storage.NewStore(dbPath)
	if err != nil {
		return err
	}
	b.Store = store
	slog.Info("✅ Execution store initialized (WAL-mode)", "path", dbPath, "mode", mode)

	return nil
}

// Close releases the store and the instance lock.
func (b *Bootstrap) Close() {
	if b.Store != nil {
		if err := b.Store.Close(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}
	if b.unlock != nil {
		b.unlock()
	}
}
