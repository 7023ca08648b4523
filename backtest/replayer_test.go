package backtest

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/skeller88/cycle/internal/exchange"
)

type recordingExecutor struct {
	mu    sync.Mutex
	times []time.Time
	bids  []string
}

func (r *recordingExecutor) InitializeOrResume(ctx context.Context) error { return nil }

func (r *recordingExecutor) Step(ctx context.Context, now time.Time, ex exchange.Exchange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.times = append(r.times, now)
	if t, err := ex.GetTicker("BTC_USD"); err == nil {
		r.bids = append(r.bids, t.Bid.String())
	}
	return nil
}

func (r *recordingExecutor) stepTimes() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Time(nil), r.times...)
}

// writeTickerFile writes minutes consecutive one-minute rows starting at start.
func writeTickerFile(t *testing.T, dir, name string, start time.Time, minutes int) {
	t.Helper()
	content := "app_create_timestamp,exchange,pair,bid,ask\n"
	for i := 0; i < minutes; i++ {
		ts := start.Add(time.Duration(i) * time.Minute)
		content += fmt.Sprintf("%s,paper,BTC_USD,%d,%d\n",
			ts.Format(time.RFC3339), 100+i, 101+i)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write ticker file: %v", err)
	}
}

func TestRun_EveryMinuteAtMaxCadence(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	writeTickerFile(t, dir, "2024-03-15.csv", start, 5)

	exec := &recordingExecutor{}
	r := NewReplayer(dir, 60, exchange.NewBacktestExchange("paper"), exec, rand.New(rand.NewSource(1)))

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	times := exec.stepTimes()
	if len(times) != 5 {
		t.Fatalf("stepped %d times, want 5", len(times))
	}
	for i, got := range times {
		want := start.Add(time.Duration(i) * time.Minute)
		if !got.Equal(want) {
			t.Errorf("step %d at %v, want %v", i, got, want)
		}
	}
	// Tickers published before each step must carry that minute's quote.
	if exec.bids[0] != "100" || exec.bids[4] != "104" {
		t.Errorf("bids = %v, want minute quotes 100..104", exec.bids)
	}
}

func TestRun_SameSeedIsReproducible(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	writeTickerFile(t, dir, "2024-03-15.csv", start, 240)

	run := func(seed int64) []time.Time {
		exec := &recordingExecutor{}
		r := NewReplayer(dir, 2, exchange.NewBacktestExchange("paper"), exec, rand.New(rand.NewSource(seed)))
		if err := r.Run(context.Background()); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return exec.stepTimes()
	}

	first := run(42)
	second := run(42)

	if len(first) == 0 {
		t.Fatal("seeded run never stepped over 4 hours at 2 executions per hour")
	}
	if len(first) != len(second) {
		t.Fatalf("runs stepped %d vs %d times with the same seed", len(first), len(second))
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Errorf("step %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestRun_FilesReplayInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	day1 := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 16, 12, 0, 0, 0, time.UTC)
	// Written out of order on purpose.
	writeTickerFile(t, dir, "2024-03-16.csv", day2, 2)
	writeTickerFile(t, dir, "2024-03-15.csv", day1, 2)

	exec := &recordingExecutor{}
	r := NewReplayer(dir, 60, exchange.NewBacktestExchange("paper"), exec, rand.New(rand.NewSource(1)))
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	times := exec.stepTimes()
	if len(times) != 4 {
		t.Fatalf("stepped %d times, want 4", len(times))
	}
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			t.Errorf("replay time went backwards at step %d: %v then %v", i, times[i-1], times[i])
		}
	}
}

func TestRun_EmptyDirFails(t *testing.T) {
	exec := &recordingExecutor{}
	r := NewReplayer(t.TempDir(), 60, exchange.NewBacktestExchange("paper"), exec, rand.New(rand.NewSource(1)))
	if err := r.Run(context.Background()); err == nil {
		t.Error("expected error for a ticker dir with no files")
	}
}
