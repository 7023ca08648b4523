// Package backtest replays recorded minute tickers through a strategy executor.
package backtest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skeller88/cycle/internal/domain"
	"github.com/skeller88/cycle/internal/exchange"
	"github.com/skeller88/cycle/internal/strategy"
)

// Ticker CSV column order. Files are one row per pair per minute.
const (
	colTimestamp = iota
	colExchange
	colPair
	colBid
	colAsk
	numCols
)

// Replayer feeds ticker CSV files into a backtest exchange minute by minute
// and invokes the executor on randomly drawn minutes, matching the live
// scheduler's average cadence.
type Replayer struct {
	tickerDir         string
	executionsPerHour int
	exchange          *exchange.BacktestExchange
	executor          strategy.Executor
	rng               *rand.Rand
}

// NewReplayer wires a replay run. rng controls which minutes trigger a step;
// pass a seeded source for a reproducible replay.
func NewReplayer(tickerDir string, executionsPerHour int, ex *exchange.BacktestExchange, executor strategy.Executor, rng *rand.Rand) *Replayer {
	if executionsPerHour < 1 {
		executionsPerHour = 1
	}
	return &Replayer{
		tickerDir:         tickerDir,
		executionsPerHour: executionsPerHour,
		exchange:          ex,
		executor:          executor,
		rng:               rng,
	}
}

// Run replays every CSV file in the ticker directory in lexical order.
// Step errors are logged and the replay continues, as the live driver does.
func (r *Replayer) Run(ctx context.Context) error {
	files, err := r.listTickerFiles()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no ticker files found in %s", r.tickerDir)
	}

	slog.Info("replay started", "files", len(files), "dir", r.tickerDir)

	var bucket []domain.Ticker
	var bucketTime time.Time
	rows := 0

	for _, path := range files {
		if err := r.replayFile(ctx, path, &bucket, &bucketTime, &rows); err != nil {
			return err
		}
	}

	// Last bucket has no successor row to flush it.
	if len(bucket) > 0 {
		r.flushBucket(ctx, bucketTime, bucket)
	}

	slog.Info("replay finished", "rows", rows)
	return nil
}

func (r *Replayer) listTickerFiles() ([]string, error) {
	entries, err := os.ReadDir(r.tickerDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read ticker dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".csv" {
			continue
		}
		files = append(files, filepath.Join(r.tickerDir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func (r *Replayer) replayFile(ctx context.Context, path string, bucket *[]domain.Ticker, bucketTime *time.Time, rows *int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open ticker file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = numCols

	// Header row.
	if _, err := reader.Read(); err != nil {
		return fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read row in %s: %w", path, err)
		}

		ticker, err := parseRow(record)
		if err != nil {
			return fmt.Errorf("bad row in %s: %w", path, err)
		}
		*rows++

		minute := ticker.Timestamp.Truncate(time.Minute)
		if !minute.Equal(*bucketTime) {
			if len(*bucket) > 0 {
				r.flushBucket(ctx, *bucketTime, *bucket)
			}
			*bucket = (*bucket)[:0]
			*bucketTime = minute
		}
		*bucket = append(*bucket, ticker)
	}
}

// flushBucket publishes a minute's tickers and draws whether to step. With
// executionsPerHour of the 60 minute buckets per hour eligible on average,
// the draw succeeds with probability executionsPerHour/60.
func (r *Replayer) flushBucket(ctx context.Context, bucketTime time.Time, bucket []domain.Ticker) {
	r.exchange.SetLatestTickers(bucket)

	n := 60 / r.executionsPerHour
	if n > 1 && r.rng.Intn(n) != 0 {
		return
	}

	if err := r.executor.Step(ctx, bucketTime, r.exchange); err != nil {
		slog.Error("strategy step failed during replay",
			"time", bucketTime.Format(time.RFC3339), "error", err)
	}
}

func parseRow(record []string) (domain.Ticker, error) {
	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return domain.Ticker{}, fmt.Errorf("invalid timestamp %q: %w", record[colTimestamp], err)
	}
	bid, err := decimal.NewFromString(record[colBid])
	if err != nil {
		return domain.Ticker{}, fmt.Errorf("invalid bid %q: %w", record[colBid], err)
	}
	ask, err := decimal.NewFromString(record[colAsk])
	if err != nil {
		return domain.Ticker{}, fmt.Errorf("invalid ask %q: %w", record[colAsk], err)
	}

	return domain.Ticker{
		Pair:      record[colPair],
		Exchange:  record[colExchange],
		Bid:       bid,
		Ask:       ask,
		Timestamp: ts.UTC(),
	}, nil
}
