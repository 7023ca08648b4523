package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/skeller88/cycle/internal/domain"
	"github.com/skeller88/cycle/internal/infra"
)

// LiveExchange talks to a real venue: balances and ticker fallback over REST,
// with a websocket stream keeping the ticker cache fresh between REST calls.
// All REST calls go through a token-bucket rate limiter.
type LiveExchange struct {
	id         string
	restURL    string
	wsURL      string
	pairs      []string
	httpClient *http.Client
	limiter    *infra.RateLimiter

	balMu    sync.RWMutex
	balances map[string]decimal.Decimal

	tickMu  sync.RWMutex
	tickers map[string]domain.Ticker

	// staleAfter bounds how old a streamed quote may be before
	// FetchLatestTickers falls back to REST.
	staleAfter time.Duration

	ws *wsWorker
}

// NewLiveExchange builds a live exchange from config for the given pairs.
func NewLiveExchange(cfg *infra.Config, pairs []string) *LiveExchange {
	burst := int(cfg.Exchange.MaxRequestsPerSec)
	if burst < 1 {
		burst = 1
	}

	e := &LiveExchange{
		id:         cfg.Exchange.ID,
		restURL:    cfg.Exchange.RestURL,
		wsURL:      cfg.Exchange.WSURL,
		pairs:      pairs,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    infra.NewRateLimiter(burst, cfg.Exchange.MaxRequestsPerSec),
		balances:   make(map[string]decimal.Decimal),
		tickers:    make(map[string]domain.Ticker),
		staleAfter: 10 * time.Second,
	}
	if e.wsURL != "" {
		e.ws = newWSWorker(&tickerStreamHandler{exchange: e})
	}
	return e
}

// Start connects the ticker stream, if configured.
func (e *LiveExchange) Start(ctx context.Context) {
	if e.ws != nil {
		e.ws.Start(ctx)
	}
}

// Stop disconnects the ticker stream.
func (e *LiveExchange) Stop() {
	if e.ws != nil {
		e.ws.Stop()
	}
}

func (e *LiveExchange) ID() string { return e.id }

type wireBalance struct {
	Asset string          `json:"asset"`
	Free  decimal.Decimal `json:"free"`
}

type wireTicker struct {
	Pair      string          `json:"pair"`
	Bid       decimal.Decimal `json:"bid"`
	Ask       decimal.Decimal `json:"ask"`
	Timestamp int64           `json:"ts"` // unix milliseconds
}

// FetchBalances refreshes the balance snapshot over REST.
func (e *LiveExchange) FetchBalances(ctx context.Context) error {
	var resp struct {
		Balances []wireBalance `json:"balances"`
	}
	if err := e.getJSON(ctx, e.restURL+"/api/v1/balances", &resp); err != nil {
		return fmt.Errorf("fetching balances: %w", err)
	}

	e.balMu.Lock()
	defer e.balMu.Unlock()
	e.balances = make(map[string]decimal.Decimal, len(resp.Balances))
	for _, b := range resp.Balances {
		e.balances[b.Asset] = b.Free
	}
	return nil
}

// FetchLatestTickers refreshes quotes. Fresh streamed quotes satisfy the
// refresh; otherwise the REST endpoint is polled.
func (e *LiveExchange) FetchLatestTickers(ctx context.Context) error {
	if e.streamedQuotesFresh() {
		return nil
	}

	var resp struct {
		Tickers []wireTicker `json:"tickers"`
	}
	if err := e.getJSON(ctx, e.restURL+"/api/v1/tickers", &resp); err != nil {
		return fmt.Errorf("fetching tickers: %w", err)
	}

	e.tickMu.Lock()
	defer e.tickMu.Unlock()
	for _, t := range resp.Tickers {
		e.tickers[t.Pair] = domain.Ticker{
			Pair:      t.Pair,
			Bid:       t.Bid,
			Ask:       t.Ask,
			Exchange:  e.id,
			Timestamp: time.UnixMilli(t.Timestamp),
		}
	}
	return nil
}

func (e *LiveExchange) streamedQuotesFresh() bool {
	e.tickMu.RLock()
	defer e.tickMu.RUnlock()

	if len(e.tickers) == 0 {
		return false
	}
	cutoff := time.Now().Add(-e.staleAfter)
	for _, pair := range e.pairs {
		t, ok := e.tickers[pair]
		if !ok || t.Timestamp.Before(cutoff) {
			return false
		}
	}
	return true
}

func (e *LiveExchange) GetBalance(asset string) decimal.Decimal {
	e.balMu.RLock()
	defer e.balMu.RUnlock()
	return e.balances[asset]
}

func (e *LiveExchange) GetTicker(pairName string) (domain.Ticker, error) {
	e.tickMu.RLock()
	defer e.tickMu.RUnlock()
	t, ok := e.tickers[pairName]
	if !ok {
		return domain.Ticker{}, fmt.Errorf("no ticker for %s", pairName)
	}
	return t, nil
}

func (e *LiveExchange) setTicker(t domain.Ticker) {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()
	e.tickers[t.Pair] = t
}

func (e *LiveExchange) getJSON(ctx context.Context, url string, out any) error {
	e.limiter.Wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// tickerStreamHandler subscribes to ticker updates and feeds the cache.
type tickerStreamHandler struct {
	exchange *LiveExchange
}

func (h *tickerStreamHandler) GetURL() string { return h.exchange.wsURL }

func (h *tickerStreamHandler) ID() string { return h.exchange.id + "-tickers" }

func (h *tickerStreamHandler) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	sub := map[string]any{
		"op":      "subscribe",
		"channel": "ticker",
		"pairs":   h.exchange.pairs,
	}
	return conn.WriteJSON(sub)
}

func (h *tickerStreamHandler) OnMessage(ctx context.Context, msg []byte) {
	var t wireTicker
	if err := json.Unmarshal(msg, &t); err != nil || t.Pair == "" {
		return
	}
	h.exchange.setTicker(domain.Ticker{
		Pair:      t.Pair,
		Bid:       t.Bid,
		Ask:       t.Ask,
		Exchange:  h.exchange.id,
		Timestamp: time.UnixMilli(t.Timestamp),
	})
}

func (h *tickerStreamHandler) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}
