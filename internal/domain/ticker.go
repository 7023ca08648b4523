package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticker is a top-of-book quote for a single pair on a single exchange.
// Prices are decimals; binary floating point is never used for money.
type Ticker struct {
	Pair      string          `json:"pair"` // canonical pair name, e.g. "BTC_USD"
	Bid       decimal.Decimal `json:"bid"`
	Ask       decimal.Decimal `json:"ask"`
	Exchange  string          `json:"exchange"`
	Timestamp time.Time       `json:"timestamp"`
}
