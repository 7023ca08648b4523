package domain

import "fmt"

// ExecutionState holds the cumulative counters for one strategy. Counters are
// non-negative and monotonically non-decreasing; at most one of the two
// increments per successful step.
type ExecutionState struct {
	BuyOrderCount  int64 `json:"buy_order_count"`
	SellOrderCount int64 `json:"sell_order_count"`
}

// StrategyExecution is the durable record tracking how many buy/sell orders a
// configured strategy has triggered over its lifetime.
type StrategyExecution struct {
	StrategyID    string
	State         ExecutionState
	CreatedAtUnix int64
	UpdatedAtUnix int64
}

// StrategyID derives the durable identity of a cycle strategy from its pair and
// window bounds, e.g. "cycle_strategy_BTC_USD_buy_11_13_sell_20_22".
func StrategyID(pair Pair, buy, sell TimeWindow) string {
	return fmt.Sprintf("cycle_strategy_%s_buy_%d_%d_sell_%d_%d",
		pair.Name(), buy.StartHour, buy.EndHour, sell.StartHour, sell.EndHour)
}
