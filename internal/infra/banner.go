package infra

import (
	"fmt"
)

// ANSI color codes
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
)

// PrintBanner displays the startup banner with a mode-specific warning.
func PrintBanner(cfg *Config, live bool) {
	mode := "BACKTEST"
	modeDesc := "REPLAYED TICKER DATA"
	color := colorCyan
	if live {
		mode = "LIVE"
		modeDesc = "REAL EXCHANGE ORDERS"
		color = colorRed
	}

	fmt.Println()
	fmt.Printf("%s###########################################################%s\n", color, colorReset)
	fmt.Printf("%s#              Cycle Window Trading Strategy              #%s\n", color, colorReset)
	fmt.Printf("%s#   MODE:    %-44s #%s\n", color, mode, colorReset)
	fmt.Printf("%s#   TYPE:    %-44s #%s\n", color, modeDesc, colorReset)
	fmt.Printf("%s#   VERSION: %-44s #%s\n", color, cfg.App.Version, colorReset)
	fmt.Printf("%s#   PAIR:    %-44s #%s\n", color, cfg.Cycle.Pair.Name(), colorReset)
	if live {
		fmt.Printf("%s#   WARNING: ORDERS WILL BE PLACED WITH REAL BALANCES     #%s\n", colorRed, colorReset)
	}
	fmt.Printf("%s###########################################################%s\n", color, colorReset)
	fmt.Println()
}
