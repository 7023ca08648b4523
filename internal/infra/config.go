package infra

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/skeller88/cycle/internal/domain"
)

// CycleConfig is the immutable strategy configuration, loaded once at process
// start and passed by value into the executor and drivers. Never mutated.
type CycleConfig struct {
	// ExecutionsPerHour is how many times per hour the strategy is evaluated.
	ExecutionsPerHour int
	// OrdersPerHour documents how many orders to place per in-window hour.
	// Step logic does not consult it yet; it is carried for operator intent.
	OrdersPerHour int
	// OrderPaddingPercent pushes limit prices away from the touch to increase
	// fill probability: buys bid above the ask, sells offer below the bid.
	OrderPaddingPercent decimal.Decimal
	// BalancePercentPerTrade is the share of available balance committed to a
	// single triggered order.
	BalancePercentPerTrade decimal.Decimal

	BuyWindow  domain.TimeWindow
	SellWindow domain.TimeWindow

	Pair domain.Pair

	// InitialBaseCapital is deposited into the backtest exchange before a
	// replay starts. Unused in live mode.
	InitialBaseCapital decimal.Decimal
}

// Config holds all application settings. File values are overridden by
// environment variables; the cycle section is environment-only, matching the
// strategy's documented variable surface.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // "text" or "json"
	} `yaml:"logging"`

	Exchange struct {
		ID                string  `yaml:"id"`
		RestURL           string  `yaml:"rest_url"`
		WSURL             string  `yaml:"ws_url"`
		MaxRequestsPerSec float64 `yaml:"max_requests_per_sec"`
	} `yaml:"exchange"`

	Cycle CycleConfig `yaml:"-"`
}

// LoadConfig reads the optional config file, applies environment overrides, and
// validates the result. Any failure here is fatal at startup.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Config file is optional; environment variables carry the rest.
	default:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Name = "cycle-go"
	cfg.App.Version = "dev"
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	cfg.Exchange.ID = "binance"
	cfg.Exchange.MaxRequestsPerSec = 5

	cfg.Cycle = CycleConfig{
		ExecutionsPerHour:      1,
		OrdersPerHour:          1,
		OrderPaddingPercent:    decimal.RequireFromString("0.02"),
		BalancePercentPerTrade: decimal.RequireFromString("0.5"),
		BuyWindow:              domain.TimeWindow{StartHour: 11, EndHour: 13},
		SellWindow:             domain.TimeWindow{StartHour: 20, EndHour: 22},
		Pair:                   domain.Pair{Base: "BTC", Quote: "USD"},
		InitialBaseCapital:     decimal.NewFromInt(1),
	}
	return cfg
}

// overrideWithEnv applies environment variables on top of file values.
func overrideWithEnv(cfg *Config) error {
	if v := os.Getenv("CYCLE_EXCHANGE_REST_URL"); v != "" {
		cfg.Exchange.RestURL = v
	}
	if v := os.Getenv("CYCLE_EXCHANGE_WS_URL"); v != "" {
		cfg.Exchange.WSURL = v
	}
	if v := os.Getenv("CYCLE_BASE_CURRENCY"); v != "" {
		cfg.Cycle.Pair.Base = v
	}
	if v := os.Getenv("CYCLE_QUOTE_CURRENCY"); v != "" {
		cfg.Cycle.Pair.Quote = v
	}

	var err error
	c := &cfg.Cycle
	if c.ExecutionsPerHour, err = envInt("EXECUTIONS_PER_HOUR", c.ExecutionsPerHour); err != nil {
		return err
	}
	if c.OrdersPerHour, err = envInt("ORDERS_PER_HOUR", c.OrdersPerHour); err != nil {
		return err
	}
	if c.OrderPaddingPercent, err = envDecimal("ORDER_PADDING_PERCENT", c.OrderPaddingPercent); err != nil {
		return err
	}
	if c.BalancePercentPerTrade, err = envDecimal("BALANCE_PERCENT_PER_TRADE", c.BalancePercentPerTrade); err != nil {
		return err
	}
	if c.InitialBaseCapital, err = envDecimal("CYCLE_INITIAL_BASE_CAPITAL", c.InitialBaseCapital); err != nil {
		return err
	}
	if c.BuyWindow.StartHour, err = envInt("BUY_WINDOW_UTC_HOUR_START", c.BuyWindow.StartHour); err != nil {
		return err
	}
	if c.BuyWindow.EndHour, err = envInt("BUY_WINDOW_UTC_HOUR_END", c.BuyWindow.EndHour); err != nil {
		return err
	}
	if c.SellWindow.StartHour, err = envInt("SELL_WINDOW_UTC_HOUR_START", c.SellWindow.StartHour); err != nil {
		return err
	}
	if c.SellWindow.EndHour, err = envInt("SELL_WINDOW_UTC_HOUR_END", c.SellWindow.EndHour); err != nil {
		return err
	}
	return nil
}

func envInt(name string, fallback int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not an integer: %w", name, v, err)
	}
	return n, nil
}

func envDecimal(name string, fallback decimal.Decimal) (decimal.Decimal, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s=%q is not a decimal: %w", name, v, err)
	}
	return d, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	cy := c.Cycle
	if cy.ExecutionsPerHour < 1 || cy.ExecutionsPerHour > 60 {
		return fmt.Errorf("EXECUTIONS_PER_HOUR must be in [1, 60], got %d", cy.ExecutionsPerHour)
	}
	if cy.OrderPaddingPercent.IsNegative() {
		return fmt.Errorf("ORDER_PADDING_PERCENT must be >= 0, got %s", cy.OrderPaddingPercent)
	}
	if !cy.BalancePercentPerTrade.IsPositive() || cy.BalancePercentPerTrade.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("BALANCE_PERCENT_PER_TRADE must be in (0, 1], got %s", cy.BalancePercentPerTrade)
	}
	for _, w := range []struct {
		name   string
		window domain.TimeWindow
	}{
		{"buy", cy.BuyWindow},
		{"sell", cy.SellWindow},
	} {
		if w.window.StartHour < 0 || w.window.StartHour > 23 || w.window.EndHour < 0 || w.window.EndHour > 24 {
			return fmt.Errorf("%s window hours out of range: [%d, %d)", w.name, w.window.StartHour, w.window.EndHour)
		}
		if w.window.StartHour >= w.window.EndHour {
			return fmt.Errorf("%s window is empty: [%d, %d)", w.name, w.window.StartHour, w.window.EndHour)
		}
	}
	if cy.Pair.Base == "" || cy.Pair.Quote == "" {
		return fmt.Errorf("pair base and quote currencies are required")
	}
	if c.Exchange.MaxRequestsPerSec <= 0 {
		return fmt.Errorf("exchange max_requests_per_sec must be positive")
	}
	return nil
}
