package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSizeBuyOrder(t *testing.T) {
	// amount = 0.5 * 10 = 5; price = 100 * 1.02 = 102
	amount, price := SizeBuyOrder(dec("0.5"), dec("0.02"), dec("10"), dec("100"))

	if !amount.Equal(dec("5")) {
		t.Errorf("amount = %s, want 5", amount)
	}
	if !price.Equal(dec("102")) {
		t.Errorf("price = %s, want 102", price)
	}
}

func TestSizeSellOrder(t *testing.T) {
	// amount = 0.5 * 200 = 100; price = 100 * 0.98 = 98
	amount, price := SizeSellOrder(dec("0.5"), dec("0.02"), dec("200"), dec("100"))

	if !amount.Equal(dec("100")) {
		t.Errorf("amount = %s, want 100", amount)
	}
	if !price.Equal(dec("98")) {
		t.Errorf("price = %s, want 98", price)
	}
}

func TestSizeOrder_ZeroPadding(t *testing.T) {
	_, buyPrice := SizeBuyOrder(dec("0.5"), dec("0"), dec("10"), dec("100"))
	if !buyPrice.Equal(dec("100")) {
		t.Errorf("buy price with zero padding = %s, want 100", buyPrice)
	}

	_, sellPrice := SizeSellOrder(dec("0.5"), dec("0"), dec("10"), dec("100"))
	if !sellPrice.Equal(dec("100")) {
		t.Errorf("sell price with zero padding = %s, want 100", sellPrice)
	}
}

func TestSizeOrder_NegativeBalancePropagates(t *testing.T) {
	// A corrupt negative balance yields a negative amount, which the executor
	// rejects before submission.
	amount, _ := SizeBuyOrder(dec("0.5"), dec("0.02"), dec("-10"), dec("100"))
	if !amount.IsNegative() {
		t.Errorf("amount = %s, want negative", amount)
	}
}

func TestSizeOrder_DecimalPrecision(t *testing.T) {
	// 0.1 * 0.3 must be exactly 0.03; float64 would drift.
	amount, _ := SizeBuyOrder(dec("0.1"), dec("0"), dec("0.3"), dec("1"))
	if !amount.Equal(dec("0.03")) {
		t.Errorf("amount = %s, want exactly 0.03", amount)
	}
}
