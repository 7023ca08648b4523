package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestBalanceBook_CreditDebit(t *testing.T) {
	bb := NewBalanceBook()

	bb.Credit("BTC", decimal.NewFromInt(10))
	if !bb.Get("BTC").Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected 10, got %s", bb.Get("BTC"))
	}

	if err := bb.Debit("BTC", decimal.NewFromInt(3)); err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if !bb.Get("BTC").Equal(decimal.NewFromInt(7)) {
		t.Errorf("expected 7, got %s", bb.Get("BTC"))
	}
}

func TestBalanceBook_DebitInsufficient(t *testing.T) {
	bb := NewBalanceBook()
	bb.Credit("ETH", decimal.NewFromInt(1))

	if err := bb.Debit("ETH", decimal.NewFromInt(2)); err == nil {
		t.Error("expected error debiting more than the balance")
	}
	// Failed debit must not change the balance.
	if !bb.Get("ETH").Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1 after failed debit, got %s", bb.Get("ETH"))
	}
}

func TestBalanceBook_UnknownAssetIsZero(t *testing.T) {
	bb := NewBalanceBook()
	if !bb.Get("XRP").IsZero() {
		t.Errorf("expected zero for unknown asset, got %s", bb.Get("XRP"))
	}
}

func TestBalanceBook_Snapshot(t *testing.T) {
	bb := NewBalanceBook()
	bb.Credit("BTC", decimal.NewFromInt(1))
	bb.Credit("USD", decimal.NewFromInt(500))

	snap := bb.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(snap))
	}

	// Mutating the snapshot must not affect the book.
	snap["BTC"] = decimal.NewFromInt(99)
	if !bb.Get("BTC").Equal(decimal.NewFromInt(1)) {
		t.Errorf("snapshot mutation leaked into book: %s", bb.Get("BTC"))
	}
}
