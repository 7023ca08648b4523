package strategy

import (
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// SizeBuyOrder sizes and prices a buy: the order commits balanceFraction of
// the base balance, bidding above the ask by the padding fraction so the limit
// order is likely to fill. Pure decimal arithmetic.
func SizeBuyOrder(balanceFraction, padding, baseBalance, ask decimal.Decimal) (amount, price decimal.Decimal) {
	amount = balanceFraction.Mul(baseBalance)
	price = ask.Mul(one.Add(padding))
	return amount, price
}

// SizeSellOrder sizes and prices a sell: the order commits balanceFraction of
// the quote balance, offering below the bid by the padding fraction.
func SizeSellOrder(balanceFraction, padding, quoteBalance, bid decimal.Decimal) (amount, price decimal.Decimal) {
	amount = balanceFraction.Mul(quoteBalance)
	price = bid.Mul(one.Sub(padding))
	return amount, price
}
