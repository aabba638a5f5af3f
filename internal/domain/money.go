package domain

import "github.com/shopspring/decimal"

// RoundMoney normalizes an amount to two-decimal currency precision.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// UnitPrice recovers the per-unit price from a line total.
// Returns zero for a non-positive quantity.
func UnitPrice(total decimal.Decimal, quantity int) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(int64(quantity)), 2)
}

// LineTotal computes a line total from a unit price and quantity.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return RoundMoney(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}
