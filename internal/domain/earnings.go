package domain

import (
	"github.com/shopspring/decimal"
)

var (
	baseShare   = decimal.RequireFromString("0.90")
	amountShare = decimal.RequireFromString("0.85")
)

// CreatorEarnings returns the creator share of a purchase. A verified base price
// earns 90%, otherwise the paid amount earns 85%. Result is rounded to cents.
func CreatorEarnings(amount decimal.Decimal, basePrice decimal.NullDecimal) decimal.Decimal {
	if basePrice.Valid {
		return basePrice.Decimal.Mul(baseShare).Round(2)
	}
	return amount.Mul(amountShare).Round(2)
}
