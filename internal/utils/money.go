package utils

import (
	"github.com/shopspring/decimal"

	"travelo/internal/models"
)

var oneHundred = decimal.NewFromInt(100)

// PercentOf returns pct percent of total, rounded half-up to 2 decimal places.
func PercentOf(total models.Cents, pct decimal.Decimal) models.Cents {
	return models.CentsFromDecimal(total.Decimal().Mul(pct).Div(oneHundred))
}

// ClampDiscount bounds a discount to [0, cap] and never beyond the order total.
func ClampDiscount(discount, orderTotal, cap models.Cents) models.Cents {
	if discount < 0 {
		discount = 0
	}
	if cap > 0 && discount > cap {
		discount = cap
	}
	if discount > orderTotal {
		discount = orderTotal
	}
	return discount
}

// ClampPoints re-clamps a point balance at zero after a credit.
func ClampPoints(balance int64) int64 {
	if balance < 0 {
		return 0
	}
	return balance
}
