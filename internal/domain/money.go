package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const monthKeyFormat = "2006-01"

// ToFloat converts a decimal amount into a float for JSON output.
// Arithmetic must stay in decimal until this call.
func ToFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// SafeDiv divides a by b, returning zero when b is zero.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// MonthKey buckets an instant into its UTC calendar month, formatted YYYY-MM.
func MonthKey(t time.Time) string {
	return t.UTC().Format(monthKeyFormat)
}
