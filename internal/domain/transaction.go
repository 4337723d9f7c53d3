package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies which of the two transaction collections a record belongs to.
type Kind string

const (
	KindRevenue Kind = "revenue"
	KindExpense Kind = "expense"
)

// RevenueTransaction is one incoming payment attributed to a pricing plan.
// Optional text fields use the empty string for "absent".
type RevenueTransaction struct {
	ID          string          // unique identifier
	Amount      decimal.Decimal // currency amount, expected non-negative
	Date        time.Time       // instant the payment was booked
	PlanID      string          // required, identifies the pricing plan
	Category    string          // optional
	Description string          // optional
	CustomerID  string          // optional
}

// ExpenseTransaction is one outgoing payment.
type ExpenseTransaction struct {
	ID          string
	Amount      decimal.Decimal
	Date        time.Time
	Category    string // required
	Description string // optional
	Vendor      string // optional
	IsRecurring bool
}
