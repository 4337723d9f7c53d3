package bigquery

import (
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/cashflow-insights/internal/domain"
	"github.com/shopspring/decimal"
)

// numericScale is the fractional precision of the BigQuery NUMERIC type.
const numericScale = 9

type RevenueRow struct {
	TransactionID   string              `bigquery:"transaction_id"`   // REQUIRED
	Amount          *big.Rat            `bigquery:"amount"`           // REQUIRED NUMERIC
	TransactionDate time.Time           `bigquery:"transaction_date"` // REQUIRED TIMESTAMP
	PlanID          string              `bigquery:"plan_id"`          // REQUIRED
	Category        bigquery.NullString `bigquery:"category"`         // NULLABLE
	Description     bigquery.NullString `bigquery:"description"`      // NULLABLE
	CustomerID      bigquery.NullString `bigquery:"customer_id"`      // NULLABLE
	CreatedTS       time.Time           `bigquery:"created_ts"`       // REQUIRED (default CURRENT_TIMESTAMP)
}

type ExpenseRow struct {
	TransactionID   string              `bigquery:"transaction_id"`   // REQUIRED
	Amount          *big.Rat            `bigquery:"amount"`           // REQUIRED NUMERIC
	TransactionDate time.Time           `bigquery:"transaction_date"` // REQUIRED TIMESTAMP
	Category        string              `bigquery:"category"`         // REQUIRED
	Description     bigquery.NullString `bigquery:"description"`      // NULLABLE
	Vendor          bigquery.NullString `bigquery:"vendor"`           // NULLABLE
	IsRecurring     bool                `bigquery:"is_recurring"`     // REQUIRED, default FALSE
	CreatedTS       time.Time           `bigquery:"created_ts"`       // REQUIRED (default CURRENT_TIMESTAMP)
}

// aggregateRow is the single row returned by aggregate queries.
type aggregateRow struct {
	Total *big.Rat `bigquery:"total"`
	N     int64    `bigquery:"n"`
}

// groupRow is one row returned by GROUP BY queries.
type groupRow struct {
	GroupKey string   `bigquery:"group_key"`
	Total    *big.Rat `bigquery:"total"`
	N        int64    `bigquery:"n"`
}

func ratToDecimal(r *big.Rat) (decimal.Decimal, error) {
	if r == nil {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(r.FloatString(numericScale))
	if err != nil {
		return decimal.Zero, fmt.Errorf("ratToDecimal: %w", err)
	}
	return d, nil
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}

func newRevenueRow(t domain.RevenueTransaction, now time.Time) *RevenueRow {
	return &RevenueRow{
		TransactionID:   t.ID,
		Amount:          t.Amount.Rat(),
		TransactionDate: t.Date.UTC(),
		PlanID:          t.PlanID,
		Category:        nullString(t.Category),
		Description:     nullString(t.Description),
		CustomerID:      nullString(t.CustomerID),
		CreatedTS:       now,
	}
}

func (r *RevenueRow) toDomain() (domain.RevenueTransaction, error) {
	amount, err := ratToDecimal(r.Amount)
	if err != nil {
		return domain.RevenueTransaction{}, fmt.Errorf("revenue %s: %w", r.TransactionID, err)
	}
	return domain.RevenueTransaction{
		ID:          r.TransactionID,
		Amount:      amount,
		Date:        r.TransactionDate,
		PlanID:      r.PlanID,
		Category:    r.Category.StringVal,
		Description: r.Description.StringVal,
		CustomerID:  r.CustomerID.StringVal,
	}, nil
}

func newExpenseRow(t domain.ExpenseTransaction, now time.Time) *ExpenseRow {
	return &ExpenseRow{
		TransactionID:   t.ID,
		Amount:          t.Amount.Rat(),
		TransactionDate: t.Date.UTC(),
		Category:        t.Category,
		Description:     nullString(t.Description),
		Vendor:          nullString(t.Vendor),
		IsRecurring:     t.IsRecurring,
		CreatedTS:       now,
	}
}

func (r *ExpenseRow) toDomain() (domain.ExpenseTransaction, error) {
	amount, err := ratToDecimal(r.Amount)
	if err != nil {
		return domain.ExpenseTransaction{}, fmt.Errorf("expense %s: %w", r.TransactionID, err)
	}
	return domain.ExpenseTransaction{
		ID:          r.TransactionID,
		Amount:      amount,
		Date:        r.TransactionDate,
		Category:    r.Category,
		Description: r.Description.StringVal,
		Vendor:      r.Vendor.StringVal,
		IsRecurring: r.IsRecurring,
	}, nil
}
