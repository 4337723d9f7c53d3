package analytics

import (
	"context"
	"fmt"

	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/domain"
	"github.com/dvloznov/cashflow-insights/internal/store"
	"github.com/shopspring/decimal"
)

// ExpenseGrouping selects the breakdown of an expense summary.
type ExpenseGrouping string

const (
	ExpenseByCategory ExpenseGrouping = "category"
	ExpenseByMonth    ExpenseGrouping = "month"
	ExpenseByVendor   ExpenseGrouping = "vendor"
)

var hundred = decimal.NewFromInt(100)

// RecurringExpenses is the subset of expenses flagged as recurring.
type RecurringExpenses struct {
	Total      float64 `json:"total"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type ExpenseSummaryResult struct {
	Header
	TotalExpenses            float64           `json:"totalExpenses"`
	TotalTransactions        int               `json:"totalTransactions"`
	AverageTransactionAmount float64           `json:"averageTransactionAmount"`
	RecurringExpenses        RecurringExpenses `json:"recurringExpenses"`
	GroupBy                  ExpenseGrouping   `json:"groupBy"`
	GroupedData              []GroupBucket     `json:"groupedData"`
}

// ExpenseSummary totals expenses in the window, isolates recurring ones and breaks
// the total down by category, month or vendor.
func (e *Engine) ExpenseSummary(ctx context.Context, w daterange.Window, groupBy ExpenseGrouping) (ExpenseSummaryResult, error) {
	e.debug(ctx, "ExpenseSummary", w)

	var field store.GroupField
	switch groupBy {
	case ExpenseByCategory:
		field = store.GroupCategory
	case ExpenseByVendor:
		field = store.GroupVendor
	case ExpenseByMonth:
	default:
		return ExpenseSummaryResult{}, fmt.Errorf("Engine.ExpenseSummary: %w: %q", ErrInvalidGrouping, groupBy)
	}

	total, err := e.store.Aggregate(ctx, domain.KindExpense, w.DateRange, store.Filter{})
	if err != nil {
		return ExpenseSummaryResult{}, fmt.Errorf("Engine.ExpenseSummary: aggregate: %w", err)
	}

	recurringOnly := true
	recurring, err := e.store.Aggregate(ctx, domain.KindExpense, w.DateRange, store.Filter{Recurring: &recurringOnly})
	if err != nil {
		return ExpenseSummaryResult{}, fmt.Errorf("Engine.ExpenseSummary: aggregate recurring: %w", err)
	}

	var grouped []GroupBucket
	if groupBy == ExpenseByMonth {
		txs, err := e.store.ListExpenses(ctx, w.DateRange, store.ListOptions{})
		if err != nil {
			return ExpenseSummaryResult{}, fmt.Errorf("Engine.ExpenseSummary: list expenses: %w", err)
		}
		fold := monthFold{}
		for _, t := range txs {
			fold.add(t.Date, t.Amount)
		}
		grouped = fold.buckets()
	} else {
		groups, err := e.store.GroupBy(ctx, domain.KindExpense, w.DateRange, field)
		if err != nil {
			return ExpenseSummaryResult{}, fmt.Errorf("Engine.ExpenseSummary: group by %s: %w", field, err)
		}
		grouped = toBuckets(groups)
	}

	return ExpenseSummaryResult{
		Header:                   newHeader(w),
		TotalExpenses:            domain.ToFloat(total.Sum),
		TotalTransactions:        total.Count,
		AverageTransactionAmount: domain.ToFloat(total.Avg),
		RecurringExpenses: RecurringExpenses{
			Total:      domain.ToFloat(recurring.Sum),
			Count:      recurring.Count,
			Percentage: domain.ToFloat(domain.SafeDiv(recurring.Sum, total.Sum).Mul(hundred)),
		},
		GroupBy:     groupBy,
		GroupedData: grouped,
	}, nil
}
