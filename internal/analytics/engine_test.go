package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/domain"
	"github.com/dvloznov/cashflow-insights/internal/store/inmemory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func window2024() daterange.Window {
	return daterange.Window{
		Period: daterange.PeriodCustom,
		DateRange: daterange.Range{
			Start: utcDay(2024, 1, 1),
			End:   time.Date(2024, 12, 31, 23, 59, 59, 999_000_000, time.UTC),
		},
	}
}

func rev(id string, amount int64, date time.Time, plan string) domain.RevenueTransaction {
	return domain.RevenueTransaction{ID: id, Amount: decimal.NewFromInt(amount), Date: date, PlanID: plan}
}

func exp(id string, amount int64, date time.Time, category string) domain.ExpenseTransaction {
	return domain.ExpenseTransaction{ID: id, Amount: decimal.NewFromInt(amount), Date: date, Category: category}
}

// newMemoryEngine builds an engine over an in-memory store holding the given rows.
func newMemoryEngine(t *testing.T, revenue []domain.RevenueTransaction, expenses []domain.ExpenseTransaction) *Engine {
	t.Helper()
	s := inmemory.NewStore()
	ctx := context.Background()
	require.NoError(t, s.InsertRevenue(ctx, revenue))
	require.NoError(t, s.InsertExpenses(ctx, expenses))
	return NewEngine(s, zerolog.Nop())
}
