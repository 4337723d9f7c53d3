package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/domain"
	"github.com/dvloznov/cashflow-insights/internal/store"
	"golang.org/x/sync/errgroup"
)

const (
	recentPerKind = 50
	maxTableRows  = 100
	tableDate     = "2006-01-02"
)

// DashboardMetrics are the headline figures of the dashboard.
type DashboardMetrics struct {
	TotalRevenue   float64   `json:"totalRevenue"`
	TotalExpenses  float64   `json:"totalExpenses"`
	NetCashflow    float64   `json:"netCashflow"`
	ActiveAccounts int       `json:"activeAccounts"`
	LastUpdated    time.Time `json:"lastUpdated"`
}

// ChartPoint is one month of the dashboard chart, dated on the first of the month.
type ChartPoint struct {
	Date        string  `json:"date"`
	Revenue     float64 `json:"revenue"`
	Expenses    float64 `json:"expenses"`
	NetCashflow float64 `json:"netCashflow"`
}

// TableRow is one recent transaction. Expense amounts are negative.
type TableRow struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Source      string  `json:"source"`
}

type DashboardPeriod struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Label     string    `json:"label"`
}

type DashboardResult struct {
	Metrics   DashboardMetrics `json:"metrics"`
	ChartData []ChartPoint     `json:"chartData"`
	TableData []TableRow       `json:"tableData"`
	Period    DashboardPeriod  `json:"period"`
}

// Dashboard assembles headline metrics, a monthly chart and the most recent
// transactions. The underlying store queries run concurrently.
func (e *Engine) Dashboard(ctx context.Context, w daterange.Window) (DashboardResult, error) {
	e.debug(ctx, "Dashboard", w)

	var (
		revenueTotal, expenseTotal store.Aggregate
		customers                  int
		revenue                    []domain.RevenueTransaction
		expenses                   []domain.ExpenseTransaction
		recentRevenue              []domain.RevenueTransaction
		recentExpenses             []domain.ExpenseTransaction
	)
	rng := w.DateRange
	recent := store.ListOptions{Limit: recentPerKind, Newest: true}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		revenueTotal, err = e.store.Aggregate(gctx, domain.KindRevenue, rng, store.Filter{})
		return wrap("revenue total", err)
	})
	g.Go(func() (err error) {
		expenseTotal, err = e.store.Aggregate(gctx, domain.KindExpense, rng, store.Filter{})
		return wrap("expense total", err)
	})
	g.Go(func() (err error) {
		customers, err = e.store.DistinctCustomers(gctx, rng)
		return wrap("distinct customers", err)
	})
	g.Go(func() (err error) {
		revenue, err = e.store.ListRevenue(gctx, rng, store.ListOptions{})
		return wrap("list revenue", err)
	})
	g.Go(func() (err error) {
		expenses, err = e.store.ListExpenses(gctx, rng, store.ListOptions{})
		return wrap("list expenses", err)
	})
	g.Go(func() (err error) {
		recentRevenue, err = e.store.ListRevenue(gctx, rng, recent)
		return wrap("recent revenue", err)
	})
	g.Go(func() (err error) {
		recentExpenses, err = e.store.ListExpenses(gctx, rng, recent)
		return wrap("recent expenses", err)
	})
	if err := g.Wait(); err != nil {
		return DashboardResult{}, fmt.Errorf("Engine.Dashboard: %w", err)
	}

	series := newCashflowSeries()
	series.addRevenue(revenue)
	series.addExpenses(expenses)

	keys := series.keys()
	chart := make([]ChartPoint, 0, len(keys))
	for _, k := range keys {
		m := series.months[k]
		chart = append(chart, ChartPoint{
			Date:        k + "-01",
			Revenue:     domain.ToFloat(m.revenue),
			Expenses:    domain.ToFloat(m.expenses),
			NetCashflow: domain.ToFloat(m.revenue.Sub(m.expenses)),
		})
	}

	return DashboardResult{
		Metrics: DashboardMetrics{
			TotalRevenue:   domain.ToFloat(revenueTotal.Sum),
			TotalExpenses:  domain.ToFloat(expenseTotal.Sum),
			NetCashflow:    domain.ToFloat(revenueTotal.Sum.Sub(expenseTotal.Sum)),
			ActiveAccounts: customers,
			LastUpdated:    e.now().UTC(),
		},
		ChartData: chart,
		TableData: recentTable(recentRevenue, recentExpenses),
		Period: DashboardPeriod{
			StartDate: rng.Start,
			EndDate:   rng.End,
			Label:     w.Period,
		},
	}, nil
}

// recentTable merges the newest revenue and expense rows, newest day first.
// On the same day revenue rows come before expense rows.
func recentTable(revenue []domain.RevenueTransaction, expenses []domain.ExpenseTransaction) []TableRow {
	type dated struct {
		day time.Time
		row TableRow
	}
	rows := make([]dated, 0, len(revenue)+len(expenses))

	for _, t := range revenue {
		day := t.Date.UTC().Truncate(24 * time.Hour)
		rows = append(rows, dated{day: day, row: TableRow{
			ID:          "rev-" + t.ID,
			Type:        "Revenue",
			Amount:      domain.ToFloat(t.Amount),
			Date:        day.Format(tableDate),
			Category:    firstNonEmpty(t.Category, t.PlanID),
			Description: firstNonEmpty(t.Description, "Revenue from "+t.PlanID),
			Status:      "Completed",
			Source:      firstNonEmpty(t.CustomerID, t.PlanID),
		}})
	}
	for _, t := range expenses {
		day := t.Date.UTC().Truncate(24 * time.Hour)
		status := "One-time"
		if t.IsRecurring {
			status = "Recurring"
		}
		rows = append(rows, dated{day: day, row: TableRow{
			ID:          "exp-" + t.ID,
			Type:        "Expense",
			Amount:      domain.ToFloat(t.Amount.Neg()),
			Date:        day.Format(tableDate),
			Category:    t.Category,
			Description: firstNonEmpty(t.Description, "Expense - "+t.Category),
			Status:      status,
			Source:      firstNonEmpty(t.Vendor, "Internal"),
		}})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].day.After(rows[j].day) })

	if len(rows) > maxTableRows {
		rows = rows[:maxTableRows]
	}
	out := make([]TableRow, len(rows))
	for i, r := range rows {
		out[i] = r.row
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func wrap(step string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	return nil
}
