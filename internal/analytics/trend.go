package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/domain"
	"github.com/dvloznov/cashflow-insights/internal/store"
	"github.com/shopspring/decimal"
)

// MonthlyCashflow is one month of a cashflow trend.
type MonthlyCashflow struct {
	Month       string  `json:"month"`
	Revenue     float64 `json:"revenue"`
	Expenses    float64 `json:"expenses"`
	NetCashflow float64 `json:"netCashflow"`
}

type TrendResult struct {
	Header
	TotalRevenue           float64           `json:"totalRevenue"`
	TotalExpenses          float64           `json:"totalExpenses"`
	TotalNetCashflow       float64           `json:"totalNetCashflow"`
	MonthlyTrends          []MonthlyCashflow `json:"monthlyTrends"`
	AverageMonthlyRevenue  float64           `json:"averageMonthlyRevenue"`
	AverageMonthlyExpenses float64           `json:"averageMonthlyExpenses"`
}

type cashflowMonth struct {
	revenue  decimal.Decimal
	expenses decimal.Decimal
}

// cashflowSeries folds revenue and expenses into months that have at least one
// transaction, ascending by month. Empty months are not filled in.
type cashflowSeries struct {
	months map[string]*cashflowMonth
}

func newCashflowSeries() *cashflowSeries {
	return &cashflowSeries{months: make(map[string]*cashflowMonth)}
}

func (s *cashflowSeries) month(key string) *cashflowMonth {
	m, ok := s.months[key]
	if !ok {
		m = &cashflowMonth{}
		s.months[key] = m
	}
	return m
}

func (s *cashflowSeries) addRevenue(txs []domain.RevenueTransaction) {
	for _, t := range txs {
		m := s.month(domain.MonthKey(t.Date))
		m.revenue = m.revenue.Add(t.Amount)
	}
}

func (s *cashflowSeries) addExpenses(txs []domain.ExpenseTransaction) {
	for _, t := range txs {
		m := s.month(domain.MonthKey(t.Date))
		m.expenses = m.expenses.Add(t.Amount)
	}
}

func (s *cashflowSeries) keys() []string {
	keys := make([]string, 0, len(s.months))
	for k := range s.months {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CashflowTrend buckets revenue and expenses by month and reports net cashflow per month.
func (e *Engine) CashflowTrend(ctx context.Context, w daterange.Window) (TrendResult, error) {
	e.debug(ctx, "CashflowTrend", w)

	revenue, err := e.store.ListRevenue(ctx, w.DateRange, store.ListOptions{})
	if err != nil {
		return TrendResult{}, fmt.Errorf("Engine.CashflowTrend: list revenue: %w", err)
	}
	expenses, err := e.store.ListExpenses(ctx, w.DateRange, store.ListOptions{})
	if err != nil {
		return TrendResult{}, fmt.Errorf("Engine.CashflowTrend: list expenses: %w", err)
	}

	series := newCashflowSeries()
	series.addRevenue(revenue)
	series.addExpenses(expenses)

	totalRevenue, totalExpenses := decimal.Zero, decimal.Zero
	keys := series.keys()
	trends := make([]MonthlyCashflow, 0, len(keys))
	for _, k := range keys {
		m := series.months[k]
		totalRevenue = totalRevenue.Add(m.revenue)
		totalExpenses = totalExpenses.Add(m.expenses)
		trends = append(trends, MonthlyCashflow{
			Month:       k,
			Revenue:     domain.ToFloat(m.revenue),
			Expenses:    domain.ToFloat(m.expenses),
			NetCashflow: domain.ToFloat(m.revenue.Sub(m.expenses)),
		})
	}

	n := decimal.NewFromInt(int64(len(trends)))
	return TrendResult{
		Header:                 newHeader(w),
		TotalRevenue:           domain.ToFloat(totalRevenue),
		TotalExpenses:          domain.ToFloat(totalExpenses),
		TotalNetCashflow:       domain.ToFloat(totalRevenue.Sub(totalExpenses)),
		MonthlyTrends:          trends,
		AverageMonthlyRevenue:  domain.ToFloat(domain.SafeDiv(totalRevenue, n)),
		AverageMonthlyExpenses: domain.ToFloat(domain.SafeDiv(totalExpenses, n)),
	}, nil
}
