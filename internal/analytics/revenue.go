package analytics

import (
	"context"
	"fmt"

	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/domain"
	"github.com/dvloznov/cashflow-insights/internal/store"
)

// RevenueGrouping selects the breakdown of a revenue summary.
type RevenueGrouping string

const (
	RevenueByPlan     RevenueGrouping = "plan"
	RevenueByMonth    RevenueGrouping = "month"
	RevenueByCategory RevenueGrouping = "category"
)

// PlanSummary is the revenue of a single pricing plan.
type PlanSummary struct {
	PlanID                   string  `json:"planId"`
	TotalRevenue             float64 `json:"totalRevenue"`
	TransactionCount         int     `json:"transactionCount"`
	AverageTransactionAmount float64 `json:"averageTransactionAmount"`
}

type PlansResult struct {
	Header
	TotalPlans int           `json:"totalPlans"`
	Plans      []PlanSummary `json:"plans"`
}

type RevenueSummaryResult struct {
	Header
	TotalRevenue             float64         `json:"totalRevenue"`
	TotalTransactions        int             `json:"totalTransactions"`
	AverageTransactionAmount float64         `json:"averageTransactionAmount"`
	GroupBy                  RevenueGrouping `json:"groupBy"`
	GroupedData              []GroupBucket   `json:"groupedData"`
}

// ListPlans returns every plan that has revenue in the window. Plans without
// transactions in the window are absent.
func (e *Engine) ListPlans(ctx context.Context, w daterange.Window) (PlansResult, error) {
	e.debug(ctx, "ListPlans", w)

	groups, err := e.store.GroupBy(ctx, domain.KindRevenue, w.DateRange, store.GroupPlanID)
	if err != nil {
		return PlansResult{}, fmt.Errorf("Engine.ListPlans: group by plan: %w", err)
	}

	plans := make([]PlanSummary, 0, len(groups))
	for _, g := range groups {
		avg := store.NewAggregate(g.Sum, g.Count).Avg
		plans = append(plans, PlanSummary{
			PlanID:                   g.Key,
			TotalRevenue:             domain.ToFloat(g.Sum),
			TransactionCount:         g.Count,
			AverageTransactionAmount: domain.ToFloat(avg),
		})
	}

	return PlansResult{Header: newHeader(w), TotalPlans: len(plans), Plans: plans}, nil
}

// RevenueSummary totals revenue in the window and breaks it down by plan, month or category.
func (e *Engine) RevenueSummary(ctx context.Context, w daterange.Window, groupBy RevenueGrouping) (RevenueSummaryResult, error) {
	e.debug(ctx, "RevenueSummary", w)

	var field store.GroupField
	switch groupBy {
	case RevenueByPlan:
		field = store.GroupPlanID
	case RevenueByCategory:
		field = store.GroupCategory
	case RevenueByMonth:
	default:
		return RevenueSummaryResult{}, fmt.Errorf("Engine.RevenueSummary: %w: %q", ErrInvalidGrouping, groupBy)
	}

	total, err := e.store.Aggregate(ctx, domain.KindRevenue, w.DateRange, store.Filter{})
	if err != nil {
		return RevenueSummaryResult{}, fmt.Errorf("Engine.RevenueSummary: aggregate: %w", err)
	}

	var grouped []GroupBucket
	if groupBy == RevenueByMonth {
		txs, err := e.store.ListRevenue(ctx, w.DateRange, store.ListOptions{})
		if err != nil {
			return RevenueSummaryResult{}, fmt.Errorf("Engine.RevenueSummary: list revenue: %w", err)
		}
		fold := monthFold{}
		for _, t := range txs {
			fold.add(t.Date, t.Amount)
		}
		grouped = fold.buckets()
	} else {
		groups, err := e.store.GroupBy(ctx, domain.KindRevenue, w.DateRange, field)
		if err != nil {
			return RevenueSummaryResult{}, fmt.Errorf("Engine.RevenueSummary: group by %s: %w", field, err)
		}
		grouped = toBuckets(groups)
	}

	return RevenueSummaryResult{
		Header:                   newHeader(w),
		TotalRevenue:             domain.ToFloat(total.Sum),
		TotalTransactions:        total.Count,
		AverageTransactionAmount: domain.ToFloat(total.Avg),
		GroupBy:                  groupBy,
		GroupedData:              grouped,
	}, nil
}

func toBuckets(groups []store.Group) []GroupBucket {
	out := make([]GroupBucket, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupBucket{Key: g.Key, Total: domain.ToFloat(g.Sum), Count: g.Count})
	}
	return out
}
