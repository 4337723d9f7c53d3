package analytics

import (
	"context"
	"fmt"

	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/domain"
	"github.com/dvloznov/cashflow-insights/internal/store"
	"golang.org/x/sync/errgroup"
)

// ProfitabilityResult reports a plan's profit after a revenue-proportional share
// of company expenses.
type ProfitabilityResult struct {
	PlanID string `json:"planId"`
	Header
	Revenue                  float64 `json:"revenue"`
	AllocatedExpenses        float64 `json:"allocatedExpenses"`
	Profit                   float64 `json:"profit"`
	ProfitMargin             float64 `json:"profitMargin"`
	RevenueShare             float64 `json:"revenueShare"`
	TransactionCount         int     `json:"transactionCount"`
	AverageTransactionAmount float64 `json:"averageTransactionAmount"`
}

// Profitability allocates company expenses to planID in proportion to its share of
// total revenue. Expenses carry no plan attribution, so this allocation is the policy:
//
//	share     = planRevenue / totalRevenue       (0 when totalRevenue is 0)
//	allocated = totalExpenses * share
//	profit    = planRevenue - allocated
//	margin    = profit / planRevenue * 100       (0 when planRevenue is 0)
func (e *Engine) Profitability(ctx context.Context, planID string, w daterange.Window) (ProfitabilityResult, error) {
	e.debug(ctx, "Profitability", w)

	if planID == "" {
		return ProfitabilityResult{}, fmt.Errorf("Engine.Profitability: %w", ErrMissingPlanID)
	}

	var plan, revenue, expenses store.Aggregate
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		plan, err = e.store.Aggregate(gctx, domain.KindRevenue, w.DateRange, store.Filter{PlanID: planID})
		if err != nil {
			return fmt.Errorf("plan revenue: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		revenue, err = e.store.Aggregate(gctx, domain.KindRevenue, w.DateRange, store.Filter{})
		if err != nil {
			return fmt.Errorf("total revenue: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		expenses, err = e.store.Aggregate(gctx, domain.KindExpense, w.DateRange, store.Filter{})
		if err != nil {
			return fmt.Errorf("total expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return ProfitabilityResult{}, fmt.Errorf("Engine.Profitability: %w", err)
	}

	share := domain.SafeDiv(plan.Sum, revenue.Sum)
	allocated := expenses.Sum.Mul(share)
	profit := plan.Sum.Sub(allocated)
	margin := domain.SafeDiv(profit, plan.Sum).Mul(hundred)

	return ProfitabilityResult{
		PlanID:                   planID,
		Header:                   newHeader(w),
		Revenue:                  domain.ToFloat(plan.Sum),
		AllocatedExpenses:        domain.ToFloat(allocated),
		Profit:                   domain.ToFloat(profit),
		ProfitMargin:             domain.ToFloat(margin),
		RevenueShare:             domain.ToFloat(share.Mul(hundred)),
		TransactionCount:         plan.Count,
		AverageTransactionAmount: domain.ToFloat(plan.Avg),
	}, nil
}
