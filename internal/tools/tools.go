// Package tools exposes the analytics operations as named callables taking a flat
// JSON parameter object, for agents and the HTTP API.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dvloznov/cashflow-insights/internal/analytics"
	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/logger"
	"github.com/rs/zerolog"
)

// Tool names.
const (
	ListPricingPlans              = "listPricingPlans"
	GetRevenueSummary             = "getRevenueSummary"
	GetExpenseSummary             = "getExpenseSummary"
	CalculateProfitabilityForPlan = "calculateProfitabilityForPlan"
	CalculateCashflowTrend        = "calculateCashflowTrend"
	FindDataAnomalies             = "findDataAnomalies"
)

const (
	defaultPeriod      = daterange.PeriodLast90Days
	defaultTrendPeriod = daterange.PeriodLast6Months
)

// Analytics is the set of operations the tools dispatch to.
type Analytics interface {
	ListPlans(ctx context.Context, w daterange.Window) (analytics.PlansResult, error)
	RevenueSummary(ctx context.Context, w daterange.Window, groupBy analytics.RevenueGrouping) (analytics.RevenueSummaryResult, error)
	ExpenseSummary(ctx context.Context, w daterange.Window, groupBy analytics.ExpenseGrouping) (analytics.ExpenseSummaryResult, error)
	Profitability(ctx context.Context, planID string, w daterange.Window) (analytics.ProfitabilityResult, error)
	CashflowTrend(ctx context.Context, w daterange.Window) (analytics.TrendResult, error)
	FindAnomalies(ctx context.Context, w daterange.Window, sensitivity analytics.Sensitivity) (analytics.AnomalyReport, error)
}

// Descriptor is the public description of a tool.
type Descriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []ParamSpec `json:"params"`
}

type tool struct {
	Descriptor
	run func(ctx context.Context, p Params) (any, error)
}

// Registry holds the fixed set of tools. It is safe for concurrent use.
type Registry struct {
	engine   Analytics
	resolver *daterange.Resolver
	log      zerolog.Logger
	tools    map[string]*tool
	order    []string
}

// NewRegistry builds the registry of all analytics tools.
func NewRegistry(engine Analytics, resolver *daterange.Resolver, log zerolog.Logger) *Registry {
	r := &Registry{
		engine:   engine,
		resolver: resolver,
		log:      log,
		tools:    make(map[string]*tool),
	}

	r.register(ListPricingPlans, "Get a list of all pricing plans with basic statistics",
		periodParams(defaultPeriod), r.listPlans)
	r.register(GetRevenueSummary, "Get comprehensive revenue analysis including trends and breakdowns",
		append(periodParams(defaultPeriod), ParamSpec{
			Name:        "groupBy",
			Description: "How to group the revenue data",
			Enum:        revenueGroupings,
			Default:     string(analytics.RevenueByPlan),
		}), r.revenueSummary)
	r.register(GetExpenseSummary, "Get comprehensive expense analysis including categories and trends",
		append(periodParams(defaultPeriod), ParamSpec{
			Name:        "groupBy",
			Description: "How to group the expense data",
			Enum:        expenseGroupings,
			Default:     string(analytics.ExpenseByCategory),
		}), r.expenseSummary)
	r.register(CalculateProfitabilityForPlan, "Calculate detailed profitability metrics for a specific pricing plan",
		append([]ParamSpec{{
			Name:        "planId",
			Description: "The pricing plan ID to analyze",
			Required:    true,
		}}, periodParams(defaultPeriod)...), r.profitability)
	r.register(CalculateCashflowTrend, "Analyze cashflow trends over time with monthly breakdown",
		periodParams(defaultTrendPeriod), r.cashflowTrend)
	r.register(FindDataAnomalies, "Detect anomalies and unusual patterns in financial data",
		append(periodParams(defaultPeriod), ParamSpec{
			Name:        "sensitivity",
			Description: "Sensitivity level for anomaly detection",
			Enum:        sensitivities,
			Default:     string(analytics.SensitivityMedium),
		}), r.findAnomalies)

	return r
}

var (
	revenueGroupings = []string{string(analytics.RevenueByPlan), string(analytics.RevenueByMonth), string(analytics.RevenueByCategory)}
	expenseGroupings = []string{string(analytics.ExpenseByCategory), string(analytics.ExpenseByMonth), string(analytics.ExpenseByVendor)}
	sensitivities    = []string{string(analytics.SensitivityLow), string(analytics.SensitivityMedium), string(analytics.SensitivityHigh)}
)

func periodParams(def string) []ParamSpec {
	return []ParamSpec{
		{
			Name:        "period",
			Description: "Predefined time period (or a four-digit year): " + fmt.Sprint(daterange.Periods()),
			Default:     def,
		},
		{
			Name:        "startDate",
			Description: "Custom start date in YYYY-MM-DD format. Overrides period if provided.",
		},
		{
			Name:        "endDate",
			Description: "Custom end date in YYYY-MM-DD format. Defaults to current date if not provided with startDate.",
		},
	}
}

func (r *Registry) register(name, description string, params []ParamSpec, run func(context.Context, Params) (any, error)) {
	r.tools[name] = &tool{
		Descriptor: Descriptor{Name: name, Description: description, Params: params},
		run:        run,
	}
	r.order = append(r.order, name)
}

// Describe lists the tools in registration order.
func (r *Registry) Describe() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Descriptor)
	}
	return out
}

// Invoke runs the named tool with JSON parameters and returns its JSON-serializable result.
func (r *Registry) Invoke(ctx context.Context, name string, raw json.RawMessage) (any, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	p, err := decodeParams(name, raw)
	if err != nil {
		return nil, err
	}

	log := logger.WithFields(logger.FromContext(ctx, r.log), map[string]interface{}{"tool": name})
	ctx = logger.WithContext(ctx, log)

	log.Debug().Interface("params", p).Msg("invoking tool")
	result, err := t.run(ctx, p)
	if err != nil {
		log.Warn().Err(err).Msg("tool failed")
		return nil, err
	}
	return result, nil
}

func (r *Registry) window(ctx context.Context, p Params, def string) (daterange.Window, error) {
	period := orDefault(p.Period, def)
	if p.StartDate == "" && p.EndDate == "" && !daterange.IsKnownPeriod(period) {
		log := logger.FromContext(ctx, r.log)
		log.Warn().
			Str("period", period).
			Bool("periodRecognized", false).
			Msg("unrecognized period, using " + daterange.PeriodLast30Days)
	}
	return r.resolver.ResolveWindow(period, p.StartDate, p.EndDate)
}

func (r *Registry) listPlans(ctx context.Context, p Params) (any, error) {
	w, err := r.window(ctx, p, defaultPeriod)
	if err != nil {
		return nil, err
	}
	return r.engine.ListPlans(ctx, w)
}

func (r *Registry) revenueSummary(ctx context.Context, p Params) (any, error) {
	groupBy := orDefault(p.GroupBy, string(analytics.RevenueByPlan))
	if err := oneOf(GetRevenueSummary, "groupBy", groupBy, revenueGroupings); err != nil {
		return nil, err
	}
	w, err := r.window(ctx, p, defaultPeriod)
	if err != nil {
		return nil, err
	}
	return r.engine.RevenueSummary(ctx, w, analytics.RevenueGrouping(groupBy))
}

func (r *Registry) expenseSummary(ctx context.Context, p Params) (any, error) {
	groupBy := orDefault(p.GroupBy, string(analytics.ExpenseByCategory))
	if err := oneOf(GetExpenseSummary, "groupBy", groupBy, expenseGroupings); err != nil {
		return nil, err
	}
	w, err := r.window(ctx, p, defaultPeriod)
	if err != nil {
		return nil, err
	}
	return r.engine.ExpenseSummary(ctx, w, analytics.ExpenseGrouping(groupBy))
}

func (r *Registry) profitability(ctx context.Context, p Params) (any, error) {
	if p.PlanID == "" {
		return nil, &ValidationError{Tool: CalculateProfitabilityForPlan, Field: "planId", Reason: "is required"}
	}
	w, err := r.window(ctx, p, defaultPeriod)
	if err != nil {
		return nil, err
	}
	return r.engine.Profitability(ctx, p.PlanID, w)
}

func (r *Registry) cashflowTrend(ctx context.Context, p Params) (any, error) {
	w, err := r.window(ctx, p, defaultTrendPeriod)
	if err != nil {
		return nil, err
	}
	return r.engine.CashflowTrend(ctx, w)
}

func (r *Registry) findAnomalies(ctx context.Context, p Params) (any, error) {
	sensitivity := orDefault(p.Sensitivity, string(analytics.SensitivityMedium))
	if err := oneOf(FindDataAnomalies, "sensitivity", sensitivity, sensitivities); err != nil {
		return nil, err
	}
	w, err := r.window(ctx, p, defaultPeriod)
	if err != nil {
		return nil, err
	}
	return r.engine.FindAnomalies(ctx, w, analytics.Sensitivity(sensitivity))
}
