package postgres

import (
	"fmt"
	"strings"

	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/domain"
	"github.com/dvloznov/cashflow-insights/internal/store"
)

var groupColumns = map[store.GroupField]string{
	store.GroupPlanID:   "plan_id",
	store.GroupCategory: "category",
	store.GroupVendor:   "vendor",
}

func tableFor(kind domain.Kind) (string, error) {
	switch kind {
	case domain.KindRevenue:
		return "revenue_transactions", nil
	case domain.KindExpense:
		return "expense_transactions", nil
	}
	return "", fmt.Errorf("unknown kind %q", kind)
}

// buildAggregateQuery returns the SUM/COUNT statement and its positional arguments.
// The sum is cast to text so it can be parsed into a decimal without loss.
func buildAggregateQuery(kind domain.Kind, rng daterange.Range, f store.Filter) (string, []any, error) {
	table, err := tableFor(kind)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT COALESCE(SUM(amount), 0)::text, COUNT(*) FROM %s WHERE transaction_date BETWEEN $1 AND $2", table)
	args := []any{rng.Start, rng.End}

	if f.PlanID != "" && kind == domain.KindRevenue {
		args = append(args, f.PlanID)
		fmt.Fprintf(&sb, " AND plan_id = $%d", len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		fmt.Fprintf(&sb, " AND category = $%d", len(args))
	}
	if f.Recurring != nil && kind == domain.KindExpense {
		args = append(args, *f.Recurring)
		fmt.Fprintf(&sb, " AND is_recurring = $%d", len(args))
	}

	return sb.String(), args, nil
}

func buildGroupQuery(kind domain.Kind, rng daterange.Range, field store.GroupField) (string, []any, error) {
	if err := store.CheckGroupField(kind, field); err != nil {
		return "", nil, err
	}
	table, err := tableFor(kind)
	if err != nil {
		return "", nil, err
	}
	col := groupColumns[field]

	query := fmt.Sprintf(
		"SELECT %[1]s, SUM(amount)::text, COUNT(*) FROM %[2]s "+
			"WHERE transaction_date BETWEEN $1 AND $2 AND %[1]s IS NOT NULL AND %[1]s <> '' "+
			"GROUP BY %[1]s ORDER BY %[1]s", col, table)
	return query, []any{rng.Start, rng.End}, nil
}

func buildListQuery(kind domain.Kind, rng daterange.Range, opts store.ListOptions) (string, []any) {
	columns := "transaction_id, amount::text, transaction_date, plan_id, " +
		"COALESCE(category, ''), COALESCE(description, ''), COALESCE(customer_id, '')"
	table := "revenue_transactions"
	if kind == domain.KindExpense {
		columns = "transaction_id, amount::text, transaction_date, category, " +
			"COALESCE(description, ''), COALESCE(vendor, ''), is_recurring"
		table = "expense_transactions"
	}
	direction := "ASC"
	if opts.Newest {
		direction = "DESC"
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE transaction_date BETWEEN $1 AND $2 ORDER BY transaction_date %s, transaction_id %s",
		columns, table, direction, direction)
	args := []any{rng.Start, rng.End}
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return query, args
}
