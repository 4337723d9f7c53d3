package bigquery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/domain"
	"github.com/dvloznov/cashflow-insights/internal/store"
	"google.golang.org/api/iterator"
)

const (
	revenueTable = "revenue_transactions"
	expenseTable = "expense_transactions"
)

// Dataset identifies the project and dataset that hold the transaction tables.
type Dataset struct {
	Project string
	Dataset string
}

func (d Dataset) table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", d.Project, d.Dataset, name)
}

func (d Dataset) tableFor(kind domain.Kind) (string, error) {
	switch kind {
	case domain.KindRevenue:
		return d.table(revenueTable), nil
	case domain.KindExpense:
		return d.table(expenseTable), nil
	}
	return "", fmt.Errorf("unknown kind %q", kind)
}

var groupColumns = map[store.GroupField]string{
	store.GroupPlanID:   "plan_id",
	store.GroupCategory: "category",
	store.GroupVendor:   "vendor",
}

func rangeParams(rng daterange.Range) []bigquery.QueryParameter {
	return []bigquery.QueryParameter{
		{Name: "start_ts", Value: rng.Start.UTC()},
		{Name: "end_ts", Value: rng.End.UTC()},
	}
}

// buildAggregateQuery returns the SUM/COUNT statement for kind with the filter applied.
func buildAggregateQuery(ds Dataset, kind domain.Kind, rng daterange.Range, f store.Filter) (string, []bigquery.QueryParameter, error) {
	table, err := ds.tableFor(kind)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `
		SELECT
			IFNULL(SUM(amount), 0) AS total,
			COUNT(*) AS n
		FROM %s
		WHERE transaction_date BETWEEN @start_ts AND @end_ts`, table)
	params := rangeParams(rng)

	if f.PlanID != "" && kind == domain.KindRevenue {
		sb.WriteString("\n\t\t  AND plan_id = @plan_id")
		params = append(params, bigquery.QueryParameter{Name: "plan_id", Value: f.PlanID})
	}
	if f.Category != "" {
		sb.WriteString("\n\t\t  AND category = @category")
		params = append(params, bigquery.QueryParameter{Name: "category", Value: f.Category})
	}
	if f.Recurring != nil && kind == domain.KindExpense {
		sb.WriteString("\n\t\t  AND is_recurring = @is_recurring")
		params = append(params, bigquery.QueryParameter{Name: "is_recurring", Value: *f.Recurring})
	}

	return sb.String(), params, nil
}

// buildGroupQuery returns the GROUP BY statement for a stored column, excluding empty keys.
func buildGroupQuery(ds Dataset, kind domain.Kind, rng daterange.Range, field store.GroupField) (string, []bigquery.QueryParameter, error) {
	if err := store.CheckGroupField(kind, field); err != nil {
		return "", nil, err
	}
	table, err := ds.tableFor(kind)
	if err != nil {
		return "", nil, err
	}
	col := groupColumns[field]

	query := fmt.Sprintf(`
		SELECT
			%[1]s AS group_key,
			SUM(amount) AS total,
			COUNT(*) AS n
		FROM %[2]s
		WHERE transaction_date BETWEEN @start_ts AND @end_ts
		  AND %[1]s IS NOT NULL
		  AND %[1]s != ''
		GROUP BY %[1]s
		ORDER BY %[1]s
	`, col, table)

	return query, rangeParams(rng), nil
}

// buildListQuery returns the SELECT statement for raw rows of kind.
func buildListQuery(ds Dataset, kind domain.Kind, rng daterange.Range, opts store.ListOptions) (string, []bigquery.QueryParameter, error) {
	table, err := ds.tableFor(kind)
	if err != nil {
		return "", nil, err
	}

	columns := "transaction_id, amount, transaction_date, plan_id, category, description, customer_id, created_ts"
	if kind == domain.KindExpense {
		columns = "transaction_id, amount, transaction_date, category, description, vendor, is_recurring, created_ts"
	}
	direction := "ASC"
	if opts.Newest {
		direction = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE transaction_date BETWEEN @start_ts AND @end_ts
		ORDER BY transaction_date %s, transaction_id %s`, columns, table, direction, direction)
	params := rangeParams(rng)

	if opts.Limit > 0 {
		query += "\n\t\tLIMIT @row_limit"
		params = append(params, bigquery.QueryParameter{Name: "row_limit", Value: opts.Limit})
	}

	return query, params, nil
}

// AggregateWithClient runs an aggregate query using the provided BigQuery client.
func AggregateWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, kind domain.Kind, rng daterange.Range, f store.Filter) (store.Aggregate, error) {
	query, params, err := buildAggregateQuery(ds, kind, rng, f)
	if err != nil {
		return store.Aggregate{}, fmt.Errorf("AggregateWithClient: %w", err)
	}

	q := client.Query(query)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return store.Aggregate{}, fmt.Errorf("AggregateWithClient: query read: %w", err)
	}

	var row aggregateRow
	if err := it.Next(&row); err != nil && err != iterator.Done {
		return store.Aggregate{}, fmt.Errorf("AggregateWithClient: iter next: %w", err)
	}

	sum, err := ratToDecimal(row.Total)
	if err != nil {
		return store.Aggregate{}, fmt.Errorf("AggregateWithClient: %w", err)
	}
	return store.NewAggregate(sum, int(row.N)), nil
}

// GroupByWithClient runs a GROUP BY query using the provided BigQuery client.
func GroupByWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, kind domain.Kind, rng daterange.Range, field store.GroupField) ([]store.Group, error) {
	query, params, err := buildGroupQuery(ds, kind, rng, field)
	if err != nil {
		return nil, fmt.Errorf("GroupByWithClient: %w", err)
	}

	q := client.Query(query)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GroupByWithClient: query read: %w", err)
	}

	var groups []store.Group
	for {
		var row groupRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("GroupByWithClient: iter next: %w", err)
		}
		sum, err := ratToDecimal(row.Total)
		if err != nil {
			return nil, fmt.Errorf("GroupByWithClient: %w", err)
		}
		groups = append(groups, store.Group{Key: row.GroupKey, Sum: sum, Count: int(row.N)})
	}

	return groups, nil
}

// ListRevenueWithClient lists revenue rows in range using the provided BigQuery client.
func ListRevenueWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, rng daterange.Range, opts store.ListOptions) ([]domain.RevenueTransaction, error) {
	query, params, err := buildListQuery(ds, domain.KindRevenue, rng, opts)
	if err != nil {
		return nil, fmt.Errorf("ListRevenueWithClient: %w", err)
	}

	q := client.Query(query)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRevenueWithClient: query read: %w", err)
	}

	var out []domain.RevenueTransaction
	for {
		var row RevenueRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRevenueWithClient: iter next: %w", err)
		}
		tx, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("ListRevenueWithClient: %w", err)
		}
		out = append(out, tx)
	}

	return out, nil
}

// ListExpensesWithClient lists expense rows in range using the provided BigQuery client.
func ListExpensesWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, rng daterange.Range, opts store.ListOptions) ([]domain.ExpenseTransaction, error) {
	query, params, err := buildListQuery(ds, domain.KindExpense, rng, opts)
	if err != nil {
		return nil, fmt.Errorf("ListExpensesWithClient: %w", err)
	}

	q := client.Query(query)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListExpensesWithClient: query read: %w", err)
	}

	var out []domain.ExpenseTransaction
	for {
		var row ExpenseRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListExpensesWithClient: iter next: %w", err)
		}
		tx, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("ListExpensesWithClient: %w", err)
		}
		out = append(out, tx)
	}

	return out, nil
}

// DistinctCustomersWithClient counts distinct non-empty customer IDs using the provided BigQuery client.
func DistinctCustomersWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, rng daterange.Range) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(DISTINCT customer_id) AS n
		FROM %s
		WHERE transaction_date BETWEEN @start_ts AND @end_ts
		  AND customer_id IS NOT NULL
		  AND customer_id != ''
	`, ds.table(revenueTable))

	q := client.Query(query)
	q.Parameters = rangeParams(rng)

	it, err := q.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("DistinctCustomersWithClient: query read: %w", err)
	}

	var row struct {
		N int64 `bigquery:"n"`
	}
	if err := it.Next(&row); err != nil && err != iterator.Done {
		return 0, fmt.Errorf("DistinctCustomersWithClient: iter next: %w", err)
	}
	return int(row.N), nil
}

// InsertRevenueWithClient streams revenue rows into the revenue table.
func InsertRevenueWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, txs []domain.RevenueTransaction) error {
	if len(txs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([]*RevenueRow, len(txs))
	for i, t := range txs {
		rows[i] = newRevenueRow(t, now)
	}

	inserter := client.DatasetInProject(ds.Project, ds.Dataset).Table(revenueTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertRevenueWithClient: inserting rows: %w", err)
	}
	return nil
}

// InsertExpensesWithClient streams expense rows into the expense table.
func InsertExpensesWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, txs []domain.ExpenseTransaction) error {
	if len(txs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([]*ExpenseRow, len(txs))
	for i, t := range txs {
		rows[i] = newExpenseRow(t, now)
	}

	inserter := client.DatasetInProject(ds.Project, ds.Dataset).Table(expenseTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertExpensesWithClient: inserting rows: %w", err)
	}
	return nil
}
