// Package store defines the read surface the analytics engine needs from
// transaction storage, plus the write surface used by seeding.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/domain"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// GroupField names a stored column that GroupBy can bucket on.
type GroupField string

const (
	GroupPlanID   GroupField = "planId"
	GroupCategory GroupField = "category"
	GroupVendor   GroupField = "vendor"
)

// ErrUnsupportedGroup is returned when a group field does not exist for a kind.
var ErrUnsupportedGroup = errors.New("unsupported group field")

// Filter narrows Aggregate. Zero values mean "no filter".
// PlanID applies to revenue only; Recurring applies to expenses only.
type Filter struct {
	PlanID    string
	Category  string
	Recurring *bool
}

// Aggregate is the SUM/COUNT/AVG of amount over the matched rows.
type Aggregate struct {
	Sum   decimal.Decimal
	Avg   decimal.Decimal
	Count int
}

// NewAggregate derives Avg from sum and count, zero when count is zero.
func NewAggregate(sum decimal.Decimal, count int) Aggregate {
	agg := Aggregate{Sum: sum, Count: count}
	if count > 0 {
		agg.Avg = sum.Div(decimal.NewFromInt(int64(count)))
	}
	return agg
}

// Group is one bucket of a GroupBy result.
type Group struct {
	Key   string
	Sum   decimal.Decimal
	Count int
}

// ListOptions controls ListRevenue and ListExpenses.
// Rows come back oldest first unless Newest is set. Limit <= 0 means no limit.
type ListOptions struct {
	Limit  int
	Newest bool
}

// TransactionStore answers range-filtered queries over revenue and expense records.
// Range bounds are inclusive at both ends.
type TransactionStore interface {
	Aggregate(ctx context.Context, kind domain.Kind, rng daterange.Range, f Filter) (Aggregate, error)
	// GroupBy buckets rows by a stored column. Rows with an empty key are excluded and
	// groups are ordered by key.
	GroupBy(ctx context.Context, kind domain.Kind, rng daterange.Range, field GroupField) ([]Group, error)
	ListRevenue(ctx context.Context, rng daterange.Range, opts ListOptions) ([]domain.RevenueTransaction, error)
	ListExpenses(ctx context.Context, rng daterange.Range, opts ListOptions) ([]domain.ExpenseTransaction, error)
	// DistinctCustomers counts distinct non-empty customer IDs among revenue rows.
	DistinctCustomers(ctx context.Context, rng daterange.Range) (int, error)
}

// TransactionWriter bulk-loads records. Only seeding and ingestion tooling write.
type TransactionWriter interface {
	InsertRevenue(ctx context.Context, rows []domain.RevenueTransaction) error
	InsertExpenses(ctx context.Context, rows []domain.ExpenseTransaction) error
}

// ReadWriter is a store that can be both queried and seeded.
type ReadWriter interface {
	TransactionStore
	TransactionWriter
}

// CheckGroupField reports whether field is a stored column for kind.
func CheckGroupField(kind domain.Kind, field GroupField) error {
	switch {
	case field == GroupCategory:
		return nil
	case field == GroupPlanID && kind == domain.KindRevenue:
		return nil
	case field == GroupVendor && kind == domain.KindExpense:
		return nil
	}
	return fmt.Errorf("%w: %s has no %s column", ErrUnsupportedGroup, kind, field)
}
