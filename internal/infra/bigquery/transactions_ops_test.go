package bigquery

import (
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/domain"
	"github.com/dvloznov/cashflow-insights/internal/store"
	"github.com/shopspring/decimal"
)

var testDataset = Dataset{Project: "demo-project", Dataset: "cashflow"}

func testRange() daterange.Range {
	return daterange.Range{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC),
	}
}

func TestBuildAggregateQuery(t *testing.T) {
	recurring := true

	tests := []struct {
		name       string
		kind       domain.Kind
		filter     store.Filter
		wantTable  string
		wantClause []string
		wantParams int
	}{
		{
			name:       "revenue for plan",
			kind:       domain.KindRevenue,
			filter:     store.Filter{PlanID: "pro"},
			wantTable:  "`demo-project.cashflow.revenue_transactions`",
			wantClause: []string{"plan_id = @plan_id"},
			wantParams: 3,
		},
		{
			name:       "recurring expenses",
			kind:       domain.KindExpense,
			filter:     store.Filter{Recurring: &recurring},
			wantTable:  "`demo-project.cashflow.expense_transactions`",
			wantClause: []string{"is_recurring = @is_recurring"},
			wantParams: 3,
		},
		{
			name:       "plan filter ignored for expenses",
			kind:       domain.KindExpense,
			filter:     store.Filter{PlanID: "pro"},
			wantTable:  "`demo-project.cashflow.expense_transactions`",
			wantParams: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, params, err := buildAggregateQuery(testDataset, tt.kind, testRange(), tt.filter)
			if err != nil {
				t.Fatalf("buildAggregateQuery: %v", err)
			}
			if !strings.Contains(query, tt.wantTable) {
				t.Errorf("query missing table %s:\n%s", tt.wantTable, query)
			}
			for _, clause := range tt.wantClause {
				if !strings.Contains(query, clause) {
					t.Errorf("query missing %q:\n%s", clause, query)
				}
			}
			if len(params) != tt.wantParams {
				t.Errorf("got %d params, want %d", len(params), tt.wantParams)
			}
		})
	}
}

func TestBuildGroupQuery(t *testing.T) {
	query, _, err := buildGroupQuery(testDataset, domain.KindExpense, testRange(), store.GroupVendor)
	if err != nil {
		t.Fatalf("buildGroupQuery: %v", err)
	}
	for _, want := range []string{"vendor AS group_key", "vendor IS NOT NULL", "GROUP BY vendor", "ORDER BY vendor"} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q:\n%s", want, query)
		}
	}

	_, _, err = buildGroupQuery(testDataset, domain.KindExpense, testRange(), store.GroupPlanID)
	if !errors.Is(err, store.ErrUnsupportedGroup) {
		t.Errorf("expected ErrUnsupportedGroup, got %v", err)
	}
}

func TestBuildListQuery(t *testing.T) {
	query, params, err := buildListQuery(testDataset, domain.KindRevenue, testRange(), store.ListOptions{Limit: 50, Newest: true})
	if err != nil {
		t.Fatalf("buildListQuery: %v", err)
	}
	if !strings.Contains(query, "ORDER BY transaction_date DESC") || !strings.Contains(query, "LIMIT @row_limit") {
		t.Errorf("unexpected query:\n%s", query)
	}
	if len(params) != 3 {
		t.Errorf("got %d params, want 3", len(params))
	}

	query, params, err = buildListQuery(testDataset, domain.KindExpense, testRange(), store.ListOptions{})
	if err != nil {
		t.Fatalf("buildListQuery: %v", err)
	}
	if !strings.Contains(query, "is_recurring") || strings.Contains(query, "LIMIT") {
		t.Errorf("unexpected query:\n%s", query)
	}
	if len(params) != 2 {
		t.Errorf("got %d params, want 2", len(params))
	}
}

func TestRatToDecimal(t *testing.T) {
	got, err := ratToDecimal(big.NewRat(12345, 100))
	if err != nil {
		t.Fatalf("ratToDecimal: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("123.45")) {
		t.Errorf("ratToDecimal = %s, want 123.45", got)
	}

	zero, err := ratToDecimal(nil)
	if err != nil || !zero.IsZero() {
		t.Errorf("ratToDecimal(nil) = %s, %v", zero, err)
	}
}

func TestRevenueRowRoundTrip(t *testing.T) {
	tx := domain.RevenueTransaction{
		ID:     "r1",
		Amount: decimal.RequireFromString("19.99"),
		Date:   time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC),
		PlanID: "basic",
	}
	row := newRevenueRow(tx, time.Now())
	if row.Category.Valid {
		t.Error("empty category must be written as NULL")
	}

	back, err := row.toDomain()
	if err != nil {
		t.Fatalf("toDomain: %v", err)
	}
	if !back.Amount.Equal(tx.Amount) || back.PlanID != "basic" || back.Category != "" {
		t.Errorf("unexpected transaction: %+v", back)
	}
}
