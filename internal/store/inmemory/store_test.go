package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/domain"
	"github.com/dvloznov/cashflow-insights/internal/store"
	"github.com/shopspring/decimal"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func january() daterange.Range {
	return daterange.Range{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 23, 59, 59, 999_000_000, time.UTC),
	}
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	ctx := context.Background()

	err := s.InsertRevenue(ctx, []domain.RevenueTransaction{
		{ID: "r1", Amount: decimal.NewFromInt(100), Date: day(2024, 1, 5), PlanID: "basic", Category: "subscription", CustomerID: "c1"},
		{ID: "r2", Amount: decimal.NewFromInt(200), Date: day(2024, 1, 10), PlanID: "pro", CustomerID: "c2"},
		{ID: "r3", Amount: decimal.NewFromInt(50), Date: day(2024, 1, 10), PlanID: "basic", Category: "subscription", CustomerID: "c1"},
		{ID: "r4", Amount: decimal.NewFromInt(999), Date: day(2024, 2, 1), PlanID: "pro", CustomerID: "c3"},
	})
	if err != nil {
		t.Fatalf("InsertRevenue: %v", err)
	}

	err = s.InsertExpenses(ctx, []domain.ExpenseTransaction{
		{ID: "e1", Amount: decimal.NewFromInt(40), Date: day(2024, 1, 2), Category: "hosting", Vendor: "aws", IsRecurring: true},
		{ID: "e2", Amount: decimal.NewFromInt(60), Date: day(2024, 1, 20), Category: "travel"},
		{ID: "e3", Amount: decimal.NewFromInt(10), Date: day(2023, 12, 31), Category: "hosting", Vendor: "aws", IsRecurring: true},
	})
	if err != nil {
		t.Fatalf("InsertExpenses: %v", err)
	}
	return s
}

func TestAggregate(t *testing.T) {
	s := seededStore(t)
	recurring := true

	tests := []struct {
		name      string
		kind      domain.Kind
		filter    store.Filter
		wantSum   int64
		wantCount int
		wantAvg   int64
	}{
		{"all revenue", domain.KindRevenue, store.Filter{}, 350, 3, 0},
		{"revenue by plan", domain.KindRevenue, store.Filter{PlanID: "basic"}, 150, 2, 75},
		{"missing plan", domain.KindRevenue, store.Filter{PlanID: "enterprise"}, 0, 0, 0},
		{"all expenses", domain.KindExpense, store.Filter{}, 100, 2, 50},
		{"recurring expenses", domain.KindExpense, store.Filter{Recurring: &recurring}, 40, 1, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Aggregate(context.Background(), tt.kind, january(), tt.filter)
			if err != nil {
				t.Fatalf("Aggregate: %v", err)
			}
			if !got.Sum.Equal(decimal.NewFromInt(tt.wantSum)) {
				t.Errorf("Sum = %s, want %d", got.Sum, tt.wantSum)
			}
			if got.Count != tt.wantCount {
				t.Errorf("Count = %d, want %d", got.Count, tt.wantCount)
			}
			if tt.wantAvg != 0 && !got.Avg.Equal(decimal.NewFromInt(tt.wantAvg)) {
				t.Errorf("Avg = %s, want %d", got.Avg, tt.wantAvg)
			}
		})
	}
}

func TestAggregate_EmptyIsZero(t *testing.T) {
	got, err := NewStore().Aggregate(context.Background(), domain.KindExpense, january(), store.Filter{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !got.Sum.IsZero() || !got.Avg.IsZero() || got.Count != 0 {
		t.Errorf("expected zero aggregate, got %+v", got)
	}
}

func TestGroupBy(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	plans, err := s.GroupBy(ctx, domain.KindRevenue, january(), store.GroupPlanID)
	if err != nil {
		t.Fatalf("GroupBy: %v", err)
	}
	if len(plans) != 2 || plans[0].Key != "basic" || plans[1].Key != "pro" {
		t.Fatalf("unexpected plan groups: %+v", plans)
	}
	if !plans[0].Sum.Equal(decimal.NewFromInt(150)) || plans[0].Count != 2 {
		t.Errorf("basic group = %+v", plans[0])
	}

	// r2 has no category and must be excluded
	cats, err := s.GroupBy(ctx, domain.KindRevenue, january(), store.GroupCategory)
	if err != nil {
		t.Fatalf("GroupBy: %v", err)
	}
	if len(cats) != 1 || cats[0].Count != 2 {
		t.Errorf("unexpected category groups: %+v", cats)
	}

	vendors, err := s.GroupBy(ctx, domain.KindExpense, january(), store.GroupVendor)
	if err != nil {
		t.Fatalf("GroupBy: %v", err)
	}
	if len(vendors) != 1 || vendors[0].Key != "aws" || !vendors[0].Sum.Equal(decimal.NewFromInt(40)) {
		t.Errorf("unexpected vendor groups: %+v", vendors)
	}
}

func TestGroupBy_UnsupportedField(t *testing.T) {
	_, err := NewStore().GroupBy(context.Background(), domain.KindRevenue, january(), store.GroupVendor)
	if !errors.Is(err, store.ErrUnsupportedGroup) {
		t.Errorf("expected ErrUnsupportedGroup, got %v", err)
	}
}

func TestListRevenue_Ordering(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	oldest, err := s.ListRevenue(ctx, january(), store.ListOptions{})
	if err != nil {
		t.Fatalf("ListRevenue: %v", err)
	}
	wantIDs := []string{"r1", "r2", "r3"}
	for i, id := range wantIDs {
		if oldest[i].ID != id {
			t.Errorf("oldest[%d] = %s, want %s", i, oldest[i].ID, id)
		}
	}

	newest, err := s.ListRevenue(ctx, january(), store.ListOptions{Newest: true, Limit: 2})
	if err != nil {
		t.Fatalf("ListRevenue: %v", err)
	}
	if len(newest) != 2 || newest[0].ID != "r3" || newest[1].ID != "r2" {
		t.Errorf("unexpected newest listing: %+v", newest)
	}
}

func TestListExpenses_InclusiveBounds(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	rng := january()

	err := s.InsertExpenses(ctx, []domain.ExpenseTransaction{
		{ID: "start", Amount: decimal.NewFromInt(1), Date: rng.Start, Category: "x"},
		{ID: "end", Amount: decimal.NewFromInt(1), Date: rng.End, Category: "x"},
		{ID: "after", Amount: decimal.NewFromInt(1), Date: rng.End.Add(time.Millisecond), Category: "x"},
	})
	if err != nil {
		t.Fatalf("InsertExpenses: %v", err)
	}

	got, err := s.ListExpenses(ctx, rng, store.ListOptions{})
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected both boundary rows, got %d", len(got))
	}
}

func TestDistinctCustomers(t *testing.T) {
	got, err := seededStore(t).DistinctCustomers(context.Background(), january())
	if err != nil {
		t.Fatalf("DistinctCustomers: %v", err)
	}
	if got != 2 {
		t.Errorf("DistinctCustomers = %d, want 2", got)
	}
}

func TestInsert_Validation(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.InsertRevenue(ctx, []domain.RevenueTransaction{{ID: "r1"}}); err == nil {
		t.Error("expected error for revenue without plan")
	}
	if err := s.InsertExpenses(ctx, []domain.ExpenseTransaction{{Category: "x"}}); err == nil {
		t.Error("expected error for expense without ID")
	}
}
