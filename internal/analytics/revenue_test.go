package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/cashflow-insights/internal/domain"
	"github.com/dvloznov/cashflow-insights/internal/store"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func revenueFixture() []domain.RevenueTransaction {
	basic := rev("r1", 100, utcDay(2024, 1, 5), "basic")
	basic.Category = "subscription"
	pro := rev("r2", 250, utcDay(2024, 1, 20), "pro")
	pro.Category = "subscription"
	addon := rev("r3", 50, utcDay(2024, 2, 10), "basic")
	addon.Category = "addon"
	uncategorised := rev("r4", 75, utcDay(2024, 3, 1), "pro")
	return []domain.RevenueTransaction{basic, pro, addon, uncategorised}
}

func TestListPlans(t *testing.T) {
	e := newMemoryEngine(t, revenueFixture(), nil)

	got, err := e.ListPlans(context.Background(), window2024())
	require.NoError(t, err)

	assert.Equal(t, 2, got.TotalPlans)
	require.Len(t, got.Plans, 2)
	assert.Equal(t, PlanSummary{PlanID: "basic", TotalRevenue: 150, TransactionCount: 2, AverageTransactionAmount: 75}, got.Plans[0])
	assert.Equal(t, PlanSummary{PlanID: "pro", TotalRevenue: 325, TransactionCount: 2, AverageTransactionAmount: 162.5}, got.Plans[1])
	assert.Equal(t, window2024().DateRange, got.DateRange)
}

func TestListPlans_NoTransactions(t *testing.T) {
	e := newMemoryEngine(t, nil, nil)

	got, err := e.ListPlans(context.Background(), window2024())
	require.NoError(t, err)
	assert.Zero(t, got.TotalPlans)
	assert.Empty(t, got.Plans)
}

func TestRevenueSummary_Groupings(t *testing.T) {
	e := newMemoryEngine(t, revenueFixture(), nil)
	ctx := context.Background()

	tests := []struct {
		groupBy  RevenueGrouping
		wantKeys []string
	}{
		{RevenueByPlan, []string{"basic", "pro"}},
		{RevenueByMonth, []string{"2024-01", "2024-02", "2024-03"}},
		{RevenueByCategory, []string{"addon", "subscription"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.groupBy), func(t *testing.T) {
			got, err := e.RevenueSummary(ctx, window2024(), tt.groupBy)
			require.NoError(t, err)

			assert.Equal(t, 475.0, got.TotalRevenue)
			assert.Equal(t, 4, got.TotalTransactions)
			assert.InDelta(t, 118.75, got.AverageTransactionAmount, 1e-9)
			assert.Equal(t, tt.groupBy, got.GroupBy)

			keys := make([]string, len(got.GroupedData))
			for i, b := range got.GroupedData {
				keys[i] = b.Key
			}
			assert.Equal(t, tt.wantKeys, keys)
		})
	}
}

func TestRevenueSummary_GroupsSumToTotal(t *testing.T) {
	e := newMemoryEngine(t, revenueFixture(), nil)

	for _, groupBy := range []RevenueGrouping{RevenueByPlan, RevenueByMonth} {
		got, err := e.RevenueSummary(context.Background(), window2024(), groupBy)
		require.NoError(t, err)

		var sum float64
		count := 0
		for _, b := range got.GroupedData {
			sum += b.Total
			count += b.Count
		}
		assert.InDelta(t, got.TotalRevenue, sum, 1e-9, "groupBy=%s", groupBy)
		assert.Equal(t, got.TotalTransactions, count, "groupBy=%s", groupBy)
	}
}

func TestRevenueSummary_CategoryExcludesMissing(t *testing.T) {
	e := newMemoryEngine(t, revenueFixture(), nil)

	got, err := e.RevenueSummary(context.Background(), window2024(), RevenueByCategory)
	require.NoError(t, err)

	var sum float64
	for _, b := range got.GroupedData {
		sum += b.Total
	}
	// r4 has no category
	assert.Equal(t, 400.0, sum)
}

func TestRevenueSummary_InvalidGrouping(t *testing.T) {
	e := newMemoryEngine(t, nil, nil)

	_, err := e.RevenueSummary(context.Background(), window2024(), RevenueGrouping("vendor"))
	assert.ErrorIs(t, err, ErrInvalidGrouping)
}

func TestRevenueSummary_StoreErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockTransactionStore(ctrl)
	e := NewEngine(mockStore, zerolog.Nop())

	storeErr := errors.New("bigquery unavailable")
	mockStore.EXPECT().
		Aggregate(gomock.Any(), domain.KindRevenue, window2024().DateRange, store.Filter{}).
		Return(store.Aggregate{}, storeErr)

	_, err := e.RevenueSummary(context.Background(), window2024(), RevenueByPlan)
	assert.ErrorIs(t, err, storeErr)
}

func TestRevenueSummary_UsesStoreGrouping(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockTransactionStore(ctrl)
	e := NewEngine(mockStore, zerolog.Nop())
	rng := window2024().DateRange

	mockStore.EXPECT().
		Aggregate(gomock.Any(), domain.KindRevenue, rng, store.Filter{}).
		Return(store.NewAggregate(decimal.RequireFromString("0.3"), 3), nil)
	mockStore.EXPECT().
		GroupBy(gomock.Any(), domain.KindRevenue, rng, store.GroupPlanID).
		Return([]store.Group{
			{Key: "a", Sum: decimal.RequireFromString("0.1"), Count: 1},
			{Key: "b", Sum: decimal.RequireFromString("0.2"), Count: 2},
		}, nil)

	got, err := e.RevenueSummary(context.Background(), window2024(), RevenueByPlan)
	require.NoError(t, err)
	assert.Equal(t, 0.3, got.TotalRevenue)
	assert.Equal(t, 0.1, got.AverageTransactionAmount)
	assert.Equal(t, []GroupBucket{{Key: "a", Total: 0.1, Count: 1}, {Key: "b", Total: 0.2, Count: 2}}, got.GroupedData)
}
