package analytics

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dvloznov/cashflow-insights/internal/domain"
	"github.com/dvloznov/cashflow-insights/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// outlierRevenue is [100, 100, 100, 100, 1000] on consecutive days:
// mean 280, population stdDev 360, so 1000 sits exactly 2 deviations out.
func outlierRevenue() []domain.RevenueTransaction {
	return []domain.RevenueTransaction{
		rev("r1", 100, utcDay(2024, 1, 1), "basic"),
		rev("r2", 100, utcDay(2024, 1, 2), "basic"),
		rev("r3", 100, utcDay(2024, 1, 3), "basic"),
		rev("r4", 100, utcDay(2024, 1, 4), "basic"),
		rev("r5", 1000, utcDay(2024, 1, 5), "enterprise"),
	}
}

func TestFindAnomalies_StrictThreshold(t *testing.T) {
	e := newMemoryEngine(t, outlierRevenue(), nil)
	ctx := context.Background()

	tests := []struct {
		sensitivity Sensitivity
		wantFlagged bool
	}{
		{SensitivityLow, false},
		{SensitivityMedium, false}, // 720 > 2*360 is false
		{SensitivityHigh, true},    // 720 > 1.5*360
	}

	for _, tt := range tests {
		t.Run(string(tt.sensitivity), func(t *testing.T) {
			got, err := e.FindAnomalies(ctx, window2024(), tt.sensitivity)
			require.NoError(t, err)

			assert.InDelta(t, 280, got.Statistics.Revenue.Mean, 1e-9)
			assert.InDelta(t, 360, got.Statistics.Revenue.StdDev, 1e-9)
			assert.Equal(t, tt.sensitivity, got.Sensitivity)

			if !tt.wantFlagged {
				assert.Zero(t, got.AnomaliesFound)
				assert.Empty(t, got.Anomalies)
				return
			}

			require.Equal(t, 1, got.AnomaliesFound)
			a, ok := got.Anomalies[0].(TransactionAnomaly)
			require.True(t, ok, "expected TransactionAnomaly, got %T", got.Anomalies[0])
			assert.Equal(t, AnomalyRevenue, a.Type)
			assert.Equal(t, "r5", a.TransactionID)
			assert.Equal(t, "enterprise", a.PlanID)
			assert.Equal(t, 1000.0, a.Amount)
			assert.InDelta(t, 2.0, a.Deviation, 1e-9)
			assert.Equal(t, "Unusually high revenue", a.Description)
		})
	}
}

func TestFindAnomalies_LowExpense(t *testing.T) {
	expenses := []domain.ExpenseTransaction{
		exp("e1", 500, utcDay(2024, 3, 1), "payroll"),
		exp("e2", 500, utcDay(2024, 3, 2), "payroll"),
		exp("e3", 500, utcDay(2024, 3, 3), "payroll"),
		exp("e4", 500, utcDay(2024, 3, 4), "payroll"),
		exp("e5", 1, utcDay(2024, 3, 5), "refund"),
	}
	e := newMemoryEngine(t, nil, expenses)

	got, err := e.FindAnomalies(context.Background(), window2024(), SensitivityHigh)
	require.NoError(t, err)
	require.Len(t, got.Anomalies, 1)

	a := got.Anomalies[0].(TransactionAnomaly)
	assert.Equal(t, AnomalyExpense, a.Type)
	assert.Equal(t, "refund", a.Category)
	assert.Empty(t, a.PlanID)
	assert.Equal(t, "Unusually low expense", a.Description)
}

func TestFindAnomalies_IdenticalAmounts(t *testing.T) {
	e := newMemoryEngine(t, []domain.RevenueTransaction{
		rev("r1", 42, utcDay(2024, 1, 1), "basic"),
		rev("r2", 42, utcDay(2024, 1, 2), "basic"),
		rev("r3", 42, utcDay(2024, 1, 3), "basic"),
	}, nil)

	got, err := e.FindAnomalies(context.Background(), window2024(), SensitivityHigh)
	require.NoError(t, err)
	assert.Zero(t, got.Statistics.Revenue.StdDev)
	assert.Empty(t, got.Anomalies)
}

func TestFindAnomalies_DataGap(t *testing.T) {
	e := newMemoryEngine(t, []domain.RevenueTransaction{
		rev("r1", 100, utcDay(2024, 1, 1), "basic"),
		rev("r2", 100, utcDay(2024, 1, 20), "basic"),
	}, nil)

	got, err := e.FindAnomalies(context.Background(), window2024(), SensitivityMedium)
	require.NoError(t, err)
	require.Equal(t, 1, got.AnomaliesFound)

	gap, ok := got.Anomalies[0].(DataGapAnomaly)
	require.True(t, ok, "expected DataGapAnomaly, got %T", got.Anomalies[0])
	assert.Equal(t, "revenue", gap.Category)
	assert.Equal(t, 19, gap.DaysMissing)
	assert.Equal(t, utcDay(2024, 1, 1), gap.StartDate)
	assert.Equal(t, utcDay(2024, 1, 20), gap.EndDate)
	assert.Equal(t, "19 day gap in revenue data", gap.Description)
}

func TestFindAnomalies_GapBoundary(t *testing.T) {
	// exactly seven days apart is not a gap
	e := newMemoryEngine(t, nil, []domain.ExpenseTransaction{
		exp("e1", 10, utcDay(2024, 1, 1), "hosting"),
		exp("e2", 10, utcDay(2024, 1, 8), "hosting"),
		exp("e3", 10, utcDay(2024, 1, 16), "hosting"),
	})

	got, err := e.FindAnomalies(context.Background(), window2024(), SensitivityMedium)
	require.NoError(t, err)
	require.Len(t, got.Anomalies, 1)

	gap := got.Anomalies[0].(DataGapAnomaly)
	assert.Equal(t, "expenses", gap.Category)
	assert.Equal(t, 8, gap.DaysMissing)
}

func TestFindAnomalies_OrderedNewestFirst(t *testing.T) {
	e := newMemoryEngine(t, outlierRevenue(), []domain.ExpenseTransaction{
		exp("e1", 50, utcDay(2024, 1, 2), "hosting"),
		exp("e2", 50, utcDay(2024, 1, 25), "hosting"),
	})

	got, err := e.FindAnomalies(context.Background(), window2024(), SensitivityHigh)
	require.NoError(t, err)
	require.Equal(t, 2, got.AnomaliesFound)
	require.Len(t, got.Anomalies, 2)

	assert.IsType(t, DataGapAnomaly{}, got.Anomalies[0])
	assert.Equal(t, utcDay(2024, 1, 25), got.Anomalies[0].At())
	assert.IsType(t, TransactionAnomaly{}, got.Anomalies[1])
	assert.Equal(t, utcDay(2024, 1, 5), got.Anomalies[1].At())
}

func TestFindAnomalies_InvalidSensitivity(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockTransactionStore(ctrl)
	e := NewEngine(mockStore, zerolog.Nop())

	// no store calls are expected
	_, err := e.FindAnomalies(context.Background(), window2024(), Sensitivity("extreme"))
	assert.ErrorIs(t, err, ErrInvalidSensitivity)
}

func TestFindAnomalies_Empty(t *testing.T) {
	e := newMemoryEngine(t, nil, nil)

	got, err := e.FindAnomalies(context.Background(), window2024(), SensitivityMedium)
	require.NoError(t, err)
	assert.Zero(t, got.AnomaliesFound)
	assert.Zero(t, got.Statistics.Revenue)
	assert.Zero(t, got.Statistics.Expenses)
}

func TestFindAnomalies_Idempotent(t *testing.T) {
	e := newMemoryEngine(t, outlierRevenue(), expenseFixture())
	ctx := context.Background()

	first, err := e.FindAnomalies(ctx, window2024(), SensitivityHigh)
	require.NoError(t, err)
	second, err := e.FindAnomalies(ctx, window2024(), SensitivityHigh)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAnomalyJSON(t *testing.T) {
	gap := DataGapAnomaly{
		Category:    "revenue",
		StartDate:   utcDay(2024, 1, 1),
		EndDate:     utcDay(2024, 1, 20),
		DaysMissing: 19,
		Description: "19 day gap in revenue data",
	}
	raw, err := json.Marshal([]Anomaly{gap, TransactionAnomaly{Type: AnomalyRevenue, TransactionID: "r5"}})
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "data_gap", decoded[0]["type"])
	assert.Equal(t, float64(19), decoded[0]["daysMissing"])
	assert.Equal(t, "revenue", decoded[1]["type"])
	assert.NotContains(t, decoded[1], "planId")
}

func TestSensitivityMultiplier(t *testing.T) {
	for s, want := range map[Sensitivity]float64{
		SensitivityLow:    3,
		SensitivityMedium: 2,
		SensitivityHigh:   1.5,
	} {
		got, err := s.Multiplier()
		require.NoError(t, err)
		assert.Equal(t, want, got, "sensitivity %s", s)
	}
}
