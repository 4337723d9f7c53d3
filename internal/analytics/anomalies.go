package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/domain"
	"github.com/dvloznov/cashflow-insights/internal/stats"
	"github.com/dvloznov/cashflow-insights/internal/store"
	"github.com/shopspring/decimal"
)

// Sensitivity controls how many standard deviations count as an outlier.
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// Multiplier returns the outlier threshold in standard deviations.
func (s Sensitivity) Multiplier() (float64, error) {
	switch s {
	case SensitivityLow:
		return 3, nil
	case SensitivityMedium:
		return 2, nil
	case SensitivityHigh:
		return 1.5, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSensitivity, s)
}

const (
	AnomalyRevenue = "revenue"
	AnomalyExpense = "expense"
	AnomalyDataGap = "data_gap"

	gapCategoryRevenue  = "revenue"
	gapCategoryExpenses = "expenses"

	// consecutive transactions further apart than this are reported as a gap
	maxGapDays = 7
)

// Anomaly is either a TransactionAnomaly or a DataGapAnomaly.
type Anomaly interface {
	// At is the instant the anomaly is ordered by.
	At() time.Time
	isAnomaly()
}

// TransactionAnomaly is a single transaction whose amount lies unusually far from the mean.
type TransactionAnomaly struct {
	Type          string    `json:"type"`
	TransactionID string    `json:"transactionId"`
	Amount        float64   `json:"amount"`
	Date          time.Time `json:"date"`
	PlanID        string    `json:"planId,omitempty"`
	Category      string    `json:"category,omitempty"`
	Deviation     float64   `json:"deviation"`
	Description   string    `json:"description"`
}

func (a TransactionAnomaly) At() time.Time { return a.Date }
func (TransactionAnomaly) isAnomaly()      {}

// DataGapAnomaly is a stretch of more than a week without transactions of one kind.
type DataGapAnomaly struct {
	Category    string    `json:"category"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	DaysMissing int       `json:"daysMissing"`
	Description string    `json:"description"`
}

func (a DataGapAnomaly) At() time.Time { return a.EndDate }
func (DataGapAnomaly) isAnomaly()      {}

// MarshalJSON adds the data_gap type discriminator.
func (a DataGapAnomaly) MarshalJSON() ([]byte, error) {
	type plain DataGapAnomaly
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{Type: AnomalyDataGap, plain: plain(a)})
}

// AnomalyStatistics is the baseline the outlier test was run against.
type AnomalyStatistics struct {
	Revenue  stats.Summary `json:"revenue"`
	Expenses stats.Summary `json:"expenses"`
}

type AnomalyReport struct {
	Header
	Sensitivity    Sensitivity       `json:"sensitivity"`
	AnomaliesFound int               `json:"anomaliesFound"`
	Statistics     AnomalyStatistics `json:"statistics"`
	Anomalies      []Anomaly         `json:"anomalies"`
}

// FindAnomalies flags transactions more than k standard deviations from their kind's
// mean (k from sensitivity) and gaps of more than a week between consecutive
// transactions of a kind. Results are ordered newest first.
func (e *Engine) FindAnomalies(ctx context.Context, w daterange.Window, sensitivity Sensitivity) (AnomalyReport, error) {
	e.debug(ctx, "FindAnomalies", w)

	k, err := sensitivity.Multiplier()
	if err != nil {
		return AnomalyReport{}, fmt.Errorf("Engine.FindAnomalies: %w", err)
	}

	revenue, err := e.store.ListRevenue(ctx, w.DateRange, store.ListOptions{})
	if err != nil {
		return AnomalyReport{}, fmt.Errorf("Engine.FindAnomalies: list revenue: %w", err)
	}
	expenses, err := e.store.ListExpenses(ctx, w.DateRange, store.ListOptions{})
	if err != nil {
		return AnomalyReport{}, fmt.Errorf("Engine.FindAnomalies: list expenses: %w", err)
	}

	revenueAmounts := make([]decimal.Decimal, len(revenue))
	revenueDates := make([]time.Time, len(revenue))
	for i, t := range revenue {
		revenueAmounts[i] = t.Amount
		revenueDates[i] = t.Date
	}
	expenseAmounts := make([]decimal.Decimal, len(expenses))
	expenseDates := make([]time.Time, len(expenses))
	for i, t := range expenses {
		expenseAmounts[i] = t.Amount
		expenseDates[i] = t.Date
	}

	revenueStats := stats.Describe(revenueAmounts)
	expenseStats := stats.Describe(expenseAmounts)

	var outliers []Anomaly
	for _, t := range revenue {
		if a, ok := outlier(AnomalyRevenue, t.ID, t.Amount, t.Date, revenueStats, k); ok {
			a.PlanID = t.PlanID
			outliers = append(outliers, a)
		}
	}
	for _, t := range expenses {
		if a, ok := outlier(AnomalyExpense, t.ID, t.Amount, t.Date, expenseStats, k); ok {
			a.Category = t.Category
			outliers = append(outliers, a)
		}
	}

	revenueGaps := findGaps(revenueDates, gapCategoryRevenue)
	expenseGaps := findGaps(expenseDates, gapCategoryExpenses)

	all := make([]Anomaly, 0, len(outliers)+len(revenueGaps)+len(expenseGaps))
	all = append(all, outliers...)
	all = append(all, revenueGaps...)
	all = append(all, expenseGaps...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].At().After(all[j].At()) })

	return AnomalyReport{
		Header:         newHeader(w),
		Sensitivity:    sensitivity,
		AnomaliesFound: len(outliers) + len(revenueGaps) + len(expenseGaps),
		Statistics:     AnomalyStatistics{Revenue: revenueStats, Expenses: expenseStats},
		Anomalies:      all,
	}, nil
}

// outlier tests |amount - mean| > k * stdDev with a strict comparison, so a
// sample with no spread never flags anything.
func outlier(kind, id string, amount decimal.Decimal, date time.Time, s stats.Summary, k float64) (TransactionAnomaly, bool) {
	x := domain.ToFloat(amount)
	if !stats.Exceeds(x, s, k) {
		return TransactionAnomaly{}, false
	}

	direction := "low"
	if x > s.Mean {
		direction = "high"
	}
	return TransactionAnomaly{
		Type:          kind,
		TransactionID: id,
		Amount:        x,
		Date:          date,
		Deviation:     stats.Deviation(x, s),
		Description:   fmt.Sprintf("Unusually %s %s", direction, kind),
	}, true
}

// findGaps sorts dates ascending and reports consecutive pairs more than maxGapDays apart.
func findGaps(dates []time.Time, category string) []Anomaly {
	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var gaps []Anomaly
	for i := 1; i < len(sorted); i++ {
		days := sorted[i].Sub(sorted[i-1]).Hours() / 24
		if days <= maxGapDays {
			continue
		}
		missing := int(math.Floor(days))
		gaps = append(gaps, DataGapAnomaly{
			Category:    category,
			StartDate:   sorted[i-1],
			EndDate:     sorted[i],
			DaysMissing: missing,
			Description: fmt.Sprintf("%d day gap in %s data", missing, category),
		})
	}
	return gaps
}
