// Package seed generates a deterministic demo dataset of revenue and expenses.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/dvloznov/cashflow-insights/internal/domain"
	"github.com/dvloznov/cashflow-insights/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultSeed makes repeated runs produce identical data.
const DefaultSeed = 42

type plan struct {
	id          string
	price       int64 // cents
	subscribers int   // new payments per month, before jitter
}

var plans = []plan{
	{"starter", 1900, 40},
	{"growth", 4900, 18},
	{"scale", 14900, 6},
}

type expenseTemplate struct {
	description string
	vendor      string
	category    string
	minAmount   int64 // cents
	maxAmount   int64
	recurring   bool
}

var monthlyExpenses = []expenseTemplate{
	{"Office rent", "Regus", "rent", 320000, 320000, true},
	{"Cloud hosting", "Google Cloud", "infrastructure", 85000, 140000, true},
	{"Payroll", "Gusto", "payroll", 2100000, 2100000, true},
	{"CRM seats", "HubSpot", "software", 45000, 45000, true},
	{"Accounting", "Pilot", "professional_services", 60000, 60000, true},
}

var occasionalExpenses = []expenseTemplate{
	{"Ad campaign", "Google Ads", "marketing", 30000, 250000, false},
	{"Team travel", "Booking.com", "travel", 40000, 180000, false},
	{"Laptop", "Apple", "equipment", 150000, 320000, false},
	{"Conference tickets", "Eventbrite", "marketing", 20000, 90000, false},
	{"Legal review", "Cooley", "professional_services", 80000, 400000, false},
}

// Options controls the generated dataset.
type Options struct {
	Months int       // number of calendar months ending at End; defaults to 6
	End    time.Time // last instant of the dataset; defaults to now
	Seed   int64     // defaults to DefaultSeed
}

// Dataset is the generated demo data.
type Dataset struct {
	Revenue  []domain.RevenueTransaction
	Expenses []domain.ExpenseTransaction
}

// Generate builds the dataset. The same options always yield the same rows.
func Generate(opts Options) Dataset {
	if opts.Months <= 0 {
		opts.Months = 6
	}
	if opts.End.IsZero() {
		opts.End = time.Now()
	}
	if opts.Seed == 0 {
		opts.Seed = DefaultSeed
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	end := opts.End.UTC()
	firstMonth := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(opts.Months - 1), 0)

	var ds Dataset
	for m := 0; m < opts.Months; m++ {
		monthStart := firstMonth.AddDate(0, m, 0)
		days := daysIn(monthStart, end)
		if days == 0 {
			continue
		}

		for _, p := range plans {
			// customer base grows a little every month
			n := p.subscribers + m*p.subscribers/10 + rng.Intn(p.subscribers/4+1)
			for i := 0; i < n; i++ {
				ds.Revenue = append(ds.Revenue, domain.RevenueTransaction{
					ID:          newID(rng),
					Amount:      decimal.New(p.price, -2),
					Date:        randomInstant(rng, monthStart, days, end),
					PlanID:      p.id,
					Category:    "subscription",
					Description: fmt.Sprintf("%s plan subscription", p.id),
					CustomerID:  fmt.Sprintf("cus_%05d", rng.Intn(100000)),
				})
			}
		}
		// occasional one-off add-on purchases
		for i := 0; i < rng.Intn(5); i++ {
			p := plans[rng.Intn(len(plans))]
			ds.Revenue = append(ds.Revenue, domain.RevenueTransaction{
				ID:          newID(rng),
				Amount:      amountBetween(rng, 5000, 50000),
				Date:        randomInstant(rng, monthStart, days, end),
				PlanID:      p.id,
				Category:    "addon",
				Description: "Onboarding package",
			})
		}

		for _, tmpl := range monthlyExpenses {
			// bills land on the same day every month
			day := 1
			if tmpl.category == "payroll" {
				day = 25
			}
			at := monthStart.AddDate(0, 0, day-1).Add(9 * time.Hour)
			if at.After(end) {
				continue
			}
			ds.Expenses = append(ds.Expenses, expense(rng, tmpl, at))
		}
		for i := 0; i < 2+rng.Intn(4); i++ {
			tmpl := occasionalExpenses[rng.Intn(len(occasionalExpenses))]
			ds.Expenses = append(ds.Expenses, expense(rng, tmpl, randomInstant(rng, monthStart, days, end)))
		}
	}
	return ds
}

// Counts reports how many rows were written.
type Counts struct {
	Revenue  int `json:"revenue"`
	Expenses int `json:"expenses"`
}

// Seed generates the dataset and writes it through w.
func Seed(ctx context.Context, w store.TransactionWriter, opts Options) (Counts, error) {
	ds := Generate(opts)
	if err := w.InsertRevenue(ctx, ds.Revenue); err != nil {
		return Counts{}, fmt.Errorf("Seed: insert revenue: %w", err)
	}
	if err := w.InsertExpenses(ctx, ds.Expenses); err != nil {
		return Counts{}, fmt.Errorf("Seed: insert expenses: %w", err)
	}
	return Counts{Revenue: len(ds.Revenue), Expenses: len(ds.Expenses)}, nil
}

func expense(rng *rand.Rand, tmpl expenseTemplate, at time.Time) domain.ExpenseTransaction {
	return domain.ExpenseTransaction{
		ID:          newID(rng),
		Amount:      amountBetween(rng, tmpl.minAmount, tmpl.maxAmount),
		Date:        at,
		Category:    tmpl.category,
		Description: tmpl.description,
		Vendor:      tmpl.vendor,
		IsRecurring: tmpl.recurring,
	}
}

// daysIn returns how many days of the month starting at monthStart lie on or before end.
func daysIn(monthStart, end time.Time) int {
	next := monthStart.AddDate(0, 1, 0)
	if end.Before(next) {
		if end.Before(monthStart) {
			return 0
		}
		return end.Day()
	}
	return next.AddDate(0, 0, -1).Day()
}

func randomInstant(rng *rand.Rand, monthStart time.Time, days int, end time.Time) time.Time {
	t := monthStart.
		AddDate(0, 0, rng.Intn(days)).
		Add(time.Duration(8+rng.Intn(12)) * time.Hour).
		Add(time.Duration(rng.Intn(60)) * time.Minute)
	if t.After(end) {
		return end
	}
	return t
}

func amountBetween(rng *rand.Rand, minCents, maxCents int64) decimal.Decimal {
	cents := minCents
	if maxCents > minCents {
		cents += rng.Int63n(maxCents - minCents + 1)
	}
	return decimal.New(cents, -2)
}

func newID(rng *rand.Rand) string {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		// rand.Rand never fails to fill a buffer
		return uuid.NewString()
	}
	return id.String()
}
