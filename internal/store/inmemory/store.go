package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/domain"
	"github.com/dvloznov/cashflow-insights/internal/store"
	"github.com/shopspring/decimal"
)

// Store is an in-memory implementation of store.ReadWriter.
// It is safe for concurrent use. Data is lost on restart; use the BigQuery or
// Postgres store for persistence.
type Store struct {
	mu       sync.RWMutex
	revenue  []domain.RevenueTransaction
	expenses []domain.ExpenseTransaction
}

// NewStore creates an empty in-memory transaction store.
func NewStore() *Store {
	return &Store{}
}

// InsertRevenue implements the TransactionWriter interface.
func (s *Store) InsertRevenue(ctx context.Context, rows []domain.RevenueTransaction) error {
	for _, r := range rows {
		if r.ID == "" {
			return fmt.Errorf("InsertRevenue: transaction ID is required")
		}
		if r.PlanID == "" {
			return fmt.Errorf("InsertRevenue: %s: plan ID is required", r.ID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.revenue = append(s.revenue, rows...)
	return nil
}

// InsertExpenses implements the TransactionWriter interface.
func (s *Store) InsertExpenses(ctx context.Context, rows []domain.ExpenseTransaction) error {
	for _, e := range rows {
		if e.ID == "" {
			return fmt.Errorf("InsertExpenses: transaction ID is required")
		}
		if e.Category == "" {
			return fmt.Errorf("InsertExpenses: %s: category is required", e.ID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, rows...)
	return nil
}

// Aggregate implements the TransactionStore interface.
func (s *Store) Aggregate(ctx context.Context, kind domain.Kind, rng daterange.Range, f store.Filter) (store.Aggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := decimal.Zero
	count := 0

	switch kind {
	case domain.KindRevenue:
		for _, r := range s.revenue {
			if !rng.Contains(r.Date) {
				continue
			}
			if f.PlanID != "" && r.PlanID != f.PlanID {
				continue
			}
			if f.Category != "" && r.Category != f.Category {
				continue
			}
			sum = sum.Add(r.Amount)
			count++
		}
	case domain.KindExpense:
		for _, e := range s.expenses {
			if !rng.Contains(e.Date) {
				continue
			}
			if f.Category != "" && e.Category != f.Category {
				continue
			}
			if f.Recurring != nil && e.IsRecurring != *f.Recurring {
				continue
			}
			sum = sum.Add(e.Amount)
			count++
		}
	default:
		return store.Aggregate{}, fmt.Errorf("Aggregate: unknown kind %q", kind)
	}

	return store.NewAggregate(sum, count), nil
}

// GroupBy implements the TransactionStore interface.
func (s *Store) GroupBy(ctx context.Context, kind domain.Kind, rng daterange.Range, field store.GroupField) ([]store.Group, error) {
	if err := store.CheckGroupField(kind, field); err != nil {
		return nil, fmt.Errorf("GroupBy: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	buckets := make(map[string]*store.Group)
	add := func(key string, amount decimal.Decimal) {
		if key == "" {
			return
		}
		g, ok := buckets[key]
		if !ok {
			g = &store.Group{Key: key}
			buckets[key] = g
		}
		g.Sum = g.Sum.Add(amount)
		g.Count++
	}

	if kind == domain.KindRevenue {
		for _, r := range s.revenue {
			if !rng.Contains(r.Date) {
				continue
			}
			if field == store.GroupPlanID {
				add(r.PlanID, r.Amount)
			} else {
				add(r.Category, r.Amount)
			}
		}
	} else {
		for _, e := range s.expenses {
			if !rng.Contains(e.Date) {
				continue
			}
			if field == store.GroupVendor {
				add(e.Vendor, e.Amount)
			} else {
				add(e.Category, e.Amount)
			}
		}
	}

	groups := make([]store.Group, 0, len(buckets))
	for _, g := range buckets {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups, nil
}

// ListRevenue implements the TransactionStore interface.
func (s *Store) ListRevenue(ctx context.Context, rng daterange.Range, opts store.ListOptions) ([]domain.RevenueTransaction, error) {
	s.mu.RLock()
	var out []domain.RevenueTransaction
	for _, r := range s.revenue {
		if rng.Contains(r.Date) {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return before(out[i].Date.UnixNano(), out[i].ID, out[j].Date.UnixNano(), out[j].ID, opts.Newest)
	})
	return limit(out, opts.Limit), nil
}

// ListExpenses implements the TransactionStore interface.
func (s *Store) ListExpenses(ctx context.Context, rng daterange.Range, opts store.ListOptions) ([]domain.ExpenseTransaction, error) {
	s.mu.RLock()
	var out []domain.ExpenseTransaction
	for _, e := range s.expenses {
		if rng.Contains(e.Date) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return before(out[i].Date.UnixNano(), out[i].ID, out[j].Date.UnixNano(), out[j].ID, opts.Newest)
	})
	return limit(out, opts.Limit), nil
}

// DistinctCustomers implements the TransactionStore interface.
func (s *Store) DistinctCustomers(ctx context.Context, rng daterange.Range) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, r := range s.revenue {
		if r.CustomerID != "" && rng.Contains(r.Date) {
			seen[r.CustomerID] = struct{}{}
		}
	}
	return len(seen), nil
}

// before orders by date, then ID, flipping both for newest-first listings.
func before(ti int64, idi string, tj int64, idj string, newest bool) bool {
	if ti != tj {
		if newest {
			return ti > tj
		}
		return ti < tj
	}
	if newest {
		return idi > idj
	}
	return idi < idj
}

func limit[T any](rows []T, n int) []T {
	if n > 0 && n < len(rows) {
		return rows[:n]
	}
	return rows
}

// Ensure Store implements the store interfaces.
var _ store.ReadWriter = (*Store)(nil)
