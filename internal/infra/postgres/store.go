// Package postgres implements the transaction store on PostgreSQL using a pgx connection pool.
package postgres

import (
	"context"
	"fmt"

	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/domain"
	"github.com/dvloznov/cashflow-insights/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Store is the PostgreSQL implementation of store.ReadWriter.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Open creates a pool for dsn and verifies connectivity.
func Open(ctx context.Context, dsn string, log zerolog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("Open: creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("Open: ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

// NewStore wraps an existing pool.
func NewStore(pool *pgxpool.Pool, log zerolog.Logger) *Store {
	return &Store{pool: pool, log: log}
}

// Pool exposes the underlying pool for migrations.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close releases all pooled connections.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Aggregate implements the TransactionStore interface.
func (s *Store) Aggregate(ctx context.Context, kind domain.Kind, rng daterange.Range, f store.Filter) (store.Aggregate, error) {
	query, args, err := buildAggregateQuery(kind, rng, f)
	if err != nil {
		return store.Aggregate{}, fmt.Errorf("Aggregate: %w", err)
	}

	var total string
	var n int64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&total, &n); err != nil {
		return store.Aggregate{}, fmt.Errorf("Aggregate: scan: %w", err)
	}

	sum, err := decimal.NewFromString(total)
	if err != nil {
		return store.Aggregate{}, fmt.Errorf("Aggregate: parsing sum %q: %w", total, err)
	}
	return store.NewAggregate(sum, int(n)), nil
}

// GroupBy implements the TransactionStore interface.
func (s *Store) GroupBy(ctx context.Context, kind domain.Kind, rng daterange.Range, field store.GroupField) ([]store.Group, error) {
	query, args, err := buildGroupQuery(kind, rng, field)
	if err != nil {
		return nil, fmt.Errorf("GroupBy: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("GroupBy: query: %w", err)
	}
	defer rows.Close()

	var groups []store.Group
	for rows.Next() {
		var key, total string
		var n int64
		if err := rows.Scan(&key, &total, &n); err != nil {
			return nil, fmt.Errorf("GroupBy: scan: %w", err)
		}
		sum, err := decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("GroupBy: parsing sum %q: %w", total, err)
		}
		groups = append(groups, store.Group{Key: key, Sum: sum, Count: int(n)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GroupBy: rows: %w", err)
	}
	return groups, nil
}

// ListRevenue implements the TransactionStore interface.
func (s *Store) ListRevenue(ctx context.Context, rng daterange.Range, opts store.ListOptions) ([]domain.RevenueTransaction, error) {
	query, args := buildListQuery(domain.KindRevenue, rng, opts)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListRevenue: query: %w", err)
	}
	defer rows.Close()

	var out []domain.RevenueTransaction
	for rows.Next() {
		var t domain.RevenueTransaction
		var amount string
		if err := rows.Scan(&t.ID, &amount, &t.Date, &t.PlanID, &t.Category, &t.Description, &t.CustomerID); err != nil {
			return nil, fmt.Errorf("ListRevenue: scan: %w", err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("ListRevenue: %s: parsing amount: %w", t.ID, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRevenue: rows: %w", err)
	}
	return out, nil
}

// ListExpenses implements the TransactionStore interface.
func (s *Store) ListExpenses(ctx context.Context, rng daterange.Range, opts store.ListOptions) ([]domain.ExpenseTransaction, error) {
	query, args := buildListQuery(domain.KindExpense, rng, opts)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListExpenses: query: %w", err)
	}
	defer rows.Close()

	var out []domain.ExpenseTransaction
	for rows.Next() {
		var t domain.ExpenseTransaction
		var amount string
		if err := rows.Scan(&t.ID, &amount, &t.Date, &t.Category, &t.Description, &t.Vendor, &t.IsRecurring); err != nil {
			return nil, fmt.Errorf("ListExpenses: scan: %w", err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("ListExpenses: %s: parsing amount: %w", t.ID, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListExpenses: rows: %w", err)
	}
	return out, nil
}

// DistinctCustomers implements the TransactionStore interface.
func (s *Store) DistinctCustomers(ctx context.Context, rng daterange.Range) (int, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT customer_id)
		FROM revenue_transactions
		WHERE transaction_date BETWEEN $1 AND $2
		  AND customer_id IS NOT NULL
		  AND customer_id <> ''
	`, rng.Start, rng.End).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("DistinctCustomers: scan: %w", err)
	}
	return int(n), nil
}

// InsertRevenue implements the TransactionWriter interface in a single batch.
func (s *Store) InsertRevenue(ctx context.Context, rows []domain.RevenueTransaction) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, t := range rows {
		batch.Queue(`
			INSERT INTO revenue_transactions
				(transaction_id, amount, transaction_date, plan_id, category, description, customer_id)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))`,
			t.ID, t.Amount.String(), t.Date, t.PlanID, t.Category, t.Description, t.CustomerID)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("InsertRevenue: batch: %w", err)
	}
	s.log.Debug().Int("rows", len(rows)).Msg("inserted revenue")
	return nil
}

// InsertExpenses implements the TransactionWriter interface in a single batch.
func (s *Store) InsertExpenses(ctx context.Context, rows []domain.ExpenseTransaction) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, t := range rows {
		batch.Queue(`
			INSERT INTO expense_transactions
				(transaction_id, amount, transaction_date, category, description, vendor, is_recurring)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7)`,
			t.ID, t.Amount.String(), t.Date, t.Category, t.Description, t.Vendor, t.IsRecurring)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("InsertExpenses: batch: %w", err)
	}
	s.log.Debug().Int("rows", len(rows)).Msg("inserted expenses")
	return nil
}

var _ store.ReadWriter = (*Store)(nil)
