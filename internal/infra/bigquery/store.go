package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/domain"
	"github.com/dvloznov/cashflow-insights/internal/store"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// Store is the BigQuery implementation of store.ReadWriter. It holds a shared
// BigQuery client to avoid creating a new connection for each query.
type Store struct {
	client *bigquery.Client
	ds     Dataset
	log    zerolog.Logger
}

// NewStore creates a Store with a shared BigQuery client for the given dataset.
func NewStore(ctx context.Context, ds Dataset, log zerolog.Logger, opts ...option.ClientOption) (*Store, error) {
	if ds.Project == "" || ds.Dataset == "" {
		return nil, fmt.Errorf("NewStore: project and dataset are required")
	}
	client, err := bigquery.NewClient(ctx, ds.Project, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewStore: creating client: %w", err)
	}
	return &Store{client: client, ds: ds, log: log}, nil
}

// Close closes the BigQuery client connection.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Aggregate delegates to AggregateWithClient with the shared client.
func (s *Store) Aggregate(ctx context.Context, kind domain.Kind, rng daterange.Range, f store.Filter) (store.Aggregate, error) {
	s.log.Debug().Str("kind", string(kind)).Str("plan_id", f.PlanID).Msg("bigquery aggregate")
	return AggregateWithClient(ctx, s.client, s.ds, kind, rng, f)
}

// GroupBy delegates to GroupByWithClient with the shared client.
func (s *Store) GroupBy(ctx context.Context, kind domain.Kind, rng daterange.Range, field store.GroupField) ([]store.Group, error) {
	s.log.Debug().Str("kind", string(kind)).Str("field", string(field)).Msg("bigquery group by")
	return GroupByWithClient(ctx, s.client, s.ds, kind, rng, field)
}

// ListRevenue delegates to ListRevenueWithClient with the shared client.
func (s *Store) ListRevenue(ctx context.Context, rng daterange.Range, opts store.ListOptions) ([]domain.RevenueTransaction, error) {
	return ListRevenueWithClient(ctx, s.client, s.ds, rng, opts)
}

// ListExpenses delegates to ListExpensesWithClient with the shared client.
func (s *Store) ListExpenses(ctx context.Context, rng daterange.Range, opts store.ListOptions) ([]domain.ExpenseTransaction, error) {
	return ListExpensesWithClient(ctx, s.client, s.ds, rng, opts)
}

// DistinctCustomers delegates to DistinctCustomersWithClient with the shared client.
func (s *Store) DistinctCustomers(ctx context.Context, rng daterange.Range) (int, error) {
	return DistinctCustomersWithClient(ctx, s.client, s.ds, rng)
}

// InsertRevenue delegates to InsertRevenueWithClient with the shared client.
func (s *Store) InsertRevenue(ctx context.Context, rows []domain.RevenueTransaction) error {
	return InsertRevenueWithClient(ctx, s.client, s.ds, rows)
}

// InsertExpenses delegates to InsertExpensesWithClient with the shared client.
func (s *Store) InsertExpenses(ctx context.Context, rows []domain.ExpenseTransaction) error {
	return InsertExpensesWithClient(ctx, s.client, s.ds, rows)
}

var _ store.ReadWriter = (*Store)(nil)
