// Package backend opens the transaction store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/dvloznov/cashflow-insights/internal/config"
	infraBQ "github.com/dvloznov/cashflow-insights/internal/infra/bigquery"
	"github.com/dvloznov/cashflow-insights/internal/infra/postgres"
	"github.com/dvloznov/cashflow-insights/internal/store"
	"github.com/dvloznov/cashflow-insights/internal/store/inmemory"
	"github.com/rs/zerolog"
)

// Store is an opened backend. Close releases its connections.
type Store struct {
	store.ReadWriter
	Name  string
	close func() error
}

// Close releases the backend's resources.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open connects to the backend named by cfg.StoreBackend.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	log = log.With().Str("backend", cfg.StoreBackend).Logger()

	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Info().Msg("Using in-memory transaction store")
		return &Store{ReadWriter: inmemory.NewStore(), Name: cfg.StoreBackend}, nil

	case config.BackendBigQuery:
		ds := infraBQ.Dataset{Project: cfg.BigQueryProject, Dataset: cfg.BigQueryDataset}
		s, err := infraBQ.NewStore(ctx, ds, log)
		if err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
		log.Info().Str("project", ds.Project).Str("dataset", ds.Dataset).Msg("Connected to BigQuery")
		return &Store{ReadWriter: s, Name: cfg.StoreBackend, close: s.Close}, nil

	case config.BackendPostgres:
		s, err := postgres.Open(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
		log.Info().Msg("Connected to PostgreSQL")
		return &Store{ReadWriter: s, Name: cfg.StoreBackend, close: s.Close}, nil

	default:
		return nil, fmt.Errorf("Open: unknown store backend %q", cfg.StoreBackend)
	}
}
