package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

type bigQueryTarget struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

func newBigQueryTarget(ctx context.Context, projectID, datasetID string) (*bigQueryTarget, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &bigQueryTarget{client: client, projectID: projectID, datasetID: datasetID}, nil
}

func (b *bigQueryTarget) Close() error {
	return b.client.Close()
}

func (b *bigQueryTarget) table() string {
	return fmt.Sprintf("`%s.%s.schema_migrations`", b.projectID, b.datasetID)
}

// EnsureSchemaMigrations creates the schema_migrations table if it doesn't exist
func (b *bigQueryTarget) EnsureSchemaMigrations(ctx context.Context) error {
	return b.run(ctx, b.client.Query(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version       INT64 NOT NULL,
			name          STRING NOT NULL,
			applied_at    TIMESTAMP NOT NULL,
			checksum      STRING,
			applied_by    STRING
		)
	`, b.table())))
}

// Applied retrieves the list of already applied migrations
func (b *bigQueryTarget) Applied(ctx context.Context) ([]AppliedMigration, error) {
	query := b.client.Query(fmt.Sprintf(`
		SELECT version, name, applied_at, checksum, applied_by
		FROM %s
		ORDER BY version ASC
	`, b.table()))
	it, err := query.Read(ctx)
	if err != nil {
		// If table doesn't exist yet, return empty list
		if strings.Contains(err.Error(), "Not found") {
			return []AppliedMigration{}, nil
		}
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}

	var applied []AppliedMigration
	for {
		var row struct {
			Version   int64
			Name      string
			AppliedAt time.Time
			Checksum  bigquery.NullString
			AppliedBy bigquery.NullString
		}

		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating results: %w", err)
		}

		applied = append(applied, AppliedMigration{
			Version:   int(row.Version),
			Name:      row.Name,
			AppliedAt: row.AppliedAt,
			Checksum:  row.Checksum.StringVal,
			AppliedBy: row.AppliedBy.StringVal,
		})
	}

	return applied, nil
}

// Apply executes the migration script and records it in schema_migrations.
// BigQuery has no transactional DDL, so a failed record leaves the schema change in place.
func (b *bigQueryTarget) Apply(ctx context.Context, m Migration, appliedBy string) error {
	if err := b.run(ctx, b.client.Query(m.SQL)); err != nil {
		return fmt.Errorf("execute: %w", err)
	}

	record := b.client.Query(fmt.Sprintf(`
		INSERT INTO %s
		(version, name, applied_at, checksum, applied_by)
		VALUES (@version, @name, CURRENT_TIMESTAMP(), @checksum, @applied_by)
	`, b.table()))
	record.Parameters = []bigquery.QueryParameter{
		{Name: "version", Value: m.Version},
		{Name: "name", Value: m.Name},
		{Name: "checksum", Value: m.Checksum},
		{Name: "applied_by", Value: appliedBy},
	}
	if err := b.run(ctx, record); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return nil
}

func (b *bigQueryTarget) run(ctx context.Context, query *bigquery.Query) error {
	job, err := query.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}

	return nil
}
