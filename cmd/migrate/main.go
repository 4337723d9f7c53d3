package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/cashflow-insights/internal/config"
	"github.com/dvloznov/cashflow-insights/internal/logger"
	"github.com/rs/zerolog"
)

// Migration represents a single migration file
type Migration struct {
	Version  int
	Name     string
	Filename string
	SQL      string
	Checksum string
}

// AppliedMigration represents a migration that has already been applied
type AppliedMigration struct {
	Version   int
	Name      string
	AppliedAt time.Time
	Checksum  string
	AppliedBy string
}

// target is a database that migrations are applied to.
type target interface {
	// EnsureSchemaMigrations creates the bookkeeping table if it does not exist.
	EnsureSchemaMigrations(ctx context.Context) error
	// Applied lists migrations already recorded, by ascending version.
	Applied(ctx context.Context) ([]AppliedMigration, error)
	// Apply runs the migration and records it.
	Apply(ctx context.Context, m Migration, appliedBy string) error
}

// Pattern to match migration files: 0001_name.sql
var migrationPattern = regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New()
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}

	var (
		backend       = flag.String("backend", config.BackendBigQuery, "Target backend: bigquery or postgres")
		projectID     = flag.String("project", cfg.BigQueryProject, "GCP project ID (bigquery, or set BQ_PROJECT)")
		datasetID     = flag.String("dataset", cfg.BigQueryDataset, "BigQuery dataset ID (or set BQ_DATASET)")
		dsn           = flag.String("dsn", cfg.DatabaseURL, "PostgreSQL connection string (or set DATABASE_URL)")
		appliedBy     = flag.String("applied-by", "migrate-cli", "Name of the tool applying migrations")
		migrationsDir = flag.String("migrations", "", "Path to migrations directory (default migrations/<backend>)")
	)
	flag.Parse()

	log := logger.NewWithLevel(cfg.LogLevel)
	ctx := context.Background()

	if *migrationsDir == "" {
		*migrationsDir = filepath.Join("migrations", *backend)
	}

	var (
		t            target
		replacements map[string]string
	)
	switch *backend {
	case config.BackendBigQuery:
		if *projectID == "" {
			log.Fatal().Msg("Error: -project flag is required. Please specify your GCP project ID.")
		}
		bq, err := newBigQueryTarget(ctx, *projectID, *datasetID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery client")
		}
		defer bq.Close()
		t = bq
		replacements = map[string]string{"{{PROJECT_ID}}": *projectID, "{{DATASET_ID}}": *datasetID}
		log.Info().Str("project", *projectID).Str("dataset", *datasetID).Msg("Connected to BigQuery")

	case config.BackendPostgres:
		if *dsn == "" {
			log.Fatal().Msg("Error: -dsn flag or DATABASE_URL is required for postgres")
		}
		pg, err := newPostgresTarget(ctx, *dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pg.Close()
		t = pg
		log.Info().Msg("Connected to PostgreSQL")

	default:
		log.Fatal().Str("backend", *backend).Msg("Error: -backend must be bigquery or postgres")
	}

	migrations, err := readMigrations(resolveDir(*migrationsDir), replacements, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read migrations")
	}
	log.Info().Int("count", len(migrations)).Msg("Found migration files")

	appliedCount, err := migrate(ctx, t, migrations, *appliedBy, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}

	if appliedCount == 0 {
		log.Info().Msg("No new migrations to apply. Database is up to date.")
	} else {
		log.Info().Int("applied", appliedCount).Msg("Successfully applied migrations")
	}
}

// migrate applies every migration not yet recorded on t, in version order.
func migrate(ctx context.Context, t target, migrations []Migration, appliedBy string, log zerolog.Logger) (int, error) {
	if err := t.EnsureSchemaMigrations(ctx); err != nil {
		return 0, fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	applied, err := t.Applied(ctx)
	if err != nil {
		return 0, fmt.Errorf("get applied migrations: %w", err)
	}
	log.Info().Int("count", len(applied)).Msg("Found already applied migrations")

	// Build map of applied versions
	appliedByVersion := make(map[int]AppliedMigration, len(applied))
	for _, am := range applied {
		appliedByVersion[am.Version] = am
	}

	appliedCount := 0
	for _, m := range migrations {
		label := fmt.Sprintf("%04d_%s", m.Version, m.Name)

		if am, ok := appliedByVersion[m.Version]; ok {
			if am.Checksum != "" && am.Checksum != m.Checksum {
				log.Warn().Str("migration", label).Msg("Migration file changed after it was applied")
			}
			log.Info().Str("migration", label).Msg("[SKIP] already applied")
			continue
		}

		log.Info().Str("migration", label).Msg("[RUN]")
		if err := t.Apply(ctx, m, appliedBy); err != nil {
			return appliedCount, fmt.Errorf("apply %s: %w", label, err)
		}
		log.Info().Str("migration", label).Msg("[OK]")
		appliedCount++
	}

	return appliedCount, nil
}

// resolveDir also accepts the directory relative to the repository root when run from cmd/migrate.
func resolveDir(dir string) string {
	if _, err := os.Stat(dir); os.IsNotExist(err) && !filepath.IsAbs(dir) {
		if alt := filepath.Join("..", "..", dir); dirExists(alt) {
			return alt
		}
	}
	return dir
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// parseMigrationFilename extracts the version and name from 0001_name.sql.
func parseMigrationFilename(filename string) (int, string, bool) {
	matches := migrationPattern.FindStringSubmatch(filename)
	if matches == nil {
		return 0, "", false
	}
	version, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, "", false
	}
	return version, matches[2], true
}

// readMigrations reads all migration files from dir, substituting placeholders.
func readMigrations(dir string, replacements map[string]string, log zerolog.Logger) ([]Migration, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var migrations []Migration
	seen := make(map[int]string)
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		version, name, ok := parseMigrationFilename(file.Name())
		if !ok {
			log.Warn().Str("file", file.Name()).Msg("Skipping file with invalid format")
			continue
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("duplicate migration version %04d: %s and %s", version, prev, file.Name())
		}
		seen[version] = file.Name()

		content, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading file %s: %w", file.Name(), err)
		}

		sql := string(content)
		for placeholder, value := range replacements {
			sql = strings.ReplaceAll(sql, placeholder, value)
		}

		// Checksum covers the file as written, so the same migration matches across datasets.
		migrations = append(migrations, Migration{
			Version:  version,
			Name:     name,
			Filename: file.Name(),
			SQL:      sql,
			Checksum: checksum(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

func checksum(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}
