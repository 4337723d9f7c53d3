// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendBigQuery = "bigquery"
	BackendPostgres = "postgres"
)

// Config holds settings shared by the command binaries.
type Config struct {
	Env             string
	Port            string
	StoreBackend    string
	BigQueryProject string
	BigQueryDataset string
	DatabaseURL     string
	ReportBucket    string
	LogLevel        string
	Timezone        *time.Location
	SeedDemo        bool
	ExportWorkers   int
}

// Load reads the environment. Outside production a .env file in the working
// directory is loaded first; a missing file is not an error.
func Load() (*Config, error) {
	if os.Getenv("ENV") != "production" {
		_ = godotenv.Load()
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Env:             get("ENV", "development"),
		Port:            strings.TrimPrefix(get("PORT", "8080"), ":"),
		StoreBackend:    strings.ToLower(get("STORE_BACKEND", BackendMemory)),
		BigQueryProject: get("BQ_PROJECT", ""),
		BigQueryDataset: get("BQ_DATASET", "cashflow"),
		DatabaseURL:     databaseURL(get),
		ReportBucket:    get("REPORT_BUCKET", ""),
		LogLevel:        get("LOG_LEVEL", "info"),
		ExportWorkers:   2,
	}

	tzName := get("TZ_NAME", "UTC")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("config: TZ_NAME %q: %w", tzName, err)
	}
	cfg.Timezone = loc

	if raw := get("SEED_DEMO", ""); raw != "" {
		seed, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("config: SEED_DEMO %q: %w", raw, err)
		}
		cfg.SeedDemo = seed
	}

	if raw := get("EXPORT_WORKERS", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("config: EXPORT_WORKERS %q must be a positive integer", raw)
		}
		cfg.ExportWorkers = n
	}

	return cfg, nil
}

// databaseURL prefers DATABASE_URL and otherwise assembles a key/value DSN from
// the DB_* variables. It returns "" when neither is configured.
func databaseURL(get func(key, def string) string) string {
	if url := get("DATABASE_URL", ""); url != "" {
		return url
	}
	host := get("DB_HOST", "")
	user := get("DB_USER", "")
	name := get("DB_NAME", "")
	if host == "" || user == "" || name == "" {
		return ""
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, get("DB_PORT", "5432"), user, get("DB_PASSWORD", ""), name, get("DB_SSLMODE", "disable"))
}

// Validate checks the settings the chosen backend requires.
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreBackend {
	case BackendMemory:
	case BackendBigQuery:
		if c.BigQueryProject == "" {
			errs = append(errs, errors.New("BQ_PROJECT is required for the bigquery backend"))
		}
		if c.BigQueryDataset == "" {
			errs = append(errs, errors.New("BQ_DATASET is required for the bigquery backend"))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL or DB_HOST, DB_USER, DB_NAME are required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("PORT %q is not a number", c.Port))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
