package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, "cashflow", cfg.BigQueryDataset)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.UTC, cfg.Timezone)
	assert.False(t, cfg.SeedDemo)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 2, cfg.ExportWorkers)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"PORT":           ":9090",
		"STORE_BACKEND":  "BigQuery",
		"BQ_PROJECT":     "acme",
		"TZ_NAME":        "Europe/London",
		"SEED_DEMO":      "true",
		"REPORT_BUCKET":  "reports",
		"EXPORT_WORKERS": "4",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, BackendBigQuery, cfg.StoreBackend)
	assert.Equal(t, "Europe/London", cfg.Timezone.String())
	assert.True(t, cfg.SeedDemo)
	assert.Equal(t, "reports", cfg.ReportBucket)
	assert.Equal(t, 4, cfg.ExportWorkers)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_DatabaseURL(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "explicit url wins",
			env:  map[string]string{"DATABASE_URL": "postgres://u@db/x", "DB_HOST": "ignored"},
			want: "postgres://u@db/x",
		},
		{
			name: "assembled from parts",
			env:  map[string]string{"DB_HOST": "db", "DB_USER": "app", "DB_NAME": "cash"},
			want: "host=db port=5432 user=app password= dbname=cash sslmode=disable",
		},
		{
			name: "incomplete parts",
			env:  map[string]string{"DB_HOST": "db"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromEnv(envMap(tt.env))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.DatabaseURL)
		})
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{"TZ_NAME": "Mars/Olympus"}))
	assert.ErrorContains(t, err, "TZ_NAME")

	_, err = FromEnv(envMap(map[string]string{"SEED_DEMO": "sometimes"}))
	assert.ErrorContains(t, err, "SEED_DEMO")

	_, err = FromEnv(envMap(map[string]string{"EXPORT_WORKERS": "0"}))
	assert.ErrorContains(t, err, "EXPORT_WORKERS")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"bigquery without project", Config{Port: "8080", StoreBackend: BackendBigQuery, BigQueryDataset: "d"}, "BQ_PROJECT"},
		{"postgres without dsn", Config{Port: "8080", StoreBackend: BackendPostgres}, "DATABASE_URL"},
		{"unknown backend", Config{Port: "8080", StoreBackend: "sqlite"}, "sqlite"},
		{"bad port", Config{Port: "http", StoreBackend: BackendMemory}, "PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, tt.cfg.Validate(), tt.wantErr)
		})
	}
}
