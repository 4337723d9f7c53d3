package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dvloznov/cashflow-insights/internal/analytics"
	"github.com/dvloznov/cashflow-insights/internal/api/handlers"
	"github.com/dvloznov/cashflow-insights/internal/backend"
	"github.com/dvloznov/cashflow-insights/internal/config"
	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/export"
	"github.com/dvloznov/cashflow-insights/internal/jobs/inmemory"
	"github.com/dvloznov/cashflow-insights/internal/logger"
	"github.com/dvloznov/cashflow-insights/internal/reports"
	"github.com/dvloznov/cashflow-insights/internal/seed"
	"github.com/dvloznov/cashflow-insights/internal/tools"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New()
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Parse command-line flags
	var (
		port    = flag.String("port", cfg.Port, "HTTP server port (or set PORT env)")
		origins = flag.String("cors-origins", os.Getenv("CORS_ORIGINS"), "Comma-separated allowed origins, empty allows any")
	)
	flag.Parse()
	cfg.Port = *port

	// Initialize logger
	log := logger.NewWithLevel(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	// Initialize store
	st, err := backend.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open transaction store")
	}
	defer st.Close()

	if cfg.SeedDemo {
		counts, err := seed.Seed(ctx, st, seed.Options{})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to seed demo data")
		}
		log.Info().Int("revenue", counts.Revenue).Int("expenses", counts.Expenses).Msg("Seeded demo data")
	}

	// Report export is optional
	var writer handlers.ReportWriter
	if cfg.ReportBucket != "" {
		objects, err := export.NewGCSObjectStore(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create storage client")
		}
		defer objects.Close()
		writer = export.New(objects, nil)
	} else {
		log.Warn().Msg("No REPORT_BUCKET configured - report export will be disabled")
	}

	// Initialize handlers
	resolver := daterange.NewResolver(cfg.Timezone)
	engine := analytics.NewEngine(st, log)
	registry := tools.NewRegistry(engine, resolver, log)

	dashboardHandler := handlers.NewDashboardHandler(engine, resolver, log)
	toolsHandler := handlers.NewToolsHandler(registry, writer, cfg.ReportBucket, log)

	// Initialize job queue for asynchronous report export
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore, inmemory.WithWorkers(cfg.ExportWorkers))
	reportService := reports.NewService(jobQueue, jobStore, registry, writer, cfg.ReportBucket, log)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	if err := jobQueue.Start(workerCtx, reportService.Handle); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job queue")
	}

	reportsHandler := handlers.NewReportsHandler(reportService, log)

	handler := handlers.NewRouter(dashboardHandler, toolsHandler, reportsHandler, splitOrigins(*origins), log)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", st.Name).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Let in-flight exports finish before cancelling the workers
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Job queue did not drain")
	}
	stopWorkers()

	log.Info().Msg("Server exited")
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
