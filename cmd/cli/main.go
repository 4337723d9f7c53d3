package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dvloznov/cashflow-insights/internal/analytics"
	"github.com/dvloznov/cashflow-insights/internal/backend"
	"github.com/dvloznov/cashflow-insights/internal/config"
	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/export"
	"github.com/dvloznov/cashflow-insights/internal/logger"
	"github.com/dvloznov/cashflow-insights/internal/seed"
	"github.com/dvloznov/cashflow-insights/internal/tools"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New()
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.NewWithLevel(cfg.LogLevel)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "tools":
		runTools(log, cfg)
	case "tool":
		runTool(log, cfg)
	case "dashboard":
		runDashboard(log, cfg)
	case "seed":
		runSeed(log, cfg)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Cashflow Insights CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  tools       List the analytics tools and their parameters")
	fmt.Println("  tool        Run a tool: -name NAME [-params JSON] [-out DEST]")
	fmt.Println("  dashboard   Print dashboard metrics for a period")
	fmt.Println("  seed        Write deterministic demo data to the configured store")
	fmt.Println("  help        Show this help message")
	fmt.Println("\nThe store is chosen by STORE_BACKEND (memory, bigquery, postgres).")
	fmt.Println("The memory store is seeded with demo data on every run.")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// openStore opens the configured backend. The memory backend starts empty, so it
// is seeded to give the read commands something to report on.
func openStore(ctx context.Context, log zerolog.Logger, cfg *config.Config) *backend.Store {
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	st, err := backend.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open transaction store")
	}
	if cfg.StoreBackend == config.BackendMemory || cfg.SeedDemo {
		if _, err := seed.Seed(ctx, st, seed.Options{}); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed demo data")
		}
	}
	return st
}

func newRegistry(log zerolog.Logger, cfg *config.Config, st *backend.Store) (*tools.Registry, *analytics.Engine, *daterange.Resolver) {
	resolver := daterange.NewResolver(cfg.Timezone)
	engine := analytics.NewEngine(st, log)
	return tools.NewRegistry(engine, resolver, log), engine, resolver
}

func runTools(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("tools", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print descriptors as JSON")
	fs.Parse(os.Args[2:])

	// Describing tools needs no store.
	registry := tools.NewRegistry(nil, daterange.NewResolver(cfg.Timezone), log)
	descriptors := registry.Describe()

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(descriptors); err != nil {
			log.Fatal().Err(err).Msg("Failed to encode tools")
		}
		return
	}

	for _, d := range descriptors {
		fmt.Printf("\n%s\n  %s\n", d.Name, d.Description)
		for _, p := range d.Params {
			fmt.Printf("    %-12s %s", p.Name, p.Description)
			if p.Required {
				fmt.Print(" (required)")
			}
			if len(p.Enum) > 0 {
				fmt.Printf(" [%s]", strings.Join(p.Enum, "|"))
			}
			if p.Default != "" {
				fmt.Printf(" default: %s", p.Default)
			}
			fmt.Println()
		}
	}
	fmt.Println()
}

func runTool(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("tool", flag.ExitOnError)
	name := fs.String("name", "", "Tool name (see 'cli tools')")
	params := fs.String("params", "{}", "JSON parameter object")
	out := fs.String("out", export.Stdout, "Destination: - for stdout, a file path, or gs://bucket/object")
	fs.Parse(os.Args[2:])

	if *name == "" {
		log.Fatal().Msg("Error: -name is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log.With().Str("command", "tool").Logger())

	st := openStore(ctx, log, cfg)
	defer st.Close()
	registry, _, _ := newRegistry(log, cfg, st)

	result, err := registry.Invoke(ctx, *name, json.RawMessage(*params))
	if err != nil {
		log.Fatal().Err(err).Str("tool", *name).Msg("Tool failed")
	}

	var objects export.ObjectStore
	if strings.HasPrefix(*out, "gs://") {
		gcs, err := export.NewGCSObjectStore(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create storage client")
		}
		defer gcs.Close()
		objects = gcs
	}

	if err := export.New(objects, os.Stdout).Write(ctx, *out, result); err != nil {
		log.Fatal().Err(err).Str("out", *out).Msg("Failed to write result")
	}
	if *out != export.Stdout {
		fmt.Printf("Wrote %s result to %s\n", *name, *out)
	}
}

func runDashboard(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	period := fs.String("period", daterange.PeriodLast90Days, "Period name or four-digit year")
	startDate := fs.String("start-date", "", "Custom start date (YYYY-MM-DD)")
	endDate := fs.String("end-date", "", "Custom end date (YYYY-MM-DD)")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log.With().Str("command", "dashboard").Logger())

	st := openStore(ctx, log, cfg)
	defer st.Close()
	_, engine, resolver := newRegistry(log, cfg, st)

	window, err := resolver.ResolveWindow(*period, *startDate, *endDate)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid period")
	}

	result, err := engine.Dashboard(ctx, window)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build dashboard")
	}

	printDashboard(os.Stdout, result)
}

func printDashboard(w io.Writer, d analytics.DashboardResult) {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "\n=== Dashboard (%s: %s to %s) ===\n", d.Period.Label,
		d.Period.StartDate.Format("2006-01-02"), d.Period.EndDate.Format("2006-01-02"))
	p.Fprintf(w, "Revenue:         %14.2f\n", d.Metrics.TotalRevenue)
	p.Fprintf(w, "Expenses:        %14.2f\n", d.Metrics.TotalExpenses)
	p.Fprintf(w, "Net cashflow:    %14.2f\n", d.Metrics.NetCashflow)
	p.Fprintf(w, "Active accounts: %14d\n", d.Metrics.ActiveAccounts)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "\n=== Monthly ===")
	fmt.Fprintln(tw, "Month\tRevenue\tExpenses\tNet\t")
	for _, c := range d.ChartData {
		fmt.Fprintln(tw, p.Sprintf("%s\t%.2f\t%.2f\t%.2f\t", c.Date[:7], c.Revenue, c.Expenses, c.NetCashflow))
	}
	tw.Flush()

	fmt.Fprintf(w, "\n=== Recent transactions (%d) ===\n", len(d.TableData))
	limit := len(d.TableData)
	if limit > 10 {
		limit = 10
	}
	for _, row := range d.TableData[:limit] {
		p.Fprintf(w, "%s  %-8s %12.2f  %s\n", row.Date, row.Type, row.Amount, row.Category)
	}
	fmt.Fprintln(w)
}

func runSeed(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	months := fs.Int("months", 6, "Number of months of demo data")
	seedValue := fs.Int64("seed", seed.DefaultSeed, "Random seed")
	fs.Parse(os.Args[2:])

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	st, err := backend.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open transaction store")
	}
	defer st.Close()

	if st.Name == config.BackendMemory {
		log.Warn().Msg("The memory store is discarded when the command exits")
	}

	counts, err := seed.Seed(ctx, st, seed.Options{Months: *months, Seed: *seedValue})
	if err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}

	p := message.NewPrinter(language.English)
	p.Printf("Seeded %d revenue and %d expense transactions into %s.\n", counts.Revenue, counts.Expenses, st.Name)
}
