package main

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/cashflow-insights/internal/analytics"
)

func TestConfigFailureExits(t *testing.T) {
	if os.Getenv("CLI_RUN_MAIN") == "1" {
		os.Args = []string{"cli", "tools"}
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestConfigFailureExits$")
	cmd.Env = append(os.Environ(), "CLI_RUN_MAIN=1", "ENV=production", "TZ_NAME=Mars/Olympus")
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected non-zero exit, got err=%v output=%s", err, out)
	}
	if exitErr.ExitCode() != 1 {
		t.Errorf("exit code = %d, want 1", exitErr.ExitCode())
	}
	if !strings.Contains(string(out), "Failed to load configuration") {
		t.Errorf("output missing fatal message: %s", out)
	}
}

func TestPrintDashboard(t *testing.T) {
	d := analytics.DashboardResult{
		Metrics: analytics.DashboardMetrics{TotalRevenue: 1234567.5, TotalExpenses: 1000, NetCashflow: 1233567.5, ActiveAccounts: 3},
		ChartData: []analytics.ChartPoint{
			{Date: "2024-08-01", Revenue: 1234567.5, Expenses: 1000, NetCashflow: 1233567.5},
		},
		TableData: []analytics.TableRow{
			{Date: "2024-08-15", Type: "revenue", Amount: 300, Category: "pro"},
		},
		Period: analytics.DashboardPeriod{
			StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC),
			Label:     "custom",
		},
	}

	var buf bytes.Buffer
	printDashboard(&buf, d)
	out := buf.String()

	for _, want := range []string{
		"custom: 2024-06-01 to 2024-08-31",
		"1,234,567.50",
		"2024-08",
		"Recent transactions (1)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
