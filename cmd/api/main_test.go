package main

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestConfigFailureExits(t *testing.T) {
	if os.Getenv("API_RUN_MAIN") == "1" {
		os.Args = []string{"api"}
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestConfigFailureExits$")
	cmd.Env = append(os.Environ(), "API_RUN_MAIN=1", "ENV=production", "TZ_NAME=Mars/Olympus")
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

func TestSplitOrigins(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"https://a.example", []string{"https://a.example"}},
		{" https://a.example , ,https://b.example ", []string{"https://a.example", "https://b.example"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := splitOrigins(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("splitOrigins(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitOrigins(%q)[%d] = %q, want %q", tt.raw, i, got[i], tt.want[i])
				}
			}
		})
	}
}
