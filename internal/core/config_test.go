package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ".estimaterc"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())

	cfg, err := cm.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", cfg.Currency)
	}
	if cfg.DailyRate != 500 {
		t.Errorf("DailyRate = %v, want 500", cfg.DailyRate)
	}
	if cfg.MaxIterations != 3 {
		t.Errorf("MaxIterations = %d, want 3", cfg.MaxIterations)
	}
	if cfg.EvaluatorTimeout != 120*time.Second {
		t.Errorf("EvaluatorTimeout = %s, want 2m0s", cfg.EvaluatorTimeout)
	}
	if cfg.RetryMaxAttempts != 3 {
		t.Errorf("RetryMaxAttempts = %d, want 3", cfg.RetryMaxAttempts)
	}
}

func TestLoadCurrencyPicksDefaultDailyRate(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "currency: jpy\n")

	cfg, err := NewConfigurationManager(dir).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Currency != "JPY" {
		t.Errorf("Currency = %q, want JPY", cfg.Currency)
	}
	if cfg.DailyRate != 50000 {
		t.Errorf("DailyRate = %v, want the JPY default 50000", cfg.DailyRate)
	}
}

func TestLoadExplicitDailyRateWins(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "currency: JPY\ndaily_rate: 64000\n")

	cfg, err := NewConfigurationManager(dir).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DailyRate != 64000 {
		t.Errorf("DailyRate = %v, want the explicit 64000", cfg.DailyRate)
	}
}

func TestLoadParsesWorkflowSection(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `currency: EUR
tax_rate: 0.2
workflow:
  max_iterations: 5
  evaluator_timeout: 45s
retry:
  max_attempts: 2
`)

	cfg, err := NewConfigurationManager(dir).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MaxIterations != 5 {
		t.Errorf("MaxIterations = %d, want 5", cfg.MaxIterations)
	}
	if cfg.EvaluatorTimeout != 45*time.Second {
		t.Errorf("EvaluatorTimeout = %s, want 45s", cfg.EvaluatorTimeout)
	}
	if cfg.RetryMaxAttempts != 2 {
		t.Errorf("RetryMaxAttempts = %d, want 2", cfg.RetryMaxAttempts)
	}
	if cfg.TaxRate != 0.2 {
		t.Errorf("TaxRate = %v, want 0.2", cfg.TaxRate)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())

	cfg, err := cm.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cm.Validate(cfg); err != nil {
		t.Fatalf("defaults failed validation: %v", err)
	}

	cfg.TaxRate = 1.5
	cfg.MaxIterations = 0
	cfg.Currency = "dollars"
	err = cm.Validate(cfg)
	if err == nil {
		t.Fatal("invalid config passed validation")
	}
	for _, want := range []string{"tax_rate", "max_iterations", "currency"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("validation error %q missing %q", err, want)
		}
	}
}
