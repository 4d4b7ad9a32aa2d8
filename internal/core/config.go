package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/estimate-pro/pkg/models"
)

// DefaultDailyRates maps a currency code to the standard daily rate used
// when the configuration does not set one explicitly.
var DefaultDailyRates = map[string]float64{
	"USD": 500,
	"JPY": 50000,
	"EUR": 450,
	"GBP": 400,
}

// ConfigurationManager loads and validates workflow configuration from
// the .estimaterc file, layered with environment overrides and defaults.
type ConfigurationManager interface {
	Load() (*models.Config, error)
	Validate(cfg *models.Config) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading the YAML configuration file.
type viperConfigManager struct {
	// basePath is the directory where .estimaterc resides.
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads the
// configuration file relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// defaultConfig returns a Config populated with sensible defaults.
func defaultConfig() *models.Config {
	return &models.Config{
		Currency:         "USD",
		DailyRate:        DefaultDailyRates["USD"],
		TaxRate:          0.10,
		Model:            "gpt-4o-mini",
		BaseURL:          "https://api.openai.com/v1",
		MaxIterations:    3,
		EvaluatorTimeout: 120 * time.Second,
		RetryMaxAttempts: 3,
		OutputDir:        "output",
	}
}

// Load reads .estimaterc from the base path. Missing file means
// defaults; environment variables override file values.
// Precedence: environment > .estimaterc > defaults.
func (cm *viperConfigManager) Load() (*models.Config, error) {
	cfg := defaultConfig()

	v := viper.New()
	v.SetConfigName(".estimaterc")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("currency", cfg.Currency)
	v.SetDefault("tax_rate", cfg.TaxRate)
	v.SetDefault("model", cfg.Model)
	v.SetDefault("base_url", cfg.BaseURL)
	v.SetDefault("output_dir", cfg.OutputDir)
	v.SetDefault("workflow.max_iterations", cfg.MaxIterations)
	v.SetDefault("workflow.evaluator_timeout", cfg.EvaluatorTimeout.String())
	v.SetDefault("retry.max_attempts", cfg.RetryMaxAttempts)
	v.SetDefault("notifications.enabled", false)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading .estimaterc: %w", err)
		}
	}

	cfg.Currency = strings.ToUpper(v.GetString("currency"))
	cfg.TaxRate = v.GetFloat64("tax_rate")
	cfg.Model = v.GetString("model")
	cfg.BaseURL = v.GetString("base_url")
	cfg.OutputDir = v.GetString("output_dir")
	cfg.MaxIterations = v.GetInt("workflow.max_iterations")
	cfg.RetryMaxAttempts = v.GetInt("retry.max_attempts")
	cfg.Notifications.Enabled = v.GetBool("notifications.enabled")
	cfg.Notifications.Slack.WebhookURL = v.GetString("notifications.slack.webhook_url")

	if timeout, err := time.ParseDuration(v.GetString("workflow.evaluator_timeout")); err == nil {
		cfg.EvaluatorTimeout = timeout
	}

	// Use IsSet to distinguish "not set" (use the per-currency default)
	// from an explicit rate.
	if v.IsSet("daily_rate") {
		cfg.DailyRate = v.GetFloat64("daily_rate")
	} else if rate, ok := DefaultDailyRates[cfg.Currency]; ok {
		cfg.DailyRate = rate
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides layers environment variables over the file values.
// OPENAI_API_KEY is the only source for the API key; it never comes from
// the file.
func applyEnvOverrides(cfg *models.Config) {
	cfg.APIKey = os.Getenv("OPENAI_API_KEY")

	if s := os.Getenv("OPENAI_BASE_URL"); s != "" {
		cfg.BaseURL = s
	}
	if s := os.Getenv("ESTIMATE_MODEL"); s != "" {
		cfg.Model = s
	}
	if s := os.Getenv("ESTIMATE_CURRENCY"); s != "" {
		cfg.Currency = strings.ToUpper(s)
		if rate, ok := DefaultDailyRates[cfg.Currency]; ok {
			cfg.DailyRate = rate
		}
	}
	if s := os.Getenv("ESTIMATE_DAILY_RATE"); s != "" {
		if rate, err := strconv.ParseFloat(s, 64); err == nil {
			cfg.DailyRate = rate
		}
	}
	if s := os.Getenv("ESTIMATE_TAX_RATE"); s != "" {
		if rate, err := strconv.ParseFloat(s, 64); err == nil {
			cfg.TaxRate = rate
		}
	}
	if s := os.Getenv("ESTIMATE_OUTPUT_DIR"); s != "" {
		cfg.OutputDir = s
	}
}

// Validate checks the configuration for invalid values and returns a
// clear error message identifying every problem.
func (cm *viperConfigManager) Validate(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if len(cfg.Currency) != 3 || cfg.Currency != strings.ToUpper(cfg.Currency) {
		errs = append(errs, fmt.Sprintf("currency %q is invalid, must be a 3-letter ISO code", cfg.Currency))
	}
	if cfg.DailyRate <= 0 {
		errs = append(errs, fmt.Sprintf("daily_rate must be positive, got %v", cfg.DailyRate))
	}
	if cfg.TaxRate < 0 || cfg.TaxRate >= 1 {
		errs = append(errs, fmt.Sprintf("tax_rate %v is invalid, must be in [0, 1)", cfg.TaxRate))
	}
	if cfg.Model == "" {
		errs = append(errs, "model must not be empty")
	}
	if cfg.MaxIterations < 1 {
		errs = append(errs, fmt.Sprintf("workflow.max_iterations must be at least 1, got %d", cfg.MaxIterations))
	}
	if cfg.EvaluatorTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("workflow.evaluator_timeout must be positive, got %s", cfg.EvaluatorTimeout))
	}
	if cfg.RetryMaxAttempts < 1 {
		errs = append(errs, fmt.Sprintf("retry.max_attempts must be at least 1, got %d", cfg.RetryMaxAttempts))
	}
	if cfg.OutputDir == "" {
		errs = append(errs, "output_dir must not be empty")
	}
	if cfg.Notifications.Enabled && cfg.Notifications.Slack.WebhookURL == "" {
		errs = append(errs, "notifications.enabled requires notifications.slack.webhook_url")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
