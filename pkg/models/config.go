package models

import "time"

// Config holds system-wide settings read from .estimaterc via Viper, with
// environment variables taking precedence for credentials.
type Config struct {
	// Cost math inputs.
	Currency  string  `yaml:"currency" mapstructure:"currency"`
	DailyRate float64 `yaml:"daily_rate" mapstructure:"daily_rate"`
	TaxRate   float64 `yaml:"tax_rate" mapstructure:"tax_rate"`

	// Model serving endpoint.
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	APIKey  string `yaml:"-" mapstructure:"-"`

	// Workflow bounds.
	MaxIterations    int           `yaml:"max_iterations" mapstructure:"max_iterations"`
	EvaluatorTimeout time.Duration `yaml:"evaluator_timeout" mapstructure:"evaluator_timeout"`
	RetryMaxAttempts int           `yaml:"retry_max_attempts" mapstructure:"retry_max_attempts"`

	// Output.
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`

	// Notifications.
	Notifications NotificationConfig `yaml:"notifications" mapstructure:"notifications"`
}

// NotificationConfig holds settings for completion notifications.
type NotificationConfig struct {
	Enabled bool        `yaml:"enabled" mapstructure:"enabled"`
	Slack   SlackConfig `yaml:"slack" mapstructure:"slack"`
}

// SlackConfig holds Slack webhook settings.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}
