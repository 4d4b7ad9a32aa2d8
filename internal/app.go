// Package internal provides the App struct that wires all components of
// the Estimate Pro system together and initializes the CLI layer.
package internal

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/estimate-pro/internal/cli"
	"github.com/valter-silva-au/estimate-pro/internal/core"
	"github.com/valter-silva-au/estimate-pro/internal/currency"
	"github.com/valter-silva-au/estimate-pro/internal/evaluator"
	"github.com/valter-silva-au/estimate-pro/internal/observability"
	"github.com/valter-silva-au/estimate-pro/internal/storage"
	"github.com/valter-silva-au/estimate-pro/pkg/models"
)

// App holds all service dependencies for the Estimate Pro system.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.Config

	// Evaluators
	Client      *evaluator.Client
	Business    evaluator.BusinessEvaluator
	Quality     evaluator.QualityEvaluator
	Constraints evaluator.ConstraintsEvaluator
	Estimation  evaluator.EstimationEvaluator

	// Storage layer
	Workbook   storage.WorkbookStore
	SessionLog storage.SessionLogExporter

	// Display
	Formatter currency.Formatter

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp creates and wires all components of the Estimate Pro system.
// basePath is the directory containing .estimaterc and the event log
// (typically the project directory or ESP_HOME).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.Load()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigMgr.Validate(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Evaluators ---
	retry := evaluator.RetryPolicy{
		MaxAttempts: cfg.RetryMaxAttempts,
		Backoff:     evaluator.ExponentialBackoff(time.Second),
	}
	app.Client = evaluator.NewClient(cfg, retry)
	app.Business = evaluator.NewBusinessEvaluator(app.Client)
	app.Quality = evaluator.NewQualityEvaluator(app.Client)
	app.Constraints = evaluator.NewConstraintsEvaluator(app.Client)
	app.Estimation = evaluator.NewEstimationEvaluator(app.Client)

	// --- Display ---
	app.Formatter, err = currency.NewFormatter(cfg.Currency)
	if err != nil {
		return nil, err
	}

	// --- Storage layer ---
	outputDir := cfg.OutputDir
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(basePath, outputDir)
	}
	app.Workbook = storage.NewWorkbookStore(outputDir)
	app.SessionLog = storage.NewSessionLogExporter(outputDir)

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, ".esp_events.jsonl")
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: disable observability if log can't be created.
		app.EventLog = nil
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	if cfg.Notifications.Enabled && cfg.Notifications.Slack.WebhookURL != "" {
		app.Notifier = observability.NewSlackNotifier(cfg.Notifications.Slack.WebhookURL)
	}

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = cfg
	cli.Workbook = app.Workbook
	cli.SessionLog = app.SessionLog
	cli.Formatter = app.Formatter
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	var events core.EventLogger
	if app.EventLog != nil {
		events = observability.NewWorkflowEventLogger(app.EventLog)
	}
	opts := core.Options{
		MaxIterations:    cfg.MaxIterations,
		EvaluatorTimeout: cfg.EvaluatorTimeout,
	}

	cli.NewOrchestrator = func(interactive bool) core.Orchestrator {
		decisions := core.AutoApprove()
		reporter := core.DiscardReporter()
		if interactive {
			decisions = cli.NewConsoleDecisionProvider(os.Stdin, os.Stdout)
			reporter = cli.NewConsoleReporter(os.Stdout, app.Formatter)
		}
		return core.NewOrchestrator(
			app.Business, app.Quality, app.Constraints, app.Estimation,
			decisions, reporter, events, opts,
		)
	}

	cli.MCPRunner = &estimateRunnerAdapter{orch: core.NewOrchestrator(
		app.Business, app.Quality, app.Constraints, app.Estimation,
		core.AutoApprove(), core.DiscardReporter(), events, opts,
	)}

	return app, nil
}

// Close releases resources held by the App, such as the event log file
// handle. It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the base path for the Estimate Pro data
// directory. It checks the ESP_HOME env var, then walks up from the
// current directory looking for .estimaterc, then falls back to cwd.
func ResolveBasePath() string {
	if home := os.Getenv("ESP_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".estimaterc")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}

// estimateRunnerAdapter adapts core.Orchestrator to mcp.EstimateRunner.
type estimateRunnerAdapter struct {
	orch core.Orchestrator
}

func (a *estimateRunnerAdapter) Run(ctx context.Context, source, requirements string, deliverables []models.DeliverableItem) *core.WorkflowState {
	return a.orch.Execute(ctx, source, requirements, deliverables)
}
