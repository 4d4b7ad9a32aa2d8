package cli

import (
	"github.com/valter-silva-au/estimate-pro/internal/core"
	"github.com/valter-silva-au/estimate-pro/internal/currency"
	"github.com/valter-silva-au/estimate-pro/internal/observability"
	"github.com/valter-silva-au/estimate-pro/internal/storage"
	"github.com/valter-silva-au/estimate-pro/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath string
	Config   *models.Config

	// NewOrchestrator builds a workflow orchestrator; interactive selects
	// console decisions over auto-approval.
	NewOrchestrator func(interactive bool) core.Orchestrator

	Workbook   storage.WorkbookStore
	SessionLog storage.SessionLogExporter
	Formatter  currency.Formatter

	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)
