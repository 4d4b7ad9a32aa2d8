// Package mcp provides an MCP (Model Context Protocol) server that exposes
// esp functionality as MCP tools for AI coding assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/estimate-pro/internal/core"
	"github.com/valter-silva-au/estimate-pro/internal/observability"
	"github.com/valter-silva-au/estimate-pro/pkg/models"
)

// EstimateRunner runs one non-interactive estimation workflow and returns
// its terminal state.
type EstimateRunner interface {
	Run(ctx context.Context, source, requirements string, deliverables []models.DeliverableItem) *core.WorkflowState
}

// Server wraps esp services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	runner      EstimateRunner
	metricsCalc observability.MetricsCalculator
}

// NewServer creates a new MCP server with the given esp service dependencies.
// metricsCalc may be nil if observability is disabled.
func NewServer(runner EstimateRunner, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		runner:      runner,
		metricsCalc: metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "esp", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type deliverableInput struct {
	Name        string `json:"name" jsonschema:"required,deliverable name (e.g. Login Screen)"`
	Description string `json:"description,omitempty" jsonschema:"what the deliverable covers"`
	Category    string `json:"category,omitempty" jsonschema:"work category; inferred from keywords when omitted"`
	Complexity  string `json:"complexity,omitempty" jsonschema:"low, medium, or high; defaults to medium"`
}

type estimateDeliverablesInput struct {
	Requirements string             `json:"requirements" jsonschema:"required,the project requirements text"`
	Deliverables []deliverableInput `json:"deliverables" jsonschema:"required,the deliverables to estimate"`
}

type estimateLineOutput struct {
	Name            string  `json:"name"`
	FinalEffortDays float64 `json:"final_effort_days"`
	Cost            float64 `json:"cost"`
	Confidence      float64 `json:"confidence"`
	Rationale       string  `json:"rationale,omitempty"`
}

type estimateDeliverablesOutput struct {
	Estimates          []estimateLineOutput `json:"estimates"`
	TotalEffortDays    float64              `json:"total_effort_days"`
	TotalCost          float64              `json:"total_cost"`
	WeightedConfidence float64              `json:"weighted_confidence"`
	BusinessScore      int                  `json:"business_score"`
	QualityScore       int                  `json:"quality_score"`
	ConstraintsScore   int                  `json:"constraints_score"`
	Warnings           []string             `json:"warnings,omitempty"`
	Errors             []string             `json:"errors,omitempty"`
}

type inferCategoryInput struct {
	Name        string `json:"name" jsonschema:"required,deliverable name"`
	Description string `json:"description,omitempty" jsonschema:"deliverable description"`
}

type inferCategoryOutput struct {
	Category string `json:"category"`
}

type getSessionMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type sessionMetricsOutput struct {
	WorkflowsStarted     int    `json:"workflows_started"`
	WorkflowsFinished    int    `json:"workflows_finished"`
	EstimatesApproved    int    `json:"estimates_approved"`
	RefinementsApplied   int    `json:"refinements_applied"`
	RefinementsFailed    int    `json:"refinements_failed"`
	RefinementsExhausted int    `json:"refinements_exhausted"`
	WorkflowsCancelled   int    `json:"workflows_cancelled"`
	EstimationsFailed    int    `json:"estimations_failed"`
	EventCount           int    `json:"event_count"`
	OldestEvent          string `json:"oldest_event,omitempty"`
	NewestEvent          string `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "estimate_deliverables",
		Description: "Run the full estimation workflow non-interactively: parallel business, quality, and constraints evaluation followed by effort and cost estimation. Totals are recomputed from line items.",
	}, s.handleEstimateDeliverables)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "infer_category",
		Description: "Infer the work category of a deliverable from its name and description using keyword rules.",
	}, s.handleInferCategory)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_session_metrics",
		Description: "Get aggregated workflow metrics from the event log, including runs, approvals, and refinement outcomes.",
	}, s.handleGetSessionMetrics)
}

// --- Tool handlers ---

func (s *Server) handleEstimateDeliverables(ctx context.Context, _ *gomcp.CallToolRequest, input estimateDeliverablesInput) (*gomcp.CallToolResult, estimateDeliverablesOutput, error) {
	if input.Requirements == "" {
		return errorResult("requirements is required"), estimateDeliverablesOutput{}, nil
	}
	if len(input.Deliverables) == 0 {
		return errorResult("at least one deliverable is required"), estimateDeliverablesOutput{}, nil
	}

	deliverables := make([]models.DeliverableItem, 0, len(input.Deliverables))
	for i, d := range input.Deliverables {
		if d.Name == "" {
			return errorResult(fmt.Sprintf("deliverable %d has no name", i+1)), estimateDeliverablesOutput{}, nil
		}
		item := models.DeliverableItem{
			Name:        d.Name,
			Description: d.Description,
			Category:    models.Category(d.Category),
			Complexity:  models.Complexity(d.Complexity),
		}
		if !item.Category.Valid() {
			item.Category = core.InferCategory(item.Name, item.Description)
		}
		if !item.Complexity.Valid() {
			item.Complexity = models.ComplexityMedium
		}
		deliverables = append(deliverables, item)
	}

	st := s.runner.Run(ctx, "mcp", input.Requirements, deliverables)

	est := st.EstimationValue()
	if est == nil {
		return errorResult(fmt.Sprintf("estimation failed: %v", st.Errors)), estimateDeliverablesOutput{}, nil
	}

	summary := st.Summary()
	agg := core.ComputeDisplayAggregates(est.DeliverableEstimates)
	out := estimateDeliverablesOutput{
		TotalEffortDays:    agg.TotalEffortDays,
		TotalCost:          agg.TotalCost,
		WeightedConfidence: agg.WeightedConfidence,
		BusinessScore:      summary.BusinessScore,
		QualityScore:       summary.QualityScore,
		ConstraintsScore:   summary.ConstraintsScore,
		Warnings:           st.Warnings,
		Errors:             st.Errors,
	}
	for _, line := range est.DeliverableEstimates {
		out.Estimates = append(out.Estimates, estimateLineOutput{
			Name:            line.Name,
			FinalEffortDays: line.FinalEffortDays,
			Cost:            line.Cost,
			Confidence:      line.Confidence,
			Rationale:       line.Rationale,
		})
	}

	return nil, out, nil
}

func (s *Server) handleInferCategory(_ context.Context, _ *gomcp.CallToolRequest, input inferCategoryInput) (*gomcp.CallToolResult, inferCategoryOutput, error) {
	if input.Name == "" {
		return errorResult("name is required"), inferCategoryOutput{}, nil
	}
	return nil, inferCategoryOutput{
		Category: string(core.InferCategory(input.Name, input.Description)),
	}, nil
}

func (s *Server) handleGetSessionMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getSessionMetricsInput) (*gomcp.CallToolResult, sessionMetricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (observability may be disabled)"), sessionMetricsOutput{}, nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), sessionMetricsOutput{}, nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), sessionMetricsOutput{}, nil
	}

	out := sessionMetricsOutput{
		WorkflowsStarted:     metrics.WorkflowsStarted,
		WorkflowsFinished:    metrics.WorkflowsFinished,
		EstimatesApproved:    metrics.EstimatesApproved,
		RefinementsApplied:   metrics.RefinementsApplied,
		RefinementsFailed:    metrics.RefinementsFailed,
		RefinementsExhausted: metrics.RefinementsExhausted,
		WorkflowsCancelled:   metrics.WorkflowsCancelled,
		EstimationsFailed:    metrics.EstimationsFailed,
		EventCount:           metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
