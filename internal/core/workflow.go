package core

import (
	"context"
	"fmt"
	"time"

	"github.com/valter-silva-au/estimate-pro/internal/evaluator"
	"github.com/valter-silva-au/estimate-pro/pkg/models"
)

// Decision is one round of user input on a presented estimate.
type Decision struct {
	Approved bool
	Feedback string
}

// DecisionProvider supplies approval decisions for the refinement loop.
// A non-nil error means the session was interrupted and the workflow
// should exit cleanly.
type DecisionProvider interface {
	Decide(st *WorkflowState) (Decision, error)
}

// Reporter renders the current evaluation and estimation results between
// refinement rounds.
type Reporter interface {
	ShowResults(st *WorkflowState)
}

// EventLogger records workflow lifecycle events. Implementations must
// tolerate being called from a single goroutine only.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// Options tunes orchestrator behavior.
type Options struct {
	MaxIterations    int
	EvaluatorTimeout time.Duration
}

// DefaultOptions returns the standard bounds: three refinement
// iterations and a two minute per-evaluator timeout.
func DefaultOptions() Options {
	return Options{
		MaxIterations:    3,
		EvaluatorTimeout: 120 * time.Second,
	}
}

// Orchestrator runs the full estimation workflow for one deliverable set.
type Orchestrator interface {
	// Execute runs evaluation, estimation, and the refinement loop. It
	// always returns a terminal state, even on total evaluator failure;
	// per-stage problems are recorded in the state's errors and warnings.
	Execute(ctx context.Context, source, requirements string, deliverables []models.DeliverableItem) *WorkflowState
}

type workflowOrchestrator struct {
	business    evaluator.BusinessEvaluator
	quality     evaluator.QualityEvaluator
	constraints evaluator.ConstraintsEvaluator
	estimation  evaluator.EstimationEvaluator
	decisions   DecisionProvider
	reporter    Reporter
	events      EventLogger
	opts        Options
}

// NewOrchestrator creates the workflow orchestrator. The event logger may
// be nil; decisions and reporter must not be.
func NewOrchestrator(
	business evaluator.BusinessEvaluator,
	quality evaluator.QualityEvaluator,
	constraints evaluator.ConstraintsEvaluator,
	estimation evaluator.EstimationEvaluator,
	decisions DecisionProvider,
	reporter Reporter,
	events EventLogger,
	opts Options,
) Orchestrator {
	if opts.MaxIterations < 1 {
		opts.MaxIterations = DefaultOptions().MaxIterations
	}
	if opts.EvaluatorTimeout <= 0 {
		opts.EvaluatorTimeout = DefaultOptions().EvaluatorTimeout
	}
	return &workflowOrchestrator{
		business:    business,
		quality:     quality,
		constraints: constraints,
		estimation:  estimation,
		decisions:   decisions,
		reporter:    reporter,
		events:      events,
		opts:        opts,
	}
}

func (o *workflowOrchestrator) Execute(ctx context.Context, source, requirements string, deliverables []models.DeliverableItem) *WorkflowState {
	st := NewWorkflowState(source, requirements, deliverables)
	o.logEvent("workflow.started", map[string]any{
		"source":       source,
		"deliverables": len(deliverables),
	})

	set := o.evaluateAll(ctx, st, "")
	o.foldEvaluations(st, set)
	st.CurrentStep = StepEvaluationComplete
	o.logEvent("evaluation.completed", map[string]any{
		"complete": st.IsEvaluationComplete(),
		"errors":   len(st.Errors),
	})

	if o.runEstimation(ctx, st) {
		o.runRefinementLoop(ctx, st)
	}

	summary := st.Summary()
	o.logEvent("workflow.finished", map[string]any{
		"step":       string(st.CurrentStep),
		"approved":   st.UserApproved,
		"iterations": summary.IterationCount,
		"errors":     summary.ErrorCount,
		"warnings":   summary.WarningCount,
	})
	return st
}

// runEstimation gates on evaluation completeness, generates the initial
// estimate, and snapshots it as the first history entry. It reports
// whether the refinement loop can proceed.
func (o *workflowOrchestrator) runEstimation(ctx context.Context, st *WorkflowState) bool {
	if !st.IsEvaluationComplete() {
		st.AddError("estimation skipped: evaluation incomplete")
		o.logEvent("estimation.skipped", map[string]any{"reason": "evaluation incomplete"})
		return false
	}

	callCtx, cancel := context.WithTimeout(ctx, o.opts.EvaluatorTimeout)
	defer cancel()
	result := guard("estimation", func() evaluator.Result[models.EstimationResult] {
		return o.estimation.Generate(callCtx, st.Deliverables, st.Requirements, st.EvaluationFeedback())
	})

	logResult(st, "estimation", result.Meta, result.Succeeded(), result.FailureReason())
	st.RecordEstimation(result)
	if !result.Succeeded() {
		o.logEvent("estimation.failed", map[string]any{"reason": result.FailureReason()})
		return false
	}

	st.SaveSnapshot("")
	st.CurrentStep = StepEstimationComplete
	agg := ComputeDisplayAggregates(result.Value.DeliverableEstimates)
	o.logEvent("estimation.completed", map[string]any{
		"total_effort_days": agg.TotalEffortDays,
		"total_cost":        agg.TotalCost,
	})
	return true
}

// runRefinementLoop presents results and collects decisions until the
// user approves, the session is interrupted, or the iteration bound is
// reached. Exhausting the bound without approval is a valid terminal
// outcome and is recorded as a warning, not an error.
func (o *workflowOrchestrator) runRefinementLoop(ctx context.Context, st *WorkflowState) {
	for i := 0; i < o.opts.MaxIterations; i++ {
		o.reporter.ShowResults(st)

		decision, err := o.decisions.Decide(st)
		if err != nil {
			st.CurrentStep = StepCancelled
			st.AddWarning("session ended while awaiting decision")
			o.logEvent("workflow.cancelled", map[string]any{"iteration": i})
			return
		}
		if decision.Approved {
			st.UserApproved = true
			st.CurrentStep = StepApproved
			o.logEvent("estimate.approved", map[string]any{"iteration": i})
			return
		}

		st.UserFeedback = decision.Feedback
		st.CurrentStep = StepNeedsRefinement
		o.runRefinement(ctx, st, decision.Feedback)
	}

	st.AddWarning(fmt.Sprintf("maximum refinement iterations (%d) reached without approval", o.opts.MaxIterations))
	o.logEvent("refinement.exhausted", map[string]any{"max_iterations": o.opts.MaxIterations})
}

// runRefinement applies one round of user feedback to the estimate. The
// previous estimate for the comparison block is the snapshot before the
// current one; on failure the current estimate is kept and no snapshot
// is taken.
func (o *workflowOrchestrator) runRefinement(ctx context.Context, st *WorkflowState, feedback string) {
	current := st.EstimationValue()

	var previous *models.EstimationResult
	if n := len(st.History); n >= 2 {
		previous = st.History[n-2].Estimation
	}

	callCtx, cancel := context.WithTimeout(ctx, o.opts.EvaluatorTimeout)
	defer cancel()
	result := guard("estimation", func() evaluator.Result[models.EstimationResult] {
		return o.estimation.Refine(callCtx, current, feedback, st.EvaluationFeedback(), previous)
	})

	st.IterationCount++
	logResult(st, "estimation", result.Meta, result.Succeeded(), result.FailureReason())
	st.RecordEstimation(result)
	if !result.Succeeded() {
		o.logEvent("refinement.failed", map[string]any{
			"iteration": st.IterationCount,
			"reason":    result.FailureReason(),
		})
		return
	}

	st.SaveSnapshot(feedback)
	st.CurrentStep = StepRefinementComplete
	VerifyModificationApplied(st, feedback)
	o.logEvent("estimation.refined", map[string]any{
		"iteration": st.IterationCount,
		"changes":   st.History[len(st.History)-1].ChangesSummary,
	})
}

type autoApprove struct{}

func (autoApprove) Decide(*WorkflowState) (Decision, error) {
	return Decision{Approved: true}, nil
}

// AutoApprove returns a DecisionProvider that approves the first estimate
// presented. It backs non-interactive runs.
func AutoApprove() DecisionProvider {
	return autoApprove{}
}

type discardReporter struct{}

func (discardReporter) ShowResults(*WorkflowState) {}

// DiscardReporter returns a Reporter that renders nothing.
func DiscardReporter() Reporter {
	return discardReporter{}
}

func (o *workflowOrchestrator) logEvent(eventType string, data map[string]any) {
	if o.events == nil {
		return
	}
	_ = o.events.LogEvent(eventType, data)
}
