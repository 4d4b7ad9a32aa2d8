// Package core contains the estimation workflow engine: the mutable
// workflow state with its append-only history, the parallel evaluation
// stage, the estimation and refinement loop, and the pure aggregation,
// category inference, and change verification helpers.
package core

import (
	"fmt"
	"time"

	"github.com/valter-silva-au/estimate-pro/internal/evaluator"
	"github.com/valter-silva-au/estimate-pro/pkg/models"
)

// Step identifies the workflow stage the state last completed.
type Step string

const (
	StepInitialization     Step = "initialization"
	StepEvaluationComplete Step = "parallel_evaluation_complete"
	StepEstimationComplete Step = "estimation_complete"
	StepNeedsRefinement    Step = "needs_refinement"
	StepRefinementComplete Step = "refinement_complete"
	StepApproved           Step = "approved"
	StepCancelled          Step = "cancelled"
)

// LogEntry records one evaluator call in the session log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Evaluator string    `json:"evaluator"`
	Iteration int       `json:"iteration"`
	Success   bool      `json:"success"`
	Attempts  int       `json:"attempts,omitempty"`
	Fallback  bool      `json:"fallback,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// IterationSnapshot is an immutable copy of the workflow state taken once
// per refinement cycle (and once for the initial estimate). Snapshots are
// never mutated after creation.
type IterationSnapshot struct {
	IterationNumber      int
	Timestamp            time.Time
	UserFeedback         string
	Business             *models.BusinessEvaluation
	Quality              *models.QualityEvaluation
	Constraints          *models.ConstraintsEvaluation
	Estimation           *models.EstimationResult
	TechnicalAssumptions *models.TechnicalAssumptions
	ChangesSummary       []string
}

// previousResults holds the evaluation set as of the last snapshot, used
// to compute change summaries.
type previousResults struct {
	business    *models.BusinessEvaluation
	quality     *models.QualityEvaluation
	constraints *models.ConstraintsEvaluation
	estimation  *models.EstimationResult
}

// WorkflowState is the single in-memory record for one workflow run.
// Evaluation slots hold the latest result per evaluator and are
// overwritten on refinement; History, SessionLogs, Errors, and Warnings
// are append-only and never truncated within a run. The state is mutated
// by exactly one stage at a time and carries no internal locking.
type WorkflowState struct {
	// Inputs, immutable after construction.
	Source       string
	Requirements string
	Deliverables []models.DeliverableItem

	// Latest result per evaluator.
	Business    *evaluator.Result[models.BusinessEvaluation]
	Quality     *evaluator.Result[models.QualityEvaluation]
	Constraints *evaluator.Result[models.ConstraintsEvaluation]
	Estimation  *evaluator.Result[models.EstimationResult]

	// Process control.
	IterationCount int
	CurrentStep    Step
	UserApproved   bool
	UserFeedback   string

	// Append-only records.
	History     []IterationSnapshot
	SessionLogs []LogEntry
	Errors      []string
	Warnings    []string

	previous *previousResults
}

// NewWorkflowState creates the initial state for one workflow run.
func NewWorkflowState(source, requirements string, deliverables []models.DeliverableItem) *WorkflowState {
	return &WorkflowState{
		Source:       source,
		Requirements: requirements,
		Deliverables: deliverables,
		CurrentStep:  StepInitialization,
	}
}

// AddError appends an error message.
func (st *WorkflowState) AddError(msg string) {
	st.Errors = append(st.Errors, msg)
}

// AddWarning appends an advisory warning.
func (st *WorkflowState) AddWarning(msg string) {
	st.Warnings = append(st.Warnings, msg)
}

// LogEvaluatorCall appends a session log entry for one evaluator call.
// Failures are additionally recorded as errors.
func (st *WorkflowState) LogEvaluatorCall(name string, meta evaluator.CallMeta, success bool, detail string) {
	st.SessionLogs = append(st.SessionLogs, LogEntry{
		Timestamp: time.Now().UTC(),
		Evaluator: name,
		Iteration: st.IterationCount,
		Success:   success,
		Attempts:  meta.Attempts,
		Fallback:  meta.Fallback,
		Detail:    detail,
	})
	if !success {
		reason := detail
		if reason == "" {
			reason = "unknown error"
		}
		st.AddError(fmt.Sprintf("%s: %s", name, reason))
	}
}

// RecordBusiness folds a business evaluation result into the state.
// Failures leave the previous value untouched.
func (st *WorkflowState) RecordBusiness(r evaluator.Result[models.BusinessEvaluation]) {
	if r.Succeeded() {
		st.Business = &r
	}
}

// RecordQuality folds a quality evaluation result into the state.
func (st *WorkflowState) RecordQuality(r evaluator.Result[models.QualityEvaluation]) {
	if r.Succeeded() {
		st.Quality = &r
	}
}

// RecordConstraints folds a constraints evaluation result into the state.
func (st *WorkflowState) RecordConstraints(r evaluator.Result[models.ConstraintsEvaluation]) {
	if r.Succeeded() {
		st.Constraints = &r
	}
}

// RecordEstimation folds an estimation result into the state.
func (st *WorkflowState) RecordEstimation(r evaluator.Result[models.EstimationResult]) {
	if r.Succeeded() {
		st.Estimation = &r
	}
}

// IsEvaluationComplete reports whether business, quality, and constraints
// evaluations are all present and successful. The estimation stage
// refuses to run unless this holds.
func (st *WorkflowState) IsEvaluationComplete() bool {
	return st.Business != nil && st.Business.Succeeded() &&
		st.Quality != nil && st.Quality.Succeeded() &&
		st.Constraints != nil && st.Constraints.Succeeded()
}

// EstimationValue returns the current estimation payload, or nil when no
// estimation has succeeded yet.
func (st *WorkflowState) EstimationValue() *models.EstimationResult {
	if st.Estimation == nil || !st.Estimation.Succeeded() {
		return nil
	}
	return st.Estimation.Value
}

// EvaluationFeedback assembles the evaluation slots for the estimation
// evaluator. Missing slots stay nil and render as "not evaluated".
func (st *WorkflowState) EvaluationFeedback() evaluator.EvaluationFeedback {
	var fb evaluator.EvaluationFeedback
	if st.Business != nil && st.Business.Succeeded() {
		fb.Business = st.Business.Value
	}
	if st.Quality != nil && st.Quality.Succeeded() {
		fb.Quality = st.Quality.Value
	}
	if st.Constraints != nil && st.Constraints.Succeeded() {
		fb.Constraints = st.Constraints.Value
	}
	return fb
}

// SaveSnapshot appends an immutable copy of the current evaluations and
// estimation to the history, tagged with the feedback that produced this
// state. Snapshots are taken after a result is applied: History[0] is the
// initial estimate and each later entry reflects the state after one
// refinement.
func (st *WorkflowState) SaveSnapshot(feedback string) {
	snap := IterationSnapshot{
		IterationNumber: len(st.History) + 1,
		Timestamp:       time.Now().UTC(),
		UserFeedback:    feedback,
		ChangesSummary:  st.changesSummary(),
	}

	if st.Business != nil && st.Business.Succeeded() {
		v := *st.Business.Value
		snap.Business = &v
	}
	if st.Quality != nil && st.Quality.Succeeded() {
		v := *st.Quality.Value
		snap.Quality = &v
	}
	if st.Constraints != nil && st.Constraints.Succeeded() {
		v := *st.Constraints.Value
		snap.Constraints = &v
	}
	if est := st.EstimationValue(); est != nil {
		v := *est
		v.DeliverableEstimates = append([]models.DeliverableEstimate(nil), est.DeliverableEstimates...)
		snap.Estimation = &v
		ta := est.TechnicalAssumptions
		snap.TechnicalAssumptions = &ta
	}

	st.History = append(st.History, snap)
	st.previous = &previousResults{
		business:    snap.Business,
		quality:     snap.Quality,
		constraints: snap.Constraints,
		estimation:  snap.Estimation,
	}
}

// changesSummary compares the current results against the last snapshot.
// Totals are recomputed from line items, never read from the model's
// financial summary.
func (st *WorkflowState) changesSummary() []string {
	if st.previous == nil {
		return []string{"initial estimate"}
	}

	var changes []string

	if curr, prev := st.EstimationValue(), st.previous.estimation; curr != nil && prev != nil {
		currTotal := ComputeDisplayAggregates(curr.DeliverableEstimates).TotalEffortDays
		prevTotal := ComputeDisplayAggregates(prev.DeliverableEstimates).TotalEffortDays
		if diff := currTotal - prevTotal; diff != 0 {
			changes = append(changes, fmt.Sprintf("total effort changed: %+.1f person-days", diff))
		}
	}

	if st.Business != nil && st.Business.Succeeded() && st.previous.business != nil {
		if diff := st.Business.Value.OverallScore - st.previous.business.OverallScore; diff != 0 {
			changes = append(changes, fmt.Sprintf("business score changed: %+d", diff))
		}
	}
	if st.Quality != nil && st.Quality.Succeeded() && st.previous.quality != nil {
		if diff := st.Quality.Value.OverallScore - st.previous.quality.OverallScore; diff != 0 {
			changes = append(changes, fmt.Sprintf("quality score changed: %+d", diff))
		}
	}
	if st.Constraints != nil && st.Constraints.Succeeded() && st.previous.constraints != nil {
		if diff := st.Constraints.Value.OverallScore - st.previous.constraints.OverallScore; diff != 0 {
			changes = append(changes, fmt.Sprintf("constraints score changed: %+d", diff))
		}
	}

	if len(changes) == 0 {
		changes = append(changes, "no change in evaluation results")
	}
	return changes
}

// StateSummary is a per-slot completion view of the workflow state.
type StateSummary struct {
	BusinessComplete    bool
	QualityComplete     bool
	ConstraintsComplete bool
	EstimationComplete  bool
	BusinessScore       int
	QualityScore        int
	ConstraintsScore    int
	IterationCount      int
	ErrorCount          int
	WarningCount        int
}

// Summary derives the completion view used by display and log export.
func (st *WorkflowState) Summary() StateSummary {
	s := StateSummary{
		BusinessComplete:    st.Business != nil && st.Business.Succeeded(),
		QualityComplete:     st.Quality != nil && st.Quality.Succeeded(),
		ConstraintsComplete: st.Constraints != nil && st.Constraints.Succeeded(),
		EstimationComplete:  st.EstimationValue() != nil,
		IterationCount:      st.IterationCount,
		ErrorCount:          len(st.Errors),
		WarningCount:        len(st.Warnings),
	}
	if s.BusinessComplete {
		s.BusinessScore = st.Business.Value.OverallScore
	}
	if s.QualityComplete {
		s.QualityScore = st.Quality.Value.OverallScore
	}
	if s.ConstraintsComplete {
		s.ConstraintsScore = st.Constraints.Value.OverallScore
	}
	return s
}
