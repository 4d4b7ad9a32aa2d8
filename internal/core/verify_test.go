package core

import (
	"strings"
	"testing"

	"github.com/valter-silva-au/estimate-pro/internal/evaluator"
	"github.com/valter-silva-au/estimate-pro/pkg/models"
)

func stateWithAssumptions(stack string, risks []string) *WorkflowState {
	st := NewWorkflowState("test", "reqs", nil)
	v := models.EstimationResult{
		DeliverableEstimates: []models.DeliverableEstimate{{Name: "a", FinalEffortDays: 10, Cost: 5000}},
		TechnicalAssumptions: models.TechnicalAssumptions{
			EngineerLevel:    "mid-level",
			DevelopmentStack: stack,
		},
		KeyRisks: risks,
	}
	st.RecordEstimation(evaluator.Success(&v, meta("estimation")))
	return st
}

func TestVerifyWarnsWhenPerformanceFeedbackIgnored(t *testing.T) {
	st := stateWithAssumptions("Go, PostgreSQL, React", nil)

	VerifyModificationApplied(st, "we need a 200ms response time under load")

	found := false
	for _, w := range st.Warnings {
		if strings.Contains(w, "performance") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want a performance warning", st.Warnings)
	}
}

func TestVerifyAcceptsReflectedPerformanceFeedback(t *testing.T) {
	st := stateWithAssumptions("Go, PostgreSQL, Redis cache, CDN", nil)

	VerifyModificationApplied(st, "we need a 200ms response time under load")

	if len(st.Warnings) != 0 {
		t.Errorf("warnings = %v, want none when assumptions mention caching", st.Warnings)
	}
}

func TestVerifyWarnsWhenStackStaysMinimal(t *testing.T) {
	st := stateWithAssumptions("Go, PostgreSQL", nil)

	VerifyModificationApplied(st, "switch the frontend framework")

	found := false
	for _, w := range st.Warnings {
		if strings.Contains(w, "development stack") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want a stack warning", st.Warnings)
	}
}

func TestVerifyNoopWithoutEstimateOrFeedback(t *testing.T) {
	st := NewWorkflowState("test", "reqs", nil)
	VerifyModificationApplied(st, "anything")
	if len(st.Warnings) != 0 {
		t.Errorf("warnings = %v, want none without an estimate", st.Warnings)
	}

	st = stateWithAssumptions("Go", nil)
	VerifyModificationApplied(st, "")
	if len(st.Warnings) != 0 {
		t.Errorf("warnings = %v, want none without feedback", st.Warnings)
	}
}
