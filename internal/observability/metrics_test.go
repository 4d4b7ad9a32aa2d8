package observability

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestLog(t *testing.T) EventLog {
	t.Helper()
	el, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	t.Cleanup(func() { _ = el.Close() })
	return el
}

func TestMetricsCountWorkflowOutcomes(t *testing.T) {
	el := newTestLog(t)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	events := []string{
		"workflow.started",
		"estimation.refined",
		"estimation.refined",
		"estimate.approved",
		"workflow.finished",
		"workflow.started",
		"refinement.failed",
		"workflow.cancelled",
	}
	for i, eventType := range events {
		if err := el.Write(Event{
			Time:  base.Add(time.Duration(i) * time.Minute),
			Level: "INFO",
			Type:  eventType,
		}); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	metrics, err := NewMetricsCalculator(el).Calculate(base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if metrics.WorkflowsStarted != 2 {
		t.Errorf("WorkflowsStarted = %d, want 2", metrics.WorkflowsStarted)
	}
	if metrics.WorkflowsFinished != 1 {
		t.Errorf("WorkflowsFinished = %d, want 1", metrics.WorkflowsFinished)
	}
	if metrics.EstimatesApproved != 1 {
		t.Errorf("EstimatesApproved = %d, want 1", metrics.EstimatesApproved)
	}
	if metrics.RefinementsApplied != 2 {
		t.Errorf("RefinementsApplied = %d, want 2", metrics.RefinementsApplied)
	}
	if metrics.RefinementsFailed != 1 {
		t.Errorf("RefinementsFailed = %d, want 1", metrics.RefinementsFailed)
	}
	if metrics.WorkflowsCancelled != 1 {
		t.Errorf("WorkflowsCancelled = %d, want 1", metrics.WorkflowsCancelled)
	}
	if metrics.EventCount != len(events) {
		t.Errorf("EventCount = %d, want %d", metrics.EventCount, len(events))
	}
}

func TestMetricsHonorSinceWindow(t *testing.T) {
	el := newTestLog(t)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	old := Event{Time: base.AddDate(0, 0, -30), Level: "INFO", Type: "workflow.started"}
	recent := Event{Time: base, Level: "INFO", Type: "workflow.started"}
	for _, e := range []Event{old, recent} {
		if err := el.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	metrics, err := NewMetricsCalculator(el).Calculate(base.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if metrics.WorkflowsStarted != 1 {
		t.Errorf("WorkflowsStarted = %d, want only the recent event", metrics.WorkflowsStarted)
	}
}

func TestWorkflowEventLoggerLevels(t *testing.T) {
	el := newTestLog(t)
	logger := NewWorkflowEventLogger(el)

	if err := logger.LogEvent("workflow.started", map[string]any{"source": "test"}); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}
	if err := logger.LogEvent("refinement.failed", nil); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}
	if err := logger.LogEvent("refinement.exhausted", nil); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}

	errors, err := el.Read(EventFilter{Level: "ERROR"})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(errors) != 1 || errors[0].Type != "refinement.failed" {
		t.Errorf("ERROR events = %+v, want only refinement.failed", errors)
	}

	warns, err := el.Read(EventFilter{Level: "WARN"})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(warns) != 1 || warns[0].Type != "refinement.exhausted" {
		t.Errorf("WARN events = %+v, want only refinement.exhausted", warns)
	}
}
