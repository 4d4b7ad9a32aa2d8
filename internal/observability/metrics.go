package observability

import (
	"fmt"
	"time"
)

// SessionMetrics holds calculated metrics derived from the event log.
type SessionMetrics struct {
	WorkflowsStarted     int        `json:"workflows_started"`
	WorkflowsFinished    int        `json:"workflows_finished"`
	EstimatesApproved    int        `json:"estimates_approved"`
	RefinementsApplied   int        `json:"refinements_applied"`
	RefinementsFailed    int        `json:"refinements_failed"`
	RefinementsExhausted int        `json:"refinements_exhausted"`
	WorkflowsCancelled   int        `json:"workflows_cancelled"`
	EstimationsFailed    int        `json:"estimations_failed"`
	EventCount           int        `json:"event_count"`
	OldestEvent          *time.Time `json:"oldest_event,omitempty"`
	NewestEvent          *time.Time `json:"newest_event,omitempty"`
}

// MetricsCalculator derives session metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*SessionMetrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*SessionMetrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &SessionMetrics{}
	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case "workflow.started":
			m.WorkflowsStarted++
		case "workflow.finished":
			m.WorkflowsFinished++
		case "workflow.cancelled":
			m.WorkflowsCancelled++
		case "estimate.approved":
			m.EstimatesApproved++
		case "estimation.refined":
			m.RefinementsApplied++
		case "refinement.failed":
			m.RefinementsFailed++
		case "refinement.exhausted":
			m.RefinementsExhausted++
		case "estimation.failed", "estimation.skipped":
			m.EstimationsFailed++
		}
	}

	return m, nil
}
