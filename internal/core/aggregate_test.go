package core

import (
	"math"
	"testing"

	"github.com/valter-silva-au/estimate-pro/pkg/models"
)

func TestComputeDisplayAggregatesEmpty(t *testing.T) {
	agg := ComputeDisplayAggregates(nil)
	if agg.TotalEffortDays != 0 || agg.TotalCost != 0 || agg.WeightedConfidence != 0 {
		t.Errorf("empty aggregate = %+v, want all zeros", agg)
	}
}

func TestWeightedConfidenceZeroEffortIsZero(t *testing.T) {
	agg := ComputeDisplayAggregates([]models.DeliverableEstimate{
		{Name: "a", FinalEffortDays: 0, Confidence: 0.4},
		{Name: "b", FinalEffortDays: 0, Confidence: 0.8},
	})
	if agg.WeightedConfidence != 0 {
		t.Errorf("WeightedConfidence = %v, want 0 when total effort is 0", agg.WeightedConfidence)
	}
}

func TestSummarizeHistoryDeltasNeedsTwoEstimates(t *testing.T) {
	if SummarizeHistoryDeltas(nil) != nil {
		t.Error("empty history should have no deltas")
	}

	one := []IterationSnapshot{{
		IterationNumber: 1,
		Estimation: &models.EstimationResult{DeliverableEstimates: []models.DeliverableEstimate{
			{Name: "a", FinalEffortDays: 20, Cost: 10000},
		}},
	}}
	if SummarizeHistoryDeltas(one) != nil {
		t.Error("single snapshot should have no deltas")
	}
}

func TestSummarizeHistoryDeltasZeroFirstTotal(t *testing.T) {
	history := []IterationSnapshot{
		{
			IterationNumber: 1,
			Estimation: &models.EstimationResult{DeliverableEstimates: []models.DeliverableEstimate{
				{Name: "a", FinalEffortDays: 0, Cost: 0},
			}},
		},
		{
			IterationNumber: 2,
			Estimation: &models.EstimationResult{DeliverableEstimates: []models.DeliverableEstimate{
				{Name: "a", FinalEffortDays: 10, Cost: 5000},
			}},
		},
	}

	deltas := SummarizeHistoryDeltas(history)
	if deltas == nil {
		t.Fatal("expected deltas for two snapshots")
	}
	if deltas.EffortDeltaPercent != nil {
		t.Errorf("EffortDeltaPercent = %v, want nil when the first total is zero", *deltas.EffortDeltaPercent)
	}
	if math.Abs(deltas.EffortDelta-10) > 1e-9 {
		t.Errorf("EffortDelta = %v, want 10", deltas.EffortDelta)
	}
}
