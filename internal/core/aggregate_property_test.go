package core

import (
	"fmt"
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/valter-silva-au/estimate-pro/pkg/models"
)

// *For any* list of line items, the recomputed total effort and cost
// SHALL equal the sums of the line items, regardless of what the
// model-provided financial summary claims.
func TestAggregateTotalsMatchLineItems(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 15).Draw(rt, "n")

		var estimates []models.DeliverableEstimate
		var wantEffort, wantCost float64
		for i := 0; i < n; i++ {
			effort := rapid.Float64Range(0, 100).Draw(rt, fmt.Sprintf("effort_%d", i))
			cost := rapid.Float64Range(0, 1e6).Draw(rt, fmt.Sprintf("cost_%d", i))
			confidence := rapid.Float64Range(0, 1).Draw(rt, fmt.Sprintf("conf_%d", i))
			estimates = append(estimates, models.DeliverableEstimate{
				Name:            fmt.Sprintf("item-%d", i),
				FinalEffortDays: effort,
				Cost:            cost,
				Confidence:      confidence,
			})
			wantEffort += effort
			wantCost += cost
		}

		agg := ComputeDisplayAggregates(estimates)
		if math.Abs(agg.TotalEffortDays-wantEffort) > 1e-6 {
			rt.Errorf("TotalEffortDays = %v, want %v", agg.TotalEffortDays, wantEffort)
		}
		if math.Abs(agg.TotalCost-wantCost) > 1e-3 {
			rt.Errorf("TotalCost = %v, want %v", agg.TotalCost, wantCost)
		}
	})
}

// *For any* non-empty list of line items with positive total effort, the
// weighted confidence SHALL stay within the closed interval spanned by
// the item confidences; with zero total effort it SHALL be exactly 0.
func TestWeightedConfidenceStaysInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 15).Draw(rt, "n")

		var estimates []models.DeliverableEstimate
		var totalEffort float64
		lo, hi := 1.0, 0.0
		for i := 0; i < n; i++ {
			confidence := rapid.Float64Range(0, 1).Draw(rt, fmt.Sprintf("conf_%d", i))
			effort := rapid.Float64Range(0, 50).Draw(rt, fmt.Sprintf("effort_%d", i))
			estimates = append(estimates, models.DeliverableEstimate{
				Name:            fmt.Sprintf("item-%d", i),
				FinalEffortDays: effort,
				Confidence:      confidence,
			})
			totalEffort += effort
			lo = math.Min(lo, confidence)
			hi = math.Max(hi, confidence)
		}

		agg := ComputeDisplayAggregates(estimates)
		if totalEffort == 0 {
			if agg.WeightedConfidence != 0 {
				rt.Errorf("WeightedConfidence = %v, want 0 with zero total effort", agg.WeightedConfidence)
			}
			return
		}
		if agg.WeightedConfidence < lo-1e-9 || agg.WeightedConfidence > hi+1e-9 {
			rt.Errorf("WeightedConfidence = %v outside [%v, %v]", agg.WeightedConfidence, lo, hi)
		}
	})
}
