package core

import "github.com/valter-silva-au/estimate-pro/pkg/models"

// DisplayAggregates holds totals recomputed from estimate line items.
// Display and reporting always use these values; the model-provided
// financial summary is treated as untrusted arithmetic.
type DisplayAggregates struct {
	TotalEffortDays    float64
	TotalCost          float64
	WeightedConfidence float64
}

// ComputeDisplayAggregates sums effort and cost across line items and
// computes the effort-weighted mean confidence. Zero total effort yields
// zero confidence, guarding the division.
func ComputeDisplayAggregates(estimates []models.DeliverableEstimate) DisplayAggregates {
	var agg DisplayAggregates

	var weighted float64
	for _, est := range estimates {
		agg.TotalEffortDays += est.FinalEffortDays
		agg.TotalCost += est.Cost
		weighted += est.Confidence * est.FinalEffortDays
	}

	if agg.TotalEffortDays > 0 {
		agg.WeightedConfidence = weighted / agg.TotalEffortDays
	}
	return agg
}

// HistoryDeltas describes how totals moved between the first and latest
// estimates in the history.
type HistoryDeltas struct {
	FirstEffortDays  float64
	LatestEffortDays float64
	EffortDelta      float64
	CostDelta        float64
	// EffortDeltaPercent is nil when the first total is zero, since the
	// percentage is undefined there.
	EffortDeltaPercent *float64
}

// SummarizeHistoryDeltas compares the first and latest snapshots that
// carry an estimate. It returns nil when fewer than two such snapshots
// exist. Totals are recomputed from line items.
func SummarizeHistoryDeltas(history []IterationSnapshot) *HistoryDeltas {
	var withEstimate []IterationSnapshot
	for _, snap := range history {
		if snap.Estimation != nil {
			withEstimate = append(withEstimate, snap)
		}
	}
	if len(withEstimate) < 2 {
		return nil
	}

	first := ComputeDisplayAggregates(withEstimate[0].Estimation.DeliverableEstimates)
	latest := ComputeDisplayAggregates(withEstimate[len(withEstimate)-1].Estimation.DeliverableEstimates)

	deltas := &HistoryDeltas{
		FirstEffortDays:  first.TotalEffortDays,
		LatestEffortDays: latest.TotalEffortDays,
		EffortDelta:      latest.TotalEffortDays - first.TotalEffortDays,
		CostDelta:        latest.TotalCost - first.TotalCost,
	}
	if first.TotalEffortDays != 0 {
		pct := deltas.EffortDelta / first.TotalEffortDays * 100
		deltas.EffortDeltaPercent = &pct
	}
	return deltas
}
