package evaluator

import (
	"context"

	"github.com/valter-silva-au/estimate-pro/pkg/models"
)

// EvaluationFeedback carries the three evaluation results into the
// estimation evaluator. A nil slot means "not evaluated".
type EvaluationFeedback struct {
	Business    *models.BusinessEvaluation
	Quality     *models.QualityEvaluation
	Constraints *models.ConstraintsEvaluation
}

// BusinessEvaluator judges the business and functional requirements.
// prior and feedback carry refinement context on re-evaluation and may be
// nil/empty on the first pass.
type BusinessEvaluator interface {
	Evaluate(ctx context.Context, requirements string, deliverables []models.DeliverableItem, prior *models.BusinessEvaluation, feedback string) Result[models.BusinessEvaluation]
}

// QualityEvaluator judges the quality and non-functional requirements.
type QualityEvaluator interface {
	Evaluate(ctx context.Context, requirements string, deliverables []models.DeliverableItem, prior *models.QualityEvaluation, feedback string) Result[models.QualityEvaluation]
}

// ConstraintsEvaluator judges the constraints and external integration
// requirements.
type ConstraintsEvaluator interface {
	Evaluate(ctx context.Context, requirements string, deliverables []models.DeliverableItem, prior *models.ConstraintsEvaluation, feedback string) Result[models.ConstraintsEvaluation]
}

// EstimationEvaluator produces and refines the cost/effort breakdown.
type EstimationEvaluator interface {
	// Generate produces an initial estimate from the deliverable list and
	// the three evaluation results.
	Generate(ctx context.Context, deliverables []models.DeliverableItem, requirements string, feedback EvaluationFeedback) Result[models.EstimationResult]

	// Refine reworks the current estimate according to free-text user
	// feedback, with the previous estimate as comparison context.
	Refine(ctx context.Context, current *models.EstimationResult, userFeedback string, feedback EvaluationFeedback, previous *models.EstimationResult) Result[models.EstimationResult]
}
