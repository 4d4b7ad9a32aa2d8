package evaluator

import (
	"math"

	"github.com/valter-silva-au/estimate-pro/pkg/models"
)

// Fallback values substitute for model output when the endpoint is
// unreachable or keeps returning malformed data. They are always marked
// with CallMeta.Fallback so downstream display can flag them; the scores
// are deliberately middling and the confidence deliberately low.

const fallbackAssessment = "fallback value: model endpoint unavailable"

func fallbackDetail() models.ScoreDetail {
	return models.ScoreDetail{Score: 70, Assessment: fallbackAssessment}
}

func fallbackBusinessEvaluation() models.BusinessEvaluation {
	return models.BusinessEvaluation{
		OverallScore:           70,
		BusinessPurpose:        fallbackDetail(),
		FunctionalRequirements: fallbackDetail(),
		UserStories:            fallbackDetail(),
		BusinessValue:          fallbackDetail(),
		RiskFactors:            []string{"evaluation produced without model access"},
	}
}

func fallbackQualityEvaluation() models.QualityEvaluation {
	return models.QualityEvaluation{
		OverallScore:            70,
		PerformanceRequirements: fallbackDetail(),
		SecurityRequirements:    fallbackDetail(),
		AvailabilityReliability: fallbackDetail(),
		Usability:               fallbackDetail(),
		TotalEffortImpact:       10,
		RiskFactors:             []string{"evaluation produced without model access"},
	}
}

func fallbackConstraintsEvaluation() models.ConstraintsEvaluation {
	return models.ConstraintsEvaluation{
		OverallScore:              70,
		TechnicalConstraints:      fallbackDetail(),
		ExternalIntegrations:      fallbackDetail(),
		ComplianceRegulations:     fallbackDetail(),
		InfrastructureConstraints: fallbackDetail(),
		TotalEffortImpact:         10,
		FeasibilityRisks:          []string{"evaluation produced without model access"},
	}
}

// fallbackBaseEffort maps deliverable categories to the midpoint of the
// standard effort ranges.
var fallbackBaseEffort = map[models.Category]float64{
	models.CategoryDocumentation: 5,
	models.CategoryFrontend:      15,
	models.CategoryBackend:       20,
	models.CategoryDatabase:      10,
	models.CategoryTesting:       10,
	models.CategorySecurity:      8,
	models.CategoryDeployment:    5,
	models.CategoryOther:         8,
}

var complexityMultipliers = map[models.Complexity]float64{
	models.ComplexityLow:    1.0,
	models.ComplexityMedium: 1.3,
	models.ComplexityHigh:   1.8,
}

// fallbackEstimation builds a deterministic placeholder estimate from the
// category table and the configured rates.
func (c *Client) fallbackEstimation(deliverables []models.DeliverableItem) models.EstimationResult {
	result := models.EstimationResult{
		TechnicalAssumptions: models.TechnicalAssumptions{
			EngineerLevel:         "mid-level generalist",
			DailyRate:             c.dailyRate,
			Currency:              c.currency,
			DevelopmentStack:      "unspecified",
			TeamSize:              2,
			ProjectDurationMonths: 3,
		},
		OverallConfidence: 0.3,
		KeyRisks:          []string{"estimate produced without model access"},
	}

	for _, item := range deliverables {
		base := fallbackBaseEffort[item.Category]
		if base == 0 {
			base = fallbackBaseEffort[models.CategoryOther]
		}
		complexity := complexityMultipliers[item.Complexity]
		if complexity == 0 {
			complexity = complexityMultipliers[models.ComplexityMedium]
		}
		const risk = 1.2

		final := round1(base * complexity * risk)
		result.DeliverableEstimates = append(result.DeliverableEstimates, models.DeliverableEstimate{
			Name:                 item.Name,
			Description:          item.Description,
			BaseEffortDays:       base,
			ComplexityMultiplier: complexity,
			RiskMultiplier:       risk,
			FinalEffortDays:      final,
			Cost:                 final * c.dailyRate,
			Confidence:           0.3,
			Rationale:            fallbackAssessment,
		})
	}

	for _, est := range result.DeliverableEstimates {
		result.FinancialSummary.TotalEffortDays += est.FinalEffortDays
		result.FinancialSummary.Subtotal += est.Cost
	}
	result.FinancialSummary.Tax = result.FinancialSummary.Subtotal * c.taxRate
	result.FinancialSummary.Total = result.FinancialSummary.Subtotal + result.FinancialSummary.Tax

	return result
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
