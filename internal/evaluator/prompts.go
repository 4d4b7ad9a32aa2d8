package evaluator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/valter-silva-au/estimate-pro/pkg/models"
)

const businessSystemPrompt = `You are a business and functional requirements analyst for software projects.
Evaluate how clearly the project requirements define the business purpose, functional scope,
user stories, and business value. Score each aspect 0-100, list missing elements, raise
improvement questions, and identify business risk factors.
Return a single JSON object with fields: overall_score, business_purpose, functional_requirements,
user_stories, business_value (each {score, assessment, missing_elements}), improvement_questions,
risk_factors, recommendations.`

const qualitySystemPrompt = `You are a quality and non-functional requirements analyst for software projects.
Evaluate how well the requirements define performance, security, availability/reliability,
and usability expectations. Score each aspect 0-100 and estimate the total effort impact
(percent increase) the non-functional requirements imply.
Return a single JSON object with fields: overall_score, performance_requirements,
security_requirements, availability_reliability, usability (each {score, assessment,
missing_elements}), improvement_questions, total_effort_impact, risk_factors, recommendations.`

const constraintsSystemPrompt = `You are a constraints and external integration analyst for software projects.
Evaluate how clearly the requirements define technical constraints, external system
integrations, compliance obligations, and infrastructure constraints. Score each aspect
0-100 and estimate the total effort impact (percent increase) the constraints imply.
Return a single JSON object with fields: overall_score, technical_constraints,
external_integrations, compliance_regulations, infrastructure_constraints (each {score,
assessment, missing_elements}), improvement_questions, total_effort_impact,
feasibility_risks, recommendations.`

const estimationSystemPrompt = `You are an experienced system development estimation specialist.
Generate an effort and cost estimate for every deliverable.

[EFFORT ESTIMATION STANDARDS]
- Requirements definition: 2-8 person-days
- System design: 4-12 person-days
- Frontend development: 8-25 person-days
- Backend development: 10-30 person-days
- Database design and implementation: 5-18 person-days
- Test implementation: 5-15 person-days
- Security implementation: 3-15 person-days
- Deployment and operations setup: 2-10 person-days

[COMPLEXITY MULTIPLIERS] low 1.0x, medium 1.3x, high 1.8x
[RISK ADJUSTMENTS] new technology +30%, external dependencies +20%,
performance requirements +25%, advanced security +30%, large-scale data +20%

For each deliverable compute base effort, apply complexity and risk multipliers,
derive final effort and cost (daily rate x final effort), and score confidence 0-1.

Financial summary rules: total_effort_days is the sum of final_effort_days, subtotal is
the sum of costs, tax = subtotal x tax rate, total = subtotal + tax. Provide only
calculated numeric values, never formulas or expressions.

Return a single JSON object with fields: deliverable_estimates (list of {name, description,
base_effort_days, complexity_multiplier, risk_multiplier, final_effort_days, cost,
confidence, rationale}), financial_summary {total_effort_days, subtotal, tax, total},
technical_assumptions {engineer_level, daily_rate, currency, development_stack, team_size,
project_duration_months}, overall_confidence, key_risks, recommendations.`

// formatDeliverables renders the deliverable list as prompt bullet lines.
func formatDeliverables(items []models.DeliverableItem) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s: %s\n", item.Name, item.Description)
	}
	return b.String()
}

// evaluationSection renders a prior result or feedback block, or "" when absent.
func priorSection(label string, prior any) string {
	if prior == nil {
		return ""
	}
	raw, err := json.MarshalIndent(prior, "", "  ")
	if err != nil {
		return ""
	}
	return fmt.Sprintf("\n[%s]\n%s\n", label, raw)
}

func feedbackSection(feedback string) string {
	if feedback == "" {
		return ""
	}
	return fmt.Sprintf("\n[USER MODIFICATION REQUEST]\n%s\n", feedback)
}

func evaluationPrompt(requirements string, deliverables []models.DeliverableItem, prior any, feedback string) string {
	return fmt.Sprintf(`[DELIVERABLES LIST]
%s
[PROJECT REQUIREMENTS]
%s
%s%s
Evaluate the requirements against the deliverables and return the JSON object.`,
		formatDeliverables(deliverables), requirements,
		priorSection("PREVIOUS EVALUATION", prior), feedbackSection(feedback))
}

func buildBusinessPrompt(requirements string, deliverables []models.DeliverableItem, prior *models.BusinessEvaluation, feedback string) string {
	var p any
	if prior != nil {
		p = prior
	}
	return evaluationPrompt(requirements, deliverables, p, feedback)
}

func buildQualityPrompt(requirements string, deliverables []models.DeliverableItem, prior *models.QualityEvaluation, feedback string) string {
	var p any
	if prior != nil {
		p = prior
	}
	return evaluationPrompt(requirements, deliverables, p, feedback)
}

func buildConstraintsPrompt(requirements string, deliverables []models.DeliverableItem, prior *models.ConstraintsEvaluation, feedback string) string {
	var p any
	if prior != nil {
		p = prior
	}
	return evaluationPrompt(requirements, deliverables, p, feedback)
}

// feedbackSlot renders one evaluation slot, or the explicit placeholder
// when the slot was not evaluated.
func feedbackSlot(v any) string {
	if v == nil {
		return "Not evaluated"
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "Not evaluated"
	}
	return string(raw)
}

func (f EvaluationFeedback) promptSection() string {
	var business, quality, constraints any
	if f.Business != nil {
		business = f.Business
	}
	if f.Quality != nil {
		quality = f.Quality
	}
	if f.Constraints != nil {
		constraints = f.Constraints
	}
	return fmt.Sprintf(`[EVALUATION FEEDBACK]
Business and functional requirements: %s
Quality and non-functional requirements: %s
Constraints and external integration: %s`,
		feedbackSlot(business), feedbackSlot(quality), feedbackSlot(constraints))
}

func (c *Client) currencySection() string {
	return fmt.Sprintf("[CURRENCY SETTINGS]\nDaily rate: %.0f %s\nTax rate: %.2f\nCurrency: %s",
		c.dailyRate, c.currency, c.taxRate, c.currency)
}

func (c *Client) buildEstimatePrompt(deliverables []models.DeliverableItem, requirements string, feedback EvaluationFeedback) string {
	return fmt.Sprintf(`[DELIVERABLES LIST]
%s
[PROJECT REQUIREMENTS]
%s

%s

%s

Execute effort estimation and cost calculation for every deliverable,
adjusting effort for the evaluation feedback above.`,
		formatDeliverables(deliverables), requirements, feedback.promptSection(), c.currencySection())
}

func (c *Client) buildRefinePrompt(current *models.EstimationResult, userFeedback string, feedback EvaluationFeedback, previous *models.EstimationResult) string {
	comparison := ""
	if previous != nil && current != nil {
		prev := previous.FinancialSummary.TotalEffortDays
		curr := current.FinancialSummary.TotalEffortDays
		comparison = fmt.Sprintf(`[COMPARISON WITH PREVIOUS ESTIMATE]
Previous total effort: %.1f person-days
Current total effort: %.1f person-days
Difference: %+.1f person-days

`, prev, curr, curr-prev)
	}

	currentJSON, _ := json.MarshalIndent(current, "", "  ")

	return fmt.Sprintf(`[CURRENT ESTIMATE]
%s

%s[USER MODIFICATION REQUEST]
%s

%s

%s

You MUST recalculate the estimate reflecting the user's modification request;
an unchanged result is not acceptable. Add or change the technical requirements
the feedback points at, add new deliverables when the request requires them
(for example performance optimization and load testing when performance targets
are added), update the technical assumptions, and identify new risk factors.`,
		currentJSON, comparison, userFeedback, feedback.promptSection(), c.currencySection())
}
