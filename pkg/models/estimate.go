package models

// DeliverableEstimate is the per-item effort and cost estimate produced by
// the estimation evaluator. FinalEffortDays and Cost are treated as
// authoritative inputs; the orchestration layer never recomputes them per
// item, but it does recompute all aggregate totals from these line items.
type DeliverableEstimate struct {
	Name                 string  `json:"name" yaml:"name"`
	Description          string  `json:"description" yaml:"description"`
	BaseEffortDays       float64 `json:"base_effort_days" yaml:"base_effort_days"`
	ComplexityMultiplier float64 `json:"complexity_multiplier" yaml:"complexity_multiplier"`
	RiskMultiplier       float64 `json:"risk_multiplier" yaml:"risk_multiplier"`
	FinalEffortDays      float64 `json:"final_effort_days" yaml:"final_effort_days"`
	Cost                 float64 `json:"cost" yaml:"cost"`
	Confidence           float64 `json:"confidence" yaml:"confidence"`
	Rationale            string  `json:"rationale,omitempty" yaml:"rationale,omitempty"`
}

// FinancialSummary is the grand total block as reported by the estimation
// evaluator. The model may get this arithmetic wrong; display and output
// always use the totals recomputed from the line items instead.
type FinancialSummary struct {
	TotalEffortDays float64 `json:"total_effort_days" yaml:"total_effort_days"`
	Subtotal        float64 `json:"subtotal" yaml:"subtotal"`
	Tax             float64 `json:"tax" yaml:"tax"`
	Total           float64 `json:"total" yaml:"total"`
}

// TechnicalAssumptions documents the staffing and technology assumptions
// behind an estimate.
type TechnicalAssumptions struct {
	EngineerLevel         string  `json:"engineer_level" yaml:"engineer_level"`
	DailyRate             float64 `json:"daily_rate" yaml:"daily_rate"`
	Currency              string  `json:"currency" yaml:"currency"`
	DevelopmentStack      string  `json:"development_stack" yaml:"development_stack"`
	TeamSize              int     `json:"team_size" yaml:"team_size"`
	ProjectDurationMonths int     `json:"project_duration_months" yaml:"project_duration_months"`
}

// EstimationResult is the full cost/effort breakdown returned by the
// estimation evaluator.
type EstimationResult struct {
	DeliverableEstimates []DeliverableEstimate `json:"deliverable_estimates" yaml:"deliverable_estimates"`
	FinancialSummary     FinancialSummary      `json:"financial_summary" yaml:"financial_summary"`
	TechnicalAssumptions TechnicalAssumptions  `json:"technical_assumptions" yaml:"technical_assumptions"`
	OverallConfidence    float64               `json:"overall_confidence" yaml:"overall_confidence"`
	KeyRisks             []string              `json:"key_risks,omitempty" yaml:"key_risks,omitempty"`
	Recommendations      []string              `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}
