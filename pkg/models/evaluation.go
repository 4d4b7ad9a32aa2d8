package models

// ScoreDetail holds one evaluated aspect of the requirements document.
type ScoreDetail struct {
	Score           int      `json:"score" yaml:"score"`
	Assessment      string   `json:"assessment" yaml:"assessment"`
	MissingElements []string `json:"missing_elements,omitempty" yaml:"missing_elements,omitempty"`
}

// ImprovementQuestion is a clarifying question an evaluator wants answered
// to tighten the estimate.
type ImprovementQuestion struct {
	Category string `json:"category" yaml:"category"`
	Question string `json:"question" yaml:"question"`
	Purpose  string `json:"purpose,omitempty" yaml:"purpose,omitempty"`
}

// BusinessEvaluation is the structured judgment of the business and
// functional requirements evaluator.
type BusinessEvaluation struct {
	OverallScore           int                   `json:"overall_score" yaml:"overall_score"`
	BusinessPurpose        ScoreDetail           `json:"business_purpose" yaml:"business_purpose"`
	FunctionalRequirements ScoreDetail           `json:"functional_requirements" yaml:"functional_requirements"`
	UserStories            ScoreDetail           `json:"user_stories" yaml:"user_stories"`
	BusinessValue          ScoreDetail           `json:"business_value" yaml:"business_value"`
	ImprovementQuestions   []ImprovementQuestion `json:"improvement_questions,omitempty" yaml:"improvement_questions,omitempty"`
	RiskFactors            []string              `json:"risk_factors,omitempty" yaml:"risk_factors,omitempty"`
	Recommendations        []string              `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}

// QualityEvaluation is the structured judgment of the quality and
// non-functional requirements evaluator. TotalEffortImpact is the
// percentage effort increase implied by the non-functional requirements.
type QualityEvaluation struct {
	OverallScore            int                   `json:"overall_score" yaml:"overall_score"`
	PerformanceRequirements ScoreDetail           `json:"performance_requirements" yaml:"performance_requirements"`
	SecurityRequirements    ScoreDetail           `json:"security_requirements" yaml:"security_requirements"`
	AvailabilityReliability ScoreDetail           `json:"availability_reliability" yaml:"availability_reliability"`
	Usability               ScoreDetail           `json:"usability" yaml:"usability"`
	ImprovementQuestions    []ImprovementQuestion `json:"improvement_questions,omitempty" yaml:"improvement_questions,omitempty"`
	TotalEffortImpact       float64               `json:"total_effort_impact" yaml:"total_effort_impact"`
	RiskFactors             []string              `json:"risk_factors,omitempty" yaml:"risk_factors,omitempty"`
	Recommendations         []string              `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}

// ConstraintsEvaluation is the structured judgment of the constraints and
// external integration requirements evaluator.
type ConstraintsEvaluation struct {
	OverallScore              int                   `json:"overall_score" yaml:"overall_score"`
	TechnicalConstraints      ScoreDetail           `json:"technical_constraints" yaml:"technical_constraints"`
	ExternalIntegrations      ScoreDetail           `json:"external_integrations" yaml:"external_integrations"`
	ComplianceRegulations     ScoreDetail           `json:"compliance_regulations" yaml:"compliance_regulations"`
	InfrastructureConstraints ScoreDetail           `json:"infrastructure_constraints" yaml:"infrastructure_constraints"`
	ImprovementQuestions      []ImprovementQuestion `json:"improvement_questions,omitempty" yaml:"improvement_questions,omitempty"`
	TotalEffortImpact         float64               `json:"total_effort_impact" yaml:"total_effort_impact"`
	FeasibilityRisks          []string              `json:"feasibility_risks,omitempty" yaml:"feasibility_risks,omitempty"`
	Recommendations           []string              `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}
