package core

import (
	"fmt"
	"strings"
)

// Term tables for the post-refinement plausibility check. The check is
// advisory only: it raises warnings, never rejects a refined estimate.
var (
	performanceFeedbackTerms = []string{"response", "performance", "latency", "throughput", "concurrent", "load"}
	performanceResultTerms   = []string{"response", "performance", "latency", "cache", "cdn", "load"}
	techStackFeedbackTerms   = []string{"library", "platform", "framework", "stack", "technology"}
)

// VerifyModificationApplied checks whether a refined estimate plausibly
// reflects the user's modification request and records advisory warnings
// when it does not. With no estimate present it does nothing.
func VerifyModificationApplied(st *WorkflowState, feedback string) {
	est := st.EstimationValue()
	if est == nil || feedback == "" {
		return
	}

	lowered := strings.ToLower(feedback)
	assumptions := strings.ToLower(fmt.Sprintf("%s %s %v",
		est.TechnicalAssumptions.DevelopmentStack,
		est.TechnicalAssumptions.EngineerLevel,
		est.KeyRisks))

	if containsAny(lowered, performanceFeedbackTerms) && !containsAny(assumptions, performanceResultTerms) {
		st.AddWarning("feedback mentions performance requirements but the refined assumptions do not reflect them")
	}

	if containsAny(lowered, techStackFeedbackTerms) {
		entries := strings.Split(est.TechnicalAssumptions.DevelopmentStack, ",")
		if len(entries) <= 2 {
			st.AddWarning("feedback mentions technology choices but the development stack stayed minimal")
		}
	}
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
