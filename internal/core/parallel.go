package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/valter-silva-au/estimate-pro/internal/evaluator"
	"github.com/valter-silva-au/estimate-pro/pkg/models"
)

// evaluationSet collects the three parallel evaluation results. Each slot
// is written by exactly one goroutine and read only after the join.
type evaluationSet struct {
	business    evaluator.Result[models.BusinessEvaluation]
	quality     evaluator.Result[models.QualityEvaluation]
	constraints evaluator.Result[models.ConstraintsEvaluation]
}

// evaluateAll fans the business, quality, and constraints evaluators out
// on three goroutines, each under its own timeout, and joins before any
// result is folded into shared state. A panicking evaluator is converted
// to a failure for its own slot; the other slots are unaffected.
func (o *workflowOrchestrator) evaluateAll(ctx context.Context, st *WorkflowState, feedback string) evaluationSet {
	var (
		set evaluationSet
		fb  = st.EvaluationFeedback()
		wg  sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		set.business = guard("business", func() evaluator.Result[models.BusinessEvaluation] {
			callCtx, cancel := context.WithTimeout(ctx, o.opts.EvaluatorTimeout)
			defer cancel()
			return o.business.Evaluate(callCtx, st.Requirements, st.Deliverables, fb.Business, feedback)
		})
	}()
	go func() {
		defer wg.Done()
		set.quality = guard("quality", func() evaluator.Result[models.QualityEvaluation] {
			callCtx, cancel := context.WithTimeout(ctx, o.opts.EvaluatorTimeout)
			defer cancel()
			return o.quality.Evaluate(callCtx, st.Requirements, st.Deliverables, fb.Quality, feedback)
		})
	}()
	go func() {
		defer wg.Done()
		set.constraints = guard("constraints", func() evaluator.Result[models.ConstraintsEvaluation] {
			callCtx, cancel := context.WithTimeout(ctx, o.opts.EvaluatorTimeout)
			defer cancel()
			return o.constraints.Evaluate(callCtx, st.Requirements, st.Deliverables, fb.Constraints, feedback)
		})
	}()
	wg.Wait()

	return set
}

// foldEvaluations applies a joined evaluation set to the state, one
// writer, in a fixed order. Successes overwrite their slot, failures are
// logged and leave the slot untouched, fallback values raise a warning.
func (o *workflowOrchestrator) foldEvaluations(st *WorkflowState, set evaluationSet) {
	logResult(st, "business", set.business.Meta, set.business.Succeeded(), set.business.FailureReason())
	logResult(st, "quality", set.quality.Meta, set.quality.Succeeded(), set.quality.FailureReason())
	logResult(st, "constraints", set.constraints.Meta, set.constraints.Succeeded(), set.constraints.FailureReason())

	st.RecordBusiness(set.business)
	st.RecordQuality(set.quality)
	st.RecordConstraints(set.constraints)
}

func logResult(st *WorkflowState, name string, meta evaluator.CallMeta, success bool, reason string) {
	st.LogEvaluatorCall(name, meta, success, reason)
	if success && meta.Fallback {
		st.AddWarning(fmt.Sprintf("%s: fallback values used, model endpoint unavailable", name))
	}
}

// guard converts a panic in an evaluator call into a failed result so a
// single broken evaluator cannot take down the fan-out.
func guard[T any](name string, fn func() evaluator.Result[T]) (res evaluator.Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = evaluator.Failed[T](fmt.Sprintf("panic: %v", r), evaluator.CallMeta{
				Evaluator: name,
				Timestamp: time.Now().UTC(),
			})
		}
	}()
	return fn()
}
