// Package evaluator provides the capability boundary to the LLM-backed
// evaluators: typed success/failure results, the retry policy applied to
// model calls, and an OpenAI-compatible chat-completions client.
package evaluator

import "time"

// Failure describes why an evaluator call did not produce a usable result.
type Failure struct {
	Reason string `json:"reason"`
}

// CallMeta records the identity and circumstances of one evaluator call.
// Fallback is true when the value was substituted locally after the model
// could not be reached or kept returning malformed output.
type CallMeta struct {
	Evaluator string    `json:"evaluator"`
	Attempts  int       `json:"attempts"`
	Timestamp time.Time `json:"timestamp"`
	Model     string    `json:"model,omitempty"`
	Fallback  bool      `json:"fallback,omitempty"`
}

// Result is the outcome of a single evaluator call: either a structured
// value or a typed failure, never an ambiguous partial object.
type Result[T any] struct {
	Value   *T
	Failure *Failure
	Meta    CallMeta
}

// Success wraps a structured value in a Result.
func Success[T any](value *T, meta CallMeta) Result[T] {
	return Result[T]{Value: value, Meta: meta}
}

// Failed wraps a failure reason in a Result.
func Failed[T any](reason string, meta CallMeta) Result[T] {
	return Result[T]{Failure: &Failure{Reason: reason}, Meta: meta}
}

// Succeeded reports whether the call produced a structured value.
func (r Result[T]) Succeeded() bool {
	return r.Failure == nil && r.Value != nil
}

// FailureReason returns the failure reason, or "" for a successful result.
func (r Result[T]) FailureReason() string {
	if r.Failure == nil {
		return ""
	}
	return r.Failure.Reason
}
