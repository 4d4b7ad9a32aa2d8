package evaluator

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/valter-silva-au/estimate-pro/pkg/models"
)

func testConfig(baseURL, apiKey string) *models.Config {
	return &models.Config{
		Currency:  "USD",
		DailyRate: 500,
		TaxRate:   0.1,
		Model:     "test-model",
		BaseURL:   baseURL,
		APIKey:    apiKey,
	}
}

func noWaitRetry(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: attempts,
		Backoff:     func(int) time.Duration { return 0 },
	}
}

// chatBody wraps a content payload in the chat-completions response shape.
func chatBody(t *testing.T, content any) []byte {
	t.Helper()
	raw, err := json.Marshal(content)
	if err != nil {
		t.Fatalf("marshaling content: %v", err)
	}
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": string(raw)}},
		},
	})
	if err != nil {
		t.Fatalf("marshaling body: %v", err)
	}
	return body
}

func testItems() []models.DeliverableItem {
	return []models.DeliverableItem{
		{Name: "Login Screen", Description: "auth UI", Category: models.CategoryFrontend, Complexity: models.ComplexityMedium},
	}
}

func TestBusinessEvaluateDecodesPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("Authorization = %q, want Bearer key", got)
		}
		_, _ = w.Write(chatBody(t, map[string]any{"overall_score": 82}))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL, "key"), noWaitRetry(3))
	result := NewBusinessEvaluator(client).Evaluate(context.Background(), "reqs", testItems(), nil, "")

	if !result.Succeeded() {
		t.Fatalf("Evaluate failed: %s", result.FailureReason())
	}
	if result.Value.OverallScore != 82 {
		t.Errorf("OverallScore = %d, want 82", result.Value.OverallScore)
	}
	if result.Meta.Fallback {
		t.Error("successful call marked as fallback")
	}
	if result.Meta.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Meta.Attempts)
	}
}

func TestRetriesMalformedResponseThenSucceeds(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"not json"}}]}`))
			return
		}
		_, _ = w.Write(chatBody(t, map[string]any{"overall_score": 60}))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL, "key"), noWaitRetry(3))
	result := NewQualityEvaluator(client).Evaluate(context.Background(), "reqs", testItems(), nil, "")

	if !result.Succeeded() || result.Meta.Fallback {
		t.Fatalf("expected a real success, got fallback=%v reason=%s", result.Meta.Fallback, result.FailureReason())
	}
	if result.Meta.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", result.Meta.Attempts)
	}
}

func TestOutOfRangeScoreIsRetriedLikeAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatBody(t, map[string]any{"overall_score": 150}))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL, "key"), noWaitRetry(2))
	result := NewConstraintsEvaluator(client).Evaluate(context.Background(), "reqs", testItems(), nil, "")

	// Exhausted retries degrade to a marked fallback, not a failure.
	if !result.Succeeded() || !result.Meta.Fallback {
		t.Fatalf("expected a fallback success, got succeeded=%v fallback=%v", result.Succeeded(), result.Meta.Fallback)
	}
	if result.Meta.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", result.Meta.Attempts)
	}
}

func TestPersistentServerErrorFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL, "key"), noWaitRetry(3))
	result := NewBusinessEvaluator(client).Evaluate(context.Background(), "reqs", testItems(), nil, "")

	if !result.Succeeded() || !result.Meta.Fallback {
		t.Fatalf("expected a fallback success, got succeeded=%v fallback=%v", result.Succeeded(), result.Meta.Fallback)
	}
	if result.Meta.Attempts != 3 {
		t.Errorf("Attempts = %d, want all 3", result.Meta.Attempts)
	}
}

func TestTimeoutReturnsFailureNotFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write(chatBody(t, map[string]any{"overall_score": 50}))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL, "key"), noWaitRetry(3))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	result := NewBusinessEvaluator(client).Evaluate(ctx, "reqs", testItems(), nil, "")

	if result.Succeeded() {
		t.Fatal("expected a failure on deadline")
	}
	if result.FailureReason() != "timeout" {
		t.Errorf("reason = %q, want timeout", result.FailureReason())
	}
}

func TestOfflineEvaluatorsSubstituteFallbacks(t *testing.T) {
	client := NewClient(testConfig("http://unused.invalid", ""), noWaitRetry(3))
	if !client.Offline() {
		t.Fatal("client with no API key should be offline")
	}

	business := NewBusinessEvaluator(client).Evaluate(context.Background(), "reqs", testItems(), nil, "")
	if !business.Succeeded() || !business.Meta.Fallback {
		t.Error("offline business evaluation should be a marked fallback")
	}

	estimate := NewEstimationEvaluator(client).Generate(context.Background(), testItems(), "reqs", EvaluationFeedback{})
	if !estimate.Succeeded() || !estimate.Meta.Fallback {
		t.Fatal("offline estimation should be a marked fallback")
	}
	if len(estimate.Value.DeliverableEstimates) != 1 {
		t.Fatalf("line items = %d, want 1", len(estimate.Value.DeliverableEstimates))
	}
}

func TestOfflineRefineFails(t *testing.T) {
	client := NewClient(testConfig("http://unused.invalid", ""), noWaitRetry(3))

	current := &models.EstimationResult{}
	result := NewEstimationEvaluator(client).Refine(context.Background(), current, "more effort", EvaluationFeedback{}, nil)

	if result.Succeeded() {
		t.Fatal("offline refinement must fail rather than fabricate a result")
	}
}

func TestFallbackEstimationArithmetic(t *testing.T) {
	client := NewClient(testConfig("", ""), noWaitRetry(3))

	result := client.fallbackEstimation(testItems())

	line := result.DeliverableEstimates[0]
	// frontend base 15, medium 1.3, risk 1.2.
	wantEffort := 23.4
	if math.Abs(line.FinalEffortDays-wantEffort) > 1e-9 {
		t.Errorf("FinalEffortDays = %v, want %v", line.FinalEffortDays, wantEffort)
	}
	if math.Abs(line.Cost-wantEffort*500) > 1e-6 {
		t.Errorf("Cost = %v, want %v", line.Cost, wantEffort*500)
	}
	if math.Abs(result.FinancialSummary.Subtotal-line.Cost) > 1e-6 {
		t.Errorf("Subtotal = %v, want %v", result.FinancialSummary.Subtotal, line.Cost)
	}
	wantTotal := result.FinancialSummary.Subtotal * 1.1
	if math.Abs(result.FinancialSummary.Total-wantTotal) > 1e-6 {
		t.Errorf("Total = %v, want %v", result.FinancialSummary.Total, wantTotal)
	}
}

func TestEstimationRejectsEmptyLineItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatBody(t, map[string]any{"deliverable_estimates": []any{}}))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL, "key"), noWaitRetry(1))
	result := NewEstimationEvaluator(client).Generate(context.Background(), testItems(), "reqs", EvaluationFeedback{})

	// Structural rejection degrades to the deterministic fallback.
	if !result.Succeeded() || !result.Meta.Fallback {
		t.Fatalf("expected a fallback success, got succeeded=%v fallback=%v", result.Succeeded(), result.Meta.Fallback)
	}
}
