package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/valter-silva-au/estimate-pro/pkg/models"
)

// defaultBaseURL is the OpenAI-compatible endpoint used when no base_url
// is configured.
const defaultBaseURL = "https://api.openai.com/v1"

// Client talks to an OpenAI-compatible chat-completions endpoint and
// enforces the retry policy on every call. With no API key configured the
// client runs offline and every evaluator substitutes a clearly-marked
// fallback value instead of calling out.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	retry      RetryPolicy

	// Currency settings forwarded to prompts and fallback values.
	currency  string
	dailyRate float64
	taxRate   float64
}

// NewClient creates a Client from the given configuration and retry policy.
func NewClient(cfg *models.Config, retry RetryPolicy) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(base, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		retry:      retry,
		currency:   cfg.Currency,
		dailyRate:  cfg.DailyRate,
		taxRate:    cfg.TaxRate,
	}
}

// Offline reports whether the client has no API key and will substitute
// fallback values for every call.
func (c *Client) Offline() bool {
	return c.apiKey == ""
}

// --- Wire types ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete runs one chat completion under the retry policy. decode is
// called with the raw JSON content of each response; a decode error counts
// as a failed attempt and is retried like a transport error. The returned
// attempt count is always at least 1.
func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string, decode func([]byte) error) (int, error) {
	var lastErr error

	attempts := c.retry.Attempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt, err
		}

		err := c.callOnce(ctx, systemPrompt, userPrompt, decode)
		if err == nil {
			return attempt, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return attempt, ctx.Err()
		}
		if attempt < attempts {
			select {
			case <-time.After(c.retry.Delay(attempt)):
			case <-ctx.Done():
				return attempt, ctx.Err()
			}
		}
	}

	return attempts, fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}

// callOnce performs a single chat-completions request and decodes the
// content of the first choice.
func (c *Client) callOnce(ctx context.Context, systemPrompt, userPrompt string, decode func([]byte) error) error {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
		Temperature:    0.1,
		MaxTokens:      2000,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshaling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting chat request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chat endpoint returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return fmt.Errorf("parsing chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return errors.New("chat response has no choices")
	}

	if err := decode([]byte(parsed.Choices[0].Message.Content)); err != nil {
		return fmt.Errorf("decoding structured output: %w", err)
	}
	return nil
}

// newMeta starts a CallMeta for the named evaluator.
func (c *Client) newMeta(name string) CallMeta {
	return CallMeta{
		Evaluator: name,
		Timestamp: time.Now().UTC(),
		Model:     c.model,
	}
}

// failureReason maps a terminal call error to a stable failure reason.
func failureReason(ctx context.Context, err error) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "timeout"
	}
	if ctx.Err() != nil {
		return "cancelled"
	}
	return err.Error()
}

// validateScore rejects overall scores outside 0..100.
func validateScore(score int) error {
	if score < 0 || score > 100 {
		return fmt.Errorf("overall_score %d out of range 0..100", score)
	}
	return nil
}

// --- Business ---

type businessEvaluator struct {
	client *Client
}

// NewBusinessEvaluator creates the business and functional requirements
// evaluator backed by the given client.
func NewBusinessEvaluator(c *Client) BusinessEvaluator {
	return &businessEvaluator{client: c}
}

func (e *businessEvaluator) Evaluate(ctx context.Context, requirements string, deliverables []models.DeliverableItem, prior *models.BusinessEvaluation, feedback string) Result[models.BusinessEvaluation] {
	meta := e.client.newMeta("business")

	if e.client.Offline() {
		v := fallbackBusinessEvaluation()
		meta.Fallback = true
		meta.Attempts = 1
		return Success(&v, meta)
	}

	var payload models.BusinessEvaluation
	decode := func(raw []byte) error {
		payload = models.BusinessEvaluation{}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return err
		}
		return validateScore(payload.OverallScore)
	}

	attempts, err := e.client.complete(ctx, businessSystemPrompt, buildBusinessPrompt(requirements, deliverables, prior, feedback), decode)
	meta.Attempts = attempts
	if err != nil {
		if ctx.Err() != nil {
			return Failed[models.BusinessEvaluation](failureReason(ctx, err), meta)
		}
		v := fallbackBusinessEvaluation()
		meta.Fallback = true
		return Success(&v, meta)
	}
	return Success(&payload, meta)
}

// --- Quality ---

type qualityEvaluator struct {
	client *Client
}

// NewQualityEvaluator creates the quality and non-functional requirements
// evaluator backed by the given client.
func NewQualityEvaluator(c *Client) QualityEvaluator {
	return &qualityEvaluator{client: c}
}

func (e *qualityEvaluator) Evaluate(ctx context.Context, requirements string, deliverables []models.DeliverableItem, prior *models.QualityEvaluation, feedback string) Result[models.QualityEvaluation] {
	meta := e.client.newMeta("quality")

	if e.client.Offline() {
		v := fallbackQualityEvaluation()
		meta.Fallback = true
		meta.Attempts = 1
		return Success(&v, meta)
	}

	var payload models.QualityEvaluation
	decode := func(raw []byte) error {
		payload = models.QualityEvaluation{}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return err
		}
		return validateScore(payload.OverallScore)
	}

	attempts, err := e.client.complete(ctx, qualitySystemPrompt, buildQualityPrompt(requirements, deliverables, prior, feedback), decode)
	meta.Attempts = attempts
	if err != nil {
		if ctx.Err() != nil {
			return Failed[models.QualityEvaluation](failureReason(ctx, err), meta)
		}
		v := fallbackQualityEvaluation()
		meta.Fallback = true
		return Success(&v, meta)
	}
	return Success(&payload, meta)
}

// --- Constraints ---

type constraintsEvaluator struct {
	client *Client
}

// NewConstraintsEvaluator creates the constraints and external integration
// requirements evaluator backed by the given client.
func NewConstraintsEvaluator(c *Client) ConstraintsEvaluator {
	return &constraintsEvaluator{client: c}
}

func (e *constraintsEvaluator) Evaluate(ctx context.Context, requirements string, deliverables []models.DeliverableItem, prior *models.ConstraintsEvaluation, feedback string) Result[models.ConstraintsEvaluation] {
	meta := e.client.newMeta("constraints")

	if e.client.Offline() {
		v := fallbackConstraintsEvaluation()
		meta.Fallback = true
		meta.Attempts = 1
		return Success(&v, meta)
	}

	var payload models.ConstraintsEvaluation
	decode := func(raw []byte) error {
		payload = models.ConstraintsEvaluation{}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return err
		}
		return validateScore(payload.OverallScore)
	}

	attempts, err := e.client.complete(ctx, constraintsSystemPrompt, buildConstraintsPrompt(requirements, deliverables, prior, feedback), decode)
	meta.Attempts = attempts
	if err != nil {
		if ctx.Err() != nil {
			return Failed[models.ConstraintsEvaluation](failureReason(ctx, err), meta)
		}
		v := fallbackConstraintsEvaluation()
		meta.Fallback = true
		return Success(&v, meta)
	}
	return Success(&payload, meta)
}

// --- Estimation ---

type estimationEvaluator struct {
	client *Client
}

// NewEstimationEvaluator creates the estimation evaluator backed by the
// given client.
func NewEstimationEvaluator(c *Client) EstimationEvaluator {
	return &estimationEvaluator{client: c}
}

// decodeEstimation unmarshals and structurally validates an estimation
// payload. The financial summary is not checked for arithmetic
// consistency; aggregate totals are recomputed downstream.
func decodeEstimation(raw []byte, payload *models.EstimationResult) error {
	*payload = models.EstimationResult{}
	if err := json.Unmarshal(raw, payload); err != nil {
		return err
	}
	if len(payload.DeliverableEstimates) == 0 {
		return errors.New("estimation has no deliverable estimates")
	}
	for i, est := range payload.DeliverableEstimates {
		if est.Name == "" {
			return fmt.Errorf("deliverable estimate %d has no name", i)
		}
		if est.FinalEffortDays < 0 || est.Cost < 0 {
			return fmt.Errorf("deliverable estimate %q has negative effort or cost", est.Name)
		}
	}
	return nil
}

func (e *estimationEvaluator) Generate(ctx context.Context, deliverables []models.DeliverableItem, requirements string, feedback EvaluationFeedback) Result[models.EstimationResult] {
	meta := e.client.newMeta("estimation")

	if e.client.Offline() {
		v := e.client.fallbackEstimation(deliverables)
		meta.Fallback = true
		meta.Attempts = 1
		return Success(&v, meta)
	}

	var payload models.EstimationResult
	decode := func(raw []byte) error { return decodeEstimation(raw, &payload) }

	attempts, err := e.client.complete(ctx, estimationSystemPrompt, e.client.buildEstimatePrompt(deliverables, requirements, feedback), decode)
	meta.Attempts = attempts
	if err != nil {
		if ctx.Err() != nil {
			return Failed[models.EstimationResult](failureReason(ctx, err), meta)
		}
		v := e.client.fallbackEstimation(deliverables)
		meta.Fallback = true
		return Success(&v, meta)
	}
	return Success(&payload, meta)
}

func (e *estimationEvaluator) Refine(ctx context.Context, current *models.EstimationResult, userFeedback string, feedback EvaluationFeedback, previous *models.EstimationResult) Result[models.EstimationResult] {
	meta := e.client.newMeta("estimation")

	if e.client.Offline() {
		// Offline refinement cannot honor the feedback; fail rather than
		// fabricate an unchanged estimate.
		meta.Attempts = 1
		return Failed[models.EstimationResult]("refinement unavailable without a model endpoint", meta)
	}

	var payload models.EstimationResult
	decode := func(raw []byte) error { return decodeEstimation(raw, &payload) }

	attempts, err := e.client.complete(ctx, estimationSystemPrompt, e.client.buildRefinePrompt(current, userFeedback, feedback, previous), decode)
	meta.Attempts = attempts
	if err != nil {
		return Failed[models.EstimationResult](failureReason(ctx, err), meta)
	}
	return Success(&payload, meta)
}
