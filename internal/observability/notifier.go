package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CompletionSummary describes a finished workflow run for notification.
type CompletionSummary struct {
	Source          string
	Approved        bool
	FinalStep       string
	IterationCount  int
	TotalEffortDays float64
	TotalCostText   string
	ErrorCount      int
	WarningCount    int
	FinishedAt      time.Time
}

// Notifier announces workflow completion to an external channel.
type Notifier interface {
	NotifyCompletion(summary CompletionSummary) error
}

// slackNotifier sends completion notifications to a Slack webhook.
type slackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier creates a Notifier that posts to the given Slack webhook URL.
func NewSlackNotifier(webhookURL string) Notifier {
	return &slackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type slackMessage struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NotifyCompletion posts a completion summary to the configured webhook.
func (s *slackNotifier) NotifyCompletion(summary CompletionSummary) error {
	msg := s.buildMessage(summary)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling slack message: %w", err)
	}

	resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting to slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func (s *slackNotifier) buildMessage(summary CompletionSummary) slackMessage {
	verdict := "not approved"
	if summary.Approved {
		verdict = "approved"
	}

	text := fmt.Sprintf("*Estimate %s* for `%s`\nStep: %s, iterations: %d\nTotal effort: %.1f person-days, total cost: %s\nErrors: %d, warnings: %d\n_%s_",
		verdict,
		summary.Source,
		summary.FinalStep,
		summary.IterationCount,
		summary.TotalEffortDays,
		summary.TotalCostText,
		summary.ErrorCount,
		summary.WarningCount,
		summary.FinishedAt.Format("2006-01-02 15:04 UTC"),
	)

	return slackMessage{Blocks: []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "esp Estimation Summary"},
		},
		{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: text},
		},
	}}
}
