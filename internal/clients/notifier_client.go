package clients

import (
	"AssessmentTrackerService/internal/config"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const notifierTimeout = 5 * time.Second

// NotifierClient pages a reviewer through the chat webhook. Failures are
// logged by the caller, never propagated into tracker operations.
type NotifierClient struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewNotifierClient(cfg config.NotifierConfig, logger *slog.Logger) *NotifierClient {
	return &NotifierClient{
		webhookURL: cfg.WebhookURL,
		httpClient: &http.Client{
			Timeout: notifierTimeout,
		},
		logger: logger,
	}
}

type notifyMessage struct {
	Text string `json:"text"`
}

func (c *NotifierClient) NotifyReviewRequested(ctx context.Context, reviewerUsername, traineeUsername, assessmentName string) error {
	if c.webhookURL == "" {
		return nil
	}

	text := fmt.Sprintf(
		"@%s you have been selected to review %s's submission for %q",
		reviewerUsername, traineeUsername, assessmentName,
	)

	payload, err := json.Marshal(notifyMessage{Text: text})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("notification rejected with status %d", resp.StatusCode)
	}

	return nil
}
