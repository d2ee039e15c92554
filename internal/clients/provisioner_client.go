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

const provisionerTimeout = 10 * time.Second

// ProvisionerClient notifies the provisioning bot to tear down the
// trainee's backing repository. The call is best effort: entry deletion
// has already committed by the time it runs.
type ProvisionerClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewProvisionerClient(cfg config.ProvisionerConfig, logger *slog.Logger) *ProvisionerClient {
	return &ProvisionerClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: provisionerTimeout,
		},
		logger: logger,
	}
}

type teardownRequest struct {
	Username       string `json:"username"`
	AssessmentName string `json:"assessmentName"`
}

func (c *ProvisionerClient) TeardownRepository(ctx context.Context, username, assessmentName string) error {
	if c.baseURL == "" {
		c.logger.Warn("Provisioner base URL not configured, skipping teardown",
			"username", username, "assessment", assessmentName)
		return nil
	}

	payload, err := json.Marshal(teardownRequest{
		Username:       username,
		AssessmentName: assessmentName,
	})
	if err != nil {
		return fmt.Errorf("failed to encode teardown request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/teardown", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build teardown request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("teardown request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("teardown request rejected with status %d", resp.StatusCode)
	}

	return nil
}
