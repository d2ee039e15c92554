package clients

import (
	"AssessmentTrackerService/internal/config"
	"AssessmentTrackerService/internal/models"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const tokenExpirySlack = 30 * time.Second

// BadgrClient talks to the external badge issuer. Access tokens are
// short-lived and cached until shortly before expiry.
type BadgrClient struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *slog.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewBadgrClient(cfg config.IssuerConfig, logger *slog.Logger) *BadgrClient {
	return &BadgrClient{
		baseURL:  cfg.BaseURL,
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type assertionRequest struct {
	Recipient assertionRecipient `json:"recipient"`
	Narrative string             `json:"narrative,omitempty"`
}

type assertionRecipient struct {
	Identity string `json:"identity"`
	Type     string `json:"type"`
}

type assertionResponse struct {
	Result []struct {
		EntityID string `json:"entityId"`
	} `json:"result"`
}

// IssueBadge issues a badge of the given class to the recipient and
// returns the issuer's assertion id.
func (c *BadgrClient) IssueBadge(ctx context.Context, badgeClassID, recipientEmail, narrative string) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(assertionRequest{
		Recipient: assertionRecipient{
			Identity: recipientEmail,
			Type:     "email",
		},
		Narrative: narrative,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode assertion request: %w", err)
	}

	url := fmt.Sprintf("%s/v2/badgeclasses/%s/assertions", c.baseURL, badgeClassID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build assertion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Badge issuer request failed", "error", err, "badgeClassID", badgeClassID)
		return "", models.ErrIssuerUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", models.ErrUnknownBadgeClass
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("Badge issuer returned error", "status", resp.StatusCode, "body", string(body))
		return "", models.ErrIssuerUnavailable
	}

	var decoded assertionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.logger.Error("Failed to decode issuer response", "error", err)
		return "", models.ErrIssuerUnavailable
	}

	if len(decoded.Result) == 0 || decoded.Result[0].EntityID == "" {
		c.logger.Error("Issuer response carried no assertion id")
		return "", models.ErrIssuerUnavailable
	}

	return decoded.Result[0].EntityID, nil
}

func (c *BadgrClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	payload := []byte(fmt.Sprintf("username=%s&password=%s", c.username, c.password))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/o/token", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Issuer token request failed", "error", err)
		return "", models.ErrIssuerUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Issuer token request rejected", "status", resp.StatusCode)
		return "", models.ErrIssuerUnavailable
	}

	var decoded tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.logger.Error("Failed to decode token response", "error", err)
		return "", models.ErrIssuerUnavailable
	}

	c.token = decoded.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(decoded.ExpiresIn)*time.Second - tokenExpirySlack)

	return c.token, nil
}
