// Package statusapi provides a client for the Speedrun intent status API.
package statusapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/speedrun-hq/speedrun-e2e/pkg/logger"
	"github.com/speedrun-hq/speedrun-e2e/pkg/models"
)

// ErrIntentNotFound is returned when the API has no record for an intent ID.
// Expected shortly after submission, before the indexer catches up.
var ErrIntentNotFound = errors.New("intent not found")

// Client represents a Speedrun status API client
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     logger.Logger
}

// New creates a new status API client
func New(endpoint string, log logger.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: createHTTPClient(),
		logger:     log,
	}
}

// GetIntent fetches a single intent record by ID. Returns ErrIntentNotFound
// on a 404 so callers can distinguish "not indexed yet" from API failures.
func (c *Client) GetIntent(ctx context.Context, intentID string) (*models.Intent, error) {
	url := fmt.Sprintf("%s/api/v1/intents/%s", c.endpoint, intentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build intent request: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch intent %s: %v", intentID, err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Error("Failed to close response body: %v", err)
		}
	}(resp.Body)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrIntentNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	// The API has served both a bare intent object and a wrapped one; accept
	// either shape.
	var intent models.Intent
	if err := json.Unmarshal(bodyBytes, &intent); err == nil && intent.ID != "" {
		return &intent, nil
	}

	var wrapped struct {
		Intent *models.Intent `json:"intent,omitempty"`
		Data   *models.Intent `json:"data,omitempty"`
	}
	if err := json.Unmarshal(bodyBytes, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode intent: %v, body: %s", err, string(bodyBytes))
	}
	if wrapped.Intent != nil {
		return wrapped.Intent, nil
	}
	if wrapped.Data != nil {
		return wrapped.Data, nil
	}
	return nil, fmt.Errorf("no intent in response body: %s", string(bodyBytes))
}

// Helper function to create an HTTP client with timeouts
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
