// internal/clients/coreapi/client.go

// Package coreapi is the HTTP client for the core subscription service.
package coreapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"subscription-workers/internal/common/errors"
	commonhttp "subscription-workers/internal/common/http"
	"subscription-workers/internal/verification"
)

const defaultTimeout = 30 * time.Second

// Client talks to the core subscription service. It satisfies
// verification.CoreAPI and performs a single attempt per call; retry policy
// belongs to the workflow engine.
type Client struct {
	http *commonhttp.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http: commonhttp.NewClient(baseURL, apiKey, timeout),
	}
}

// GetUserCoreInfo fetches the core profile for a user.
func (c *Client) GetUserCoreInfo(ctx context.Context, userID uuid.UUID) (map[string]interface{}, error) {
	resp, err := c.http.Get(ctx, fmt.Sprintf("/v1/users/%s/core-info", userID))
	if err != nil {
		return nil, c.classify(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, errors.NewResourceNotFoundError("core-api", fmt.Sprintf("userId: %s", userID))
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.NewCoreAPIError(fmt.Errorf("get user core info (status %d): %s", resp.StatusCode, string(body)))
	}

	var info map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.NewCoreAPIError(fmt.Errorf("failed to decode response: %w", err))
	}

	return info, nil
}

// VerifySubscription posts one verification request for a subscription. The
// response body is decoded and returned as-is; the core service's verdict is
// never reshaped here.
func (c *Client) VerifySubscription(ctx context.Context, subscriptionID uuid.UUID, metadata map[string]interface{}) (verification.Result, error) {
	resp, err := c.http.PostJSON(ctx, fmt.Sprintf("/v1/subscriptions/%s/verify", subscriptionID), map[string]interface{}{
		"metadata": metadata,
	})
	if err != nil {
		return nil, c.classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewCoreAPIError(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewCoreAPIError(fmt.Errorf("verify subscription (status %d): %s", resp.StatusCode, string(body)))
	}

	var result verification.Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.NewCoreAPIError(fmt.Errorf("failed to unmarshal response: %w", err))
	}

	return result, nil
}

// classify maps transport failures onto the core API error codes so the job
// error handler picks retryable timeouts apart from hard failures.
func (c *Client) classify(err error) error {
	if commonhttp.IsTimeout(err) {
		return errors.NewCoreAPITimeoutError(err)
	}
	return errors.NewCoreAPIError(err)
}
