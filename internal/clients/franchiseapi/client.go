// internal/clients/franchiseapi/client.go

// Package franchiseapi is the HTTP client for franchise-hosted subscription
// APIs.
package franchiseapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"time"

	"subscription-workers/internal/common/errors"
	commonhttp "subscription-workers/internal/common/http"
	"subscription-workers/internal/models"
)

const defaultTimeout = 30 * time.Second

// Client talks to one franchise's subscription API. It satisfies
// verification.FranchiseAPI and performs a single attempt per call.
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

// GetUserSubscriptionInfo looks a subscription up by the franchise's own
// external id. A 404 means the franchise holds no record for that id and
// yields (nil, nil), not an error.
func (c *Client) GetUserSubscriptionInfo(ctx context.Context, subscriptionExternalID string) (*models.SubscriptionInfo, error) {
	resp, err := c.http.Get(ctx, "/v1/subscriptions/"+neturl.PathEscape(subscriptionExternalID))
	if err != nil {
		if commonhttp.IsTimeout(err) {
			return nil, errors.NewFranchiseAPITimeoutError(err)
		}
		return nil, errors.NewFranchiseAPIError(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.NewFranchiseAPIError(fmt.Errorf("get subscription info (status %d): %s", resp.StatusCode, string(body)))
	}

	var info models.SubscriptionInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.NewFranchiseAPIError(fmt.Errorf("failed to decode response: %w", err))
	}

	return &info, nil
}
