// internal/verification/clients.go
package verification

import (
	"context"

	"github.com/google/uuid"

	"subscription-workers/internal/models"
)

// CoreAPI is the core subscription service as this package needs it.
type CoreAPI interface {
	// GetUserCoreInfo returns the core profile for a user. Neither verifier
	// calls it; the contract carries it for callers beyond this package.
	GetUserCoreInfo(ctx context.Context, userID uuid.UUID) (map[string]interface{}, error)

	// VerifySubscription asks the core service for a verdict on one
	// subscription. The returned Result is the service's response body,
	// decoded and otherwise untouched.
	VerifySubscription(ctx context.Context, subscriptionID uuid.UUID, metadata map[string]interface{}) (Result, error)
}

// FranchiseAPI is a franchise's own subscription system. GetUserSubscriptionInfo
// returns (nil, nil) when the franchise has no record for the external id.
type FranchiseAPI interface {
	GetUserSubscriptionInfo(ctx context.Context, subscriptionExternalID string) (*models.SubscriptionInfo, error)
}
