// internal/workers/subscription/verify-subscription/models.go
package verifysubscription

import "subscription-workers/internal/verification"

// Input is the job variable shape this worker consumes. A subscriptionId
// that is null in the process variables and one that is absent both
// unmarshal to the empty string, so the verifiers see them the same way.
type Input struct {
	UserID                 string                 `json:"userId"`
	FranchiseID            string                 `json:"franchiseId"`
	SubscriptionID         string                 `json:"subscriptionId,omitempty"`
	SubscriptionExternalID string                 `json:"subscriptionExternalId,omitempty"`
	Metadata               map[string]interface{} `json:"metadata,omitempty"`
}

// Output is merged back into the process instance on completion.
type Output struct {
	VerificationResult  verification.Result `json:"verificationResult"`
	VerificationStatus  string              `json:"verificationStatus"`
	SubscriptionBackend string              `json:"subscriptionBackend"`
	CacheHit            bool                `json:"cacheHit"`
}

// cachedResult is the Redis representation of a finished verification.
type cachedResult struct {
	Result  verification.Result `json:"result"`
	Backend string              `json:"backend"`
}
