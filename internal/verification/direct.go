// internal/verification/direct.go
package verification

import (
	"context"

	"github.com/google/uuid"
)

// DirectVerifier hands the workflow's subscription id straight to the core
// service. It adds no checks of its own; whatever the core service answers,
// the caller gets.
type DirectVerifier struct {
	core CoreAPI
}

func NewDirectVerifier(core CoreAPI) *DirectVerifier {
	return &DirectVerifier{core: core}
}

// Verify forwards req.SubscriptionID and req.Metadata to the core service and
// returns its answer verbatim. An absent id is forwarded as the zero UUID and
// left for the core service to reject. The external id plays no part on this
// path.
func (v *DirectVerifier) Verify(ctx context.Context, req Request) (Result, error) {
	subscriptionID := uuid.Nil
	if req.SubscriptionID != nil {
		subscriptionID = *req.SubscriptionID
	}
	return v.core.VerifySubscription(ctx, subscriptionID, req.Metadata)
}
