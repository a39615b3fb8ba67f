// internal/verification/resolving.go
package verification

import (
	"context"
)

// ResolvingVerifier looks the subscription up in the franchise's own system
// first and only involves the core service once a usable core subscription id
// has been resolved from that record.
type ResolvingVerifier struct {
	core      CoreAPI
	franchise FranchiseAPI
}

func NewResolvingVerifier(core CoreAPI, franchise FranchiseAPI) *ResolvingVerifier {
	return &ResolvingVerifier{core: core, franchise: franchise}
}

// Verify resolves the external id through the franchise API and then defers
// to the core service. The pre-checks run in a fixed order and the first one
// that fails decides the answer; a failed pre-check is an error Result with a
// nil error, while upstream faults come back as Go errors, untouched. The
// request's own SubscriptionID is ignored on this path. The core service is
// never called more than once.
func (v *ResolvingVerifier) Verify(ctx context.Context, req Request) (Result, error) {
	externalID := ""
	if req.SubscriptionExternalID != nil {
		externalID = *req.SubscriptionExternalID
	}

	info, err := v.franchise.GetUserSubscriptionInfo(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return ErrorResult(MsgSubscriptionNotFound), nil
	}
	if !info.IsActive() {
		return ErrorResult(MsgSubscriptionNotActive), nil
	}
	if info.ID == nil {
		return ErrorResult(MsgSubscriptionIDMissing), nil
	}

	return v.core.VerifySubscription(ctx, *info.ID, req.Metadata)
}
