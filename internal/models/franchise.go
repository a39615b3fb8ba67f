// internal/models/franchise.go
package models

type SubscriptionBackend string

const (
	// BackendCore verifies against the core subscription service with the
	// subscription id supplied by the workflow.
	BackendCore SubscriptionBackend = "core"
	// BackendFranchise resolves the subscription through the franchise's own
	// subscription API before calling the core service.
	BackendFranchise SubscriptionBackend = "franchise_api"
)

func (b SubscriptionBackend) Valid() bool {
	return b == BackendCore || b == BackendFranchise
}

type Franchise struct {
	ID                  string              `json:"id"`
	Name                string              `json:"name"`
	SubscriptionBackend SubscriptionBackend `json:"subscriptionBackend"`
	Active              bool                `json:"active"`
}
