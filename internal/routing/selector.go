// internal/routing/selector.go
package routing

import (
	"context"

	"subscription-workers/internal/common/errors"
	"subscription-workers/internal/models"
	"subscription-workers/internal/verification"
)

// BackendSource is what the Selector needs from the Store.
type BackendSource interface {
	BackendFor(ctx context.Context, franchiseID string) (models.SubscriptionBackend, error)
}

// Selector pairs the routing store with the wired verifiers. It is the only
// place a franchise id turns into a concrete Verifier; the verifiers
// themselves never see routing.
type Selector struct {
	store     BackendSource
	verifiers map[models.SubscriptionBackend]verification.Verifier
}

func NewSelector(store BackendSource, direct, resolving verification.Verifier) *Selector {
	return &Selector{
		store: store,
		verifiers: map[models.SubscriptionBackend]verification.Verifier{
			models.BackendCore:      direct,
			models.BackendFranchise: resolving,
		},
	}
}

// VerifierFor returns the Verifier serving a franchise, plus the backend it
// was routed to.
func (s *Selector) VerifierFor(ctx context.Context, franchiseID string) (verification.Verifier, models.SubscriptionBackend, error) {
	backend, err := s.store.BackendFor(ctx, franchiseID)
	if err != nil {
		return nil, "", err
	}

	v, ok := s.verifiers[backend]
	if !ok {
		return nil, "", errors.NewUnknownBackendError(franchiseID, string(backend))
	}

	return v, backend, nil
}
