// internal/routing/selector_test.go
package routing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subscription-workers/internal/common/errors"
	"subscription-workers/internal/models"
	"subscription-workers/internal/verification"
)

type stubBackendSource struct {
	backend models.SubscriptionBackend
	err     error
}

func (s *stubBackendSource) BackendFor(ctx context.Context, franchiseID string) (models.SubscriptionBackend, error) {
	return s.backend, s.err
}

type stubVerifier struct {
	name string
}

func (s *stubVerifier) Verify(ctx context.Context, req verification.Request) (verification.Result, error) {
	return verification.Result{"via": s.name}, nil
}

func TestSelector_VerifierFor_RoutesCoreToDirect(t *testing.T) {
	direct := &stubVerifier{name: "direct"}
	resolving := &stubVerifier{name: "resolving"}
	selector := NewSelector(&stubBackendSource{backend: models.BackendCore}, direct, resolving)

	v, backend, err := selector.VerifierFor(context.Background(), "franchise-001")

	require.NoError(t, err)
	assert.Equal(t, models.BackendCore, backend)
	assert.Same(t, direct, v.(*stubVerifier))
}

func TestSelector_VerifierFor_RoutesFranchiseAPIToResolving(t *testing.T) {
	direct := &stubVerifier{name: "direct"}
	resolving := &stubVerifier{name: "resolving"}
	selector := NewSelector(&stubBackendSource{backend: models.BackendFranchise}, direct, resolving)

	v, backend, err := selector.VerifierFor(context.Background(), "franchise-002")

	require.NoError(t, err)
	assert.Equal(t, models.BackendFranchise, backend)
	assert.Same(t, resolving, v.(*stubVerifier))
}

func TestSelector_VerifierFor_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.NewFranchiseNotFoundError("franchise-404")
	selector := NewSelector(&stubBackendSource{err: storeErr}, &stubVerifier{}, &stubVerifier{})

	v, _, err := selector.VerifierFor(context.Background(), "franchise-404")

	assert.Nil(t, v)
	assert.Equal(t, storeErr, err)
}

func TestSelector_VerifierFor_UnmappedBackend(t *testing.T) {
	selector := NewSelector(&stubBackendSource{backend: "mainframe"}, &stubVerifier{}, &stubVerifier{})

	v, _, err := selector.VerifierFor(context.Background(), "franchise-001")

	assert.Nil(t, v)
	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeUnknownBackend, stdErr.Code)
}
