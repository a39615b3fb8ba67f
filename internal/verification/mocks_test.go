// internal/verification/mocks_test.go
package verification

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"subscription-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type mockCoreAPI struct {
	mock.Mock
}

func (m *mockCoreAPI) GetUserCoreInfo(ctx context.Context, userID uuid.UUID) (map[string]interface{}, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]interface{}), args.Error(1)
}

func (m *mockCoreAPI) VerifySubscription(ctx context.Context, subscriptionID uuid.UUID, metadata map[string]interface{}) (Result, error) {
	args := m.Called(ctx, subscriptionID, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(Result), args.Error(1)
}

type mockFranchiseAPI struct {
	mock.Mock
}

func (m *mockFranchiseAPI) GetUserSubscriptionInfo(ctx context.Context, subscriptionExternalID string) (*models.SubscriptionInfo, error) {
	args := m.Called(ctx, subscriptionExternalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionInfo), args.Error(1)
}

func uuidPtr(s string) *uuid.UUID {
	id := uuid.MustParse(s)
	return &id
}

func strPtr(s string) *string {
	return &s
}
