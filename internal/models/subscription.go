// internal/models/subscription.go
package models

import "github.com/google/uuid"

const SubscriptionStatusActive = "active"

// SubscriptionInfo is a user's subscription record as reported by a franchise
// subscription API. ID is a pointer because franchise systems may return a
// record whose id field is null; that case is treated the same as a missing
// field.
type SubscriptionInfo struct {
	ID     *uuid.UUID `json:"id"`
	Status string     `json:"status"`
}

func (s *SubscriptionInfo) IsActive() bool {
	return s != nil && s.Status == SubscriptionStatusActive
}
