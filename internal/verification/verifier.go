// internal/verification/verifier.go

// Package verification decides whether a user's subscription is valid.
//
// Every franchise on the platform answers that question against one of two
// backends: the core subscription service directly, or the franchise's own
// subscription API first with the core service as the final word. Each
// backend is a Verifier. Picking the right Verifier for a franchise is the
// routing package's job, never this package's.
package verification

import (
	"context"

	"github.com/google/uuid"
)

// Request carries the identifiers a workflow supplies for one verification.
// Pointer fields distinguish "not provided"; a nil SubscriptionID and a null
// one mean the same thing.
type Request struct {
	Metadata               map[string]interface{}
	SubscriptionID         *uuid.UUID
	SubscriptionExternalID *string
}

// Result is a verification outcome exactly as the deciding backend produced
// it. Callers should only rely on the conventional "status" and "message"
// keys; everything else belongs to the backend.
type Result map[string]interface{}

func (r Result) Status() string {
	s, _ := r["status"].(string)
	return s
}

func (r Result) Message() string {
	m, _ := r["message"].(string)
	return m
}

const StatusError = "error"

// Messages returned when the resolving path rejects a subscription before the
// core service is consulted. Downstream workflow gateways match on these
// exact strings.
const (
	MsgSubscriptionNotFound  = "User subscription not found"
	MsgSubscriptionNotActive = "User subscription is not active"
	MsgSubscriptionIDMissing = "Subscription id not found"
)

func ErrorResult(message string) Result {
	return Result{"status": StatusError, "message": message}
}

// Verifier answers one verification request. Implementations are stateless
// and safe for concurrent use; a rejected subscription is a Result, a broken
// upstream is an error, never both.
type Verifier interface {
	Verify(ctx context.Context, req Request) (Result, error)
}
