// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Input validation errors. Never retried.
	ErrCodeInvalidInput          ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidSubscriptionID ErrorCode = "INVALID_SUBSCRIPTION_ID"
	ErrCodeInvalidUserID         ErrorCode = "INVALID_USER_ID"

	// Routing errors. Lookup failures are infrastructure and retryable,
	// the rest mean the franchise itself is misconfigured.
	ErrCodeFranchiseNotFound   ErrorCode = "FRANCHISE_NOT_FOUND"
	ErrCodeFranchiseInactive   ErrorCode = "FRANCHISE_INACTIVE"
	ErrCodeUnknownBackend      ErrorCode = "UNKNOWN_SUBSCRIPTION_BACKEND"
	ErrCodeRoutingLookupFailed ErrorCode = "ROUTING_LOOKUP_FAILED"

	// Upstream API errors.
	ErrCodeCoreAPIError        ErrorCode = "CORE_API_ERROR"
	ErrCodeCoreAPITimeout      ErrorCode = "CORE_API_TIMEOUT"
	ErrCodeFranchiseAPIError   ErrorCode = "FRANCHISE_API_ERROR"
	ErrCodeFranchiseAPITimeout ErrorCode = "FRANCHISE_API_TIMEOUT"

	ErrCodeUserInfoFetchFailed ErrorCode = "USER_INFO_FETCH_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidInputError creates a non-retryable input validation error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Job input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidSubscriptionIDError creates a non-retryable id parse error.
func NewInvalidSubscriptionIDError(raw string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSubscriptionID,
		Message:   "Subscription id is not a valid UUID",
		Details:   fmt.Sprintf("subscriptionId: %s", raw),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidUserIDError creates a non-retryable id parse error.
func NewInvalidUserIDError(raw string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidUserID,
		Message:   "User id is not a valid UUID",
		Details:   fmt.Sprintf("userId: %s", raw),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFranchiseNotFoundError creates a non-retryable routing error.
func NewFranchiseNotFoundError(franchiseID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFranchiseNotFound,
		Message:   "Franchise is not registered for subscription verification",
		Details:   fmt.Sprintf("franchiseId: %s", franchiseID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFranchiseInactiveError creates a non-retryable routing error.
func NewFranchiseInactiveError(franchiseID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFranchiseInactive,
		Message:   "Franchise is deactivated",
		Details:   fmt.Sprintf("franchiseId: %s", franchiseID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownBackendError creates a non-retryable routing error.
func NewUnknownBackendError(franchiseID, backend string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownBackend,
		Message:   "Franchise has an unrecognized subscription backend",
		Details:   fmt.Sprintf("franchiseId: %s, backend: %s", franchiseID, backend),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRoutingLookupFailedError creates a retryable database error.
func NewRoutingLookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRoutingLookupFailed,
		Message:   "Database error during franchise routing lookup",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCoreAPIError creates a retryable core service error.
func NewCoreAPIError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCoreAPIError,
		Message:   "Core subscription API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCoreAPITimeoutError creates a retryable core service timeout error.
func NewCoreAPITimeoutError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCoreAPITimeout,
		Message:   "Core subscription API timeout",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFranchiseAPIError creates a retryable franchise API error.
func NewFranchiseAPIError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFranchiseAPIError,
		Message:   "Franchise subscription API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFranchiseAPITimeoutError creates a retryable franchise API timeout error.
func NewFranchiseAPITimeoutError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFranchiseAPITimeout,
		Message:   "Franchise subscription API timeout",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserInfoFetchFailedError creates a retryable core info fetch error.
func NewUserInfoFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUserInfoFetchFailed,
		Message:   "Core user info fetch failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (same as internal).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:          "INVALID_INPUT",
	ErrCodeInvalidSubscriptionID: "INVALID_SUBSCRIPTION_ID",
	ErrCodeInvalidUserID:         "INVALID_USER_ID",
	ErrCodeFranchiseNotFound:     "FRANCHISE_NOT_FOUND",
	ErrCodeFranchiseInactive:     "FRANCHISE_INACTIVE",
	ErrCodeUnknownBackend:        "UNKNOWN_SUBSCRIPTION_BACKEND",
	ErrCodeRoutingLookupFailed:   "ROUTING_LOOKUP_FAILED",
	ErrCodeCoreAPIError:          "CORE_API_ERROR",
	ErrCodeCoreAPITimeout:        "CORE_API_TIMEOUT",
	ErrCodeFranchiseAPIError:     "FRANCHISE_API_ERROR",
	ErrCodeFranchiseAPITimeout:   "FRANCHISE_API_TIMEOUT",
	ErrCodeUserInfoFetchFailed:   "USER_INFO_FETCH_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeRoutingLookupFailed,
		ErrCodeCoreAPIError,
		ErrCodeFranchiseAPIError,
		ErrCodeUserInfoFetchFailed:
		return 3 // Retryable technical errors

	case ErrCodeCoreAPITimeout,
		ErrCodeFranchiseAPITimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "_API"):
		return "UPSTREAM_API"
	case strings.Contains(codeStr, "FRANCHISE") || strings.Contains(codeStr, "ROUTING") || strings.Contains(codeStr, "BACKEND"):
		return "ROUTING"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "USER_INFO"):
		return "USER"
	default:
		return "OTHER"
	}
}
