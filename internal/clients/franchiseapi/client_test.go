// internal/clients/franchiseapi/client_test.go
package franchiseapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subscription-workers/internal/common/errors"
)

// ==========================
// Core Functionality Tests
// ==========================

func TestClient_GetUserSubscriptionInfo_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/v1/subscriptions/EXT-1001", r.URL.Path)
		assert.Equal(t, "franchise-key", r.Header.Get("X-API-Key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"b4d1f2e3-6a5b-4c7d-8e9f-012345678901","status":"active"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "franchise-key", 5*time.Second)
	info, err := client.GetUserSubscriptionInfo(context.Background(), "EXT-1001")

	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "active", info.Status)
	require.NotNil(t, info.ID)
	assert.Equal(t, "b4d1f2e3-6a5b-4c7d-8e9f-012345678901", info.ID.String())
	assert.True(t, info.IsActive())
}

func TestClient_GetUserSubscriptionInfo_NullIDDecodesToNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":null,"status":"active"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "franchise-key", 5*time.Second)
	info, err := client.GetUserSubscriptionInfo(context.Background(), "EXT-1001")

	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Nil(t, info.ID)
	assert.Equal(t, "active", info.Status)
}

func TestClient_GetUserSubscriptionInfo_MissingIDDecodesToNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"cancelled"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "franchise-key", 5*time.Second)
	info, err := client.GetUserSubscriptionInfo(context.Background(), "EXT-1001")

	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Nil(t, info.ID)
	assert.False(t, info.IsActive())
}

func TestClient_GetUserSubscriptionInfo_NotFoundIsAbsence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(server.URL, "franchise-key", 5*time.Second)
	info, err := client.GetUserSubscriptionInfo(context.Background(), "EXT-9999")

	assert.NoError(t, err)
	assert.Nil(t, info)
}

func TestClient_GetUserSubscriptionInfo_EmptyExternalID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No id segment resolves to no record.
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(server.URL, "franchise-key", 5*time.Second)
	info, err := client.GetUserSubscriptionInfo(context.Background(), "")

	assert.NoError(t, err)
	assert.Nil(t, info)
}

// ==========================
// Error Handling Tests
// ==========================

func TestClient_GetUserSubscriptionInfo_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "franchise db down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "franchise-key", 5*time.Second)
	info, err := client.GetUserSubscriptionInfo(context.Background(), "EXT-1001")

	require.Error(t, err)
	assert.Nil(t, info)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok, "expected *errors.StandardError, got %T", err)
	assert.Equal(t, errors.ErrCodeFranchiseAPIError, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestClient_GetUserSubscriptionInfo_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"status":"active"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "franchise-key", 50*time.Millisecond)
	_, err := client.GetUserSubscriptionInfo(context.Background(), "EXT-1001")

	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok, "expected *errors.StandardError, got %T", err)
	assert.Equal(t, errors.ErrCodeFranchiseAPITimeout, stdErr.Code)
}
