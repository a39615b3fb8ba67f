// internal/routing/store.go

// Package routing decides which verification backend answers for a franchise.
package routing

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"subscription-workers/internal/common/errors"
	"subscription-workers/internal/common/logger"
	"subscription-workers/internal/common/metrics"
	"subscription-workers/internal/models"
)

const backendCachePrefix = "franchise:backend:"

// Store resolves a franchise to its subscription backend, caching answers in
// Redis over the franchises table.
type Store struct {
	db       *sql.DB
	redis    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewStore(db *sql.DB, redisClient *redis.Client, cacheTTL time.Duration, log logger.Logger) *Store {
	return &Store{
		db:       db,
		redis:    redisClient,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

// BackendFor returns the subscription backend configured for a franchise.
// Failures come back as *errors.StandardError so callers inherit the retry
// classification.
func (s *Store) BackendFor(ctx context.Context, franchiseID string) (models.SubscriptionBackend, error) {
	cacheKey := backendCachePrefix + franchiseID
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			backend := models.SubscriptionBackend(val)
			if backend.Valid() {
				metrics.VerificationCacheHits.WithLabelValues("routing").Inc()
				return backend, nil
			}
			// Unrecognized cached value, fall through to the table.
		}
	}

	franchise, err := s.getFranchise(ctx, franchiseID)
	if err != nil {
		return "", err
	}
	if !franchise.Active {
		return "", errors.NewFranchiseInactiveError(franchiseID)
	}
	if !franchise.SubscriptionBackend.Valid() {
		return "", errors.NewUnknownBackendError(franchiseID, string(franchise.SubscriptionBackend))
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, cacheKey, string(franchise.SubscriptionBackend), s.cacheTTL).Err(); err != nil {
			s.logger.Warn("failed to cache franchise backend", map[string]interface{}{
				"franchiseId": franchiseID,
				"error":       err.Error(),
			})
		}
	}

	return franchise.SubscriptionBackend, nil
}

func (s *Store) getFranchise(ctx context.Context, franchiseID string) (*models.Franchise, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, subscription_backend, active
		FROM franchises
		WHERE id = $1`, franchiseID)

	var franchise models.Franchise
	err := row.Scan(&franchise.ID, &franchise.Name, &franchise.SubscriptionBackend, &franchise.Active)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewFranchiseNotFoundError(franchiseID)
		}
		return nil, errors.NewRoutingLookupFailedError(fmt.Errorf("database error: %w", err))
	}

	return &franchise, nil
}
