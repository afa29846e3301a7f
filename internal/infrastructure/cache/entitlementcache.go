// Package cache holds Redis-backed read caches. Every cache is an
// optimization only; callers must keep working when Redis is down.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stylora-app/stylora/internal/application/billing"
	"github.com/stylora-app/stylora/internal/application/billing/dto"
	"github.com/stylora-app/stylora/internal/shared/logger"
)

const (
	statusKeyPrefix = "billing:status:"
	baseStatusTTL   = 5 * time.Minute
	statusTTLJitter = 2 * time.Minute // anti-stampede
)

// RedisEntitlementCache caches status snapshots keyed by user id. Entries are
// short-lived and invalidated on every reconciliation write.
type RedisEntitlementCache struct {
	client *redis.Client
	logger logger.Interface
}

var _ billing.EntitlementCache = (*RedisEntitlementCache)(nil)

func NewRedisEntitlementCache(client *redis.Client, logger logger.Interface) *RedisEntitlementCache {
	return &RedisEntitlementCache{
		client: client,
		logger: logger,
	}
}

func (c *RedisEntitlementCache) key(userID uint) string {
	return fmt.Sprintf("%s%d", statusKeyPrefix, userID)
}

// GetStatus returns the cached snapshot or nil on a miss.
func (c *RedisEntitlementCache) GetStatus(ctx context.Context, userID uint) (*dto.SubscriptionStatus, error) {
	raw, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get status from cache: %w", err)
	}

	var status dto.SubscriptionStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		// Corrupt entry, drop it and treat as a miss.
		c.logger.Warnw("corrupt cached status, dropping", "user_id", userID, "error", err)
		c.client.Del(ctx, c.key(userID))
		return nil, nil
	}

	return &status, nil
}

// SetStatus stores the snapshot with a jittered TTL.
func (c *RedisEntitlementCache) SetStatus(ctx context.Context, userID uint, status *dto.SubscriptionStatus) error {
	raw, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to encode status: %w", err)
	}

	ttl := snapshotTTL(status, time.Now().UTC())
	if err := c.client.Set(ctx, c.key(userID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set status in cache: %w", err)
	}

	return nil
}

// snapshotTTL bounds the cache lifetime so a snapshot cannot outlive the
// billing period it reports: invalidation is write-driven, and nothing
// writes when a period simply runs out.
func snapshotTTL(status *dto.SubscriptionStatus, now time.Time) time.Duration {
	ttl := baseStatusTTL + time.Duration(rand.Int64N(int64(statusTTLJitter)))
	if status.CurrentPeriodEnd != nil {
		if until := status.CurrentPeriodEnd.Sub(now); until > 0 && until < ttl {
			return until
		}
	}
	return ttl
}

// Invalidate removes the snapshot after a reconciliation write.
func (c *RedisEntitlementCache) Invalidate(ctx context.Context, userID uint) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate status cache: %w", err)
	}
	return nil
}

// NoopEntitlementCache is used when Redis is not configured.
type NoopEntitlementCache struct{}

var _ billing.EntitlementCache = (*NoopEntitlementCache)(nil)

func NewNoopEntitlementCache() *NoopEntitlementCache { return &NoopEntitlementCache{} }

func (NoopEntitlementCache) GetStatus(ctx context.Context, userID uint) (*dto.SubscriptionStatus, error) {
	return nil, nil
}

func (NoopEntitlementCache) SetStatus(ctx context.Context, userID uint, status *dto.SubscriptionStatus) error {
	return nil
}

func (NoopEntitlementCache) Invalidate(ctx context.Context, userID uint) error {
	return nil
}
