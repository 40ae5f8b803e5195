package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/accountkit/account-service/internal/core/domain"
	"github.com/accountkit/account-service/internal/metrics"
)

const (
	defaultUserCacheTTL = 5 * time.Minute

	// tombstone marks a user whose record changed or was deleted. It lives as
	// long as a cached view would, so no fill racing the mutation can outlive it.
	tombstone = "-"
)

// UserCache stores sanitized user views as JSON.
// Key format: user:<id>
//
// domain.User never encodes its password hash, so cached entries cannot carry one.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewUserCache creates a UserCache wrapping the given Redis client. A ttl of
// zero selects defaultUserCacheTTL.
func NewUserCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *UserCache {
	if ttl <= 0 {
		ttl = defaultUserCacheTTL
	}
	return &UserCache{client: client, ttl: ttl, log: log}
}

// Get returns the cached view for id. A miss, a tombstone or a decode failure
// reports false.
func (c *UserCache) Get(ctx context.Context, id string) (*domain.User, bool) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("user_id", id).Msg("user cache read failed")
		}
		metrics.UserCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	if string(data) == tombstone {
		metrics.UserCacheTotal.WithLabelValues("tombstone").Inc()
		return nil, false
	}

	var u domain.User
	if err := json.Unmarshal(data, &u); err != nil {
		c.log.Warn().Err(err).Str("user_id", id).Msg("user cache entry corrupt")
		metrics.UserCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.UserCacheTotal.WithLabelValues("hit").Inc()
	return &u, true
}

// Set stores the view of user with SET NX, so an existing view or tombstone
// is left in place. A failed write is logged, not returned.
func (c *UserCache) Set(ctx context.Context, user *domain.User) {
	data, err := json.Marshal(user)
	if err != nil {
		c.log.Warn().Err(err).Str("user_id", user.ID).Msg("user cache marshal failed")
		return
	}
	if err := c.client.SetNX(ctx, c.key(user.ID), data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("user_id", user.ID).Msg("user cache write failed")
	}
}

// Delete overwrites the view for id with a tombstone.
func (c *UserCache) Delete(ctx context.Context, id string) {
	if err := c.client.Set(ctx, c.key(id), tombstone, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("user_id", id).Msg("user cache invalidation failed")
	}
}

func (c *UserCache) key(id string) string {
	return "user:" + id
}
