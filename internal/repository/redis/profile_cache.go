package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/socialgraph/internal/domain"
	"github.com/utafrali/socialgraph/internal/repository"
)

const keyPrefix = "socialgraph:profile:"

// ProfileCache implements repository.ProfileCache using Redis. Entries hold
// the public JSON form of a user, so credentials never reach the cache.
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProfileCache creates a Redis-backed profile cache.
func NewProfileCache(client *redis.Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached profile or repository.ErrCacheMiss.
func (c *ProfileCache) Get(ctx context.Context, id string) (*domain.User, error) {
	data, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get profile: %w", err)
	}

	var u domain.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	return &u, nil
}

// Set stores the profile with the configured TTL.
func (c *ProfileCache) Set(ctx context.Context, u *domain.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+u.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set profile: %w", err)
	}
	return nil
}

// Invalidate drops the cached profiles of ids.
func (c *ProfileCache) Invalidate(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyPrefix + id
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del profiles: %w", err)
	}
	return nil
}
