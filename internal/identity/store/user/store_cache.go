package user

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"mongoidentity/internal/identity/models"
	"mongoidentity/internal/identity/store"
)

// CachedStore decorates a UserStore with a read-through FindByID cache in
// Redis. Only the id lookup is cached: normalized-name and login lookups
// stay exact against the backing store, and write paths invalidate before
// delegating so a stale document never outlives an update. Cache failures
// degrade to the inner store; the cache is an accelerator, never a source
// of truth.
type CachedStore struct {
	store.UserStore
	redis *redis.Client
	ttl   time.Duration
}

// NewCached wraps inner with a Redis FindByID cache.
func NewCached(inner store.UserStore, client *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{UserStore: inner, redis: client, ttl: ttl}
}

func cacheKey(id string) string {
	return "identity:user:" + id
}

func (s *CachedStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	if raw, err := s.redis.Get(ctx, cacheKey(id)).Bytes(); err == nil {
		var u models.User
		if err := json.Unmarshal(raw, &u); err == nil {
			return &u, nil
		}
		// Undecodable entry: drop it and fall through to the store.
		s.redis.Del(ctx, cacheKey(id))
	}

	u, err := s.UserStore.FindByID(ctx, id)
	if err != nil || u == nil {
		return u, err
	}
	if raw, err := json.Marshal(u); err == nil {
		s.redis.Set(ctx, cacheKey(id), raw, s.ttl)
	}
	return u, nil
}

func (s *CachedStore) Update(ctx context.Context, u *models.User) error {
	if u != nil {
		s.redis.Del(ctx, cacheKey(u.ID))
	}
	return s.UserStore.Update(ctx, u)
}

func (s *CachedStore) Delete(ctx context.Context, u *models.User) error {
	if u != nil {
		s.redis.Del(ctx, cacheKey(u.ID))
	}
	return s.UserStore.Delete(ctx, u)
}
