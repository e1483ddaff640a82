package cart

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisIDStore persists cart identifiers in Redis, one key per session.
// It is the server-side equivalent of the browser's single localStorage
// key: it holds nothing but the platform-issued id.
type RedisIDStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func (r RedisIDStore) key(sessionID string) string {
	return "cart:id:" + sessionID
}

func (r RedisIDStore) ttl() time.Duration {
	if r.TTL <= 0 {
		return 10 * 24 * time.Hour
	}
	return r.TTL
}

// Get returns the persisted cart id, or empty when none is stored.
func (r RedisIDStore) Get(ctx context.Context, sessionID string) (string, error) {
	if r.Client == nil || sessionID == "" {
		return "", nil
	}
	value, err := r.Client.Get(ctx, r.key(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// Set stores the cart id and refreshes its TTL. Setting the same id again
// is idempotent.
func (r RedisIDStore) Set(ctx context.Context, sessionID, cartID string) error {
	if r.Client == nil || sessionID == "" {
		return nil
	}
	return r.Client.Set(ctx, r.key(sessionID), cartID, r.ttl()).Err()
}

// Clear removes the persisted id. Clearing an absent key is a no-op.
func (r RedisIDStore) Clear(ctx context.Context, sessionID string) error {
	if r.Client == nil || sessionID == "" {
		return nil
	}
	return r.Client.Del(ctx, r.key(sessionID)).Err()
}
