package health

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Probes implements Checker against the service's real dependencies.
// Storefront is any func that round-trips to the commerce platform.
type Probes struct {
	Redis      *redis.Client
	Storefront func(ctx context.Context) error
}

// PingRedis probes the Redis connection.
func (p Probes) PingRedis(ctx context.Context, timeout time.Duration) error {
	if p.Redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Redis.Ping(ctx).Err()
}

// PingStorefront probes the commerce platform.
func (p Probes) PingStorefront(ctx context.Context, timeout time.Duration) error {
	if p.Storefront == nil {
		return errors.New("storefront not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Storefront(ctx)
}
