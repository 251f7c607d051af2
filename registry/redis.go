package registry

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis shares the set of names across processes, so two services that pick
// the same namespace on one Redis see the warning too.
// Optionally, a TTL is refreshed on every Register so stale sets disappear.
type Redis struct {
	rdb redis.UniversalClient
	key string
	ttl time.Duration // 0 disables expiry
}

var _ Registry = (*Redis)(nil)

// NewRedis creates a Redis-backed registry storing names in the set at key.
func NewRedis(client redis.UniversalClient, key string) *Redis {
	return &Redis{rdb: client, key: key}
}

// NewRedisWithTTL is NewRedis with an expiry on the set. If ttl <= 0, the set does not expire.
func NewRedisWithTTL(client redis.UniversalClient, key string, ttl time.Duration) *Redis {
	return &Redis{rdb: client, key: key, ttl: ttl}
}

// Register runs SADD (+ EXPIRE when a TTL is set) in one round-trip.
// SADD returns 0 when the member was already in the set.
func (r *Redis) Register(ctx context.Context, name string) (bool, error) {
	if r.ttl <= 0 {
		n, err := r.rdb.SAdd(ctx, r.key, name).Result()
		if err != nil {
			return false, err
		}
		return n == 0, nil
	}

	var add *redis.IntCmd
	_, err := r.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		add = p.SAdd(ctx, r.key, name)
		p.Expire(ctx, r.key, r.ttl)
		return nil
	})
	if err != nil {
		return false, err
	}
	return add.Val() == 0, nil
}

// Names returns every name in the shared set.
func (r *Redis) Names(ctx context.Context) ([]string, error) {
	return r.rdb.SMembers(ctx, r.key).Result()
}

// Close does not close the client; the registry never owns it.
func (r *Redis) Close(context.Context) error { return nil }
