package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const inflightKeyPrefix = "inflight:"

// InFlight marks keys busy across instances with SET NX. The TTL bounds how
// long a crashed writer can hold a key.
type InFlight struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewInFlight(rdb redis.Cmdable, ttl time.Duration) *InFlight {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &InFlight{rdb: rdb, ttl: ttl}
}

func (f *InFlight) Acquire(ctx context.Context, key string) (bool, error) {
	return f.rdb.SetNX(ctx, inflightKeyPrefix+key, time.Now().UnixMilli(), f.ttl).Result()
}

func (f *InFlight) Release(ctx context.Context, key string) error {
	return f.rdb.Del(ctx, inflightKeyPrefix+key).Err()
}
