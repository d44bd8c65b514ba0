package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lock is a best-effort advisory lock backed by Redis SET NX with a TTL.
// The TTL bounds how long a crashed holder can keep the lock.
type Lock struct {
	client *redis.Client
}

// NewLock constructs a Lock on top of an existing Redis client.
func NewLock(client *redis.Client) *Lock {
	return &Lock{client: client}
}

// Acquire attempts to take the lock. It returns false when another holder
// currently owns it.
func (l *Lock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, key, "1", ttl).Result()
}

// Release frees the lock. Releasing a lock that is not held is a no-op.
func (l *Lock) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, key).Err()
}
