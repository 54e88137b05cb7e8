package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker implements the non-blocking try-lock over SETNX. The lock is
// advisory and single-shot: it expires with its TTL and is never
// extended or explicitly released.
type Locker struct {
	client *redis.Client
}

// NewLocker wraps the client.
func NewLocker(client *redis.Client) *Locker {
	return &Locker{client: client}
}

// TryLock attempts an atomic set-if-not-exists. Returns false immediately
// when the key is already held.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, key, "1", ttl).Result()
}
