package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV adapts a Redis client to the expiring key-value interface consumed
// by the revocation registry and threat detectors. Keys with zero TTL
// persist until explicitly deleted or collected by a housekeeping sweep.
type KV struct {
	client    *redis.Client
	scanBatch int64
}

// NewKV wraps the client. scanBatch bounds the per-iteration batch of
// Keys; non-positive values fall back to 1000.
func NewKV(client *redis.Client, scanBatch int) *KV {
	if scanBatch <= 0 {
		scanBatch = 1000
	}
	return &KV{client: client, scanBatch: int64(scanBatch)}
}

// Get returns the value and whether the key exists. A missing key is not
// an error.
func (kv *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := kv.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set stores the value with the given TTL. Zero TTL means no expiry.
func (kv *KV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return kv.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes the key. Deleting a missing key is not an error.
func (kv *KV) Delete(ctx context.Context, key string) error {
	return kv.client.Del(ctx, key).Err()
}

// Keys enumerates keys matching the glob pattern via SCAN, never KEYS,
// so housekeeping sweeps do not block the server.
func (kv *KV) Keys(ctx context.Context, pattern string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := kv.client.Scan(ctx, cursor, pattern, kv.scanBatch).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}
