package threat_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/core/event"
	"github.com/dmitrymomot/authkit/core/threat"
)

// fakeCache is an in-memory threat.Cache with a switchable outage mode.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	down    bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return nil, false, errors.New("connection refused")
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return errors.New("connection refused")
	}
	c.entries[key] = value
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// captureEmitter records every published payload.
type captureEmitter struct {
	mu       sync.Mutex
	payloads []event.Payload
}

func (e *captureEmitter) Publish(ctx context.Context, payload event.Payload) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.payloads = append(e.payloads, payload)
	return nil
}

func (e *captureEmitter) named(name string) []event.Payload {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []event.Payload
	for _, p := range e.payloads {
		if p.EventName() == name {
			out = append(out, p)
		}
	}
	return out
}

func loginKey() threat.AttemptKey {
	return threat.AttemptKey{Identifier: "user@example.com", IP: "203.0.113.7", AttemptType: "login"}
}

func TestBruteForceDetector(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("sixth attempt locks with base duration", func(t *testing.T) {
		t.Parallel()

		cache := newFakeCache()
		emitter := &captureEmitter{}
		detector := threat.NewBruteForceDetector(cache,
			threat.WithBaseLockout(15*time.Minute),
			threat.WithBruteForceEvents(emitter))
		key := loginKey()

		for i := 1; i <= 5; i++ {
			result, err := detector.RecordAttempt(ctx, key)
			require.NoError(t, err)
			assert.False(t, result.IsBruteForce, "attempt %d must not lock", i)
			assert.Equal(t, i, result.Attempts)
		}

		result, err := detector.RecordAttempt(ctx, key)
		require.NoError(t, err)
		assert.True(t, result.IsBruteForce)
		assert.Equal(t, 15*time.Minute, result.LockoutDuration)
		assert.Equal(t, 1, result.ViolationCount)

		locked, until, err := detector.IsLockedOut(ctx, key)
		require.NoError(t, err)
		assert.True(t, locked)
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), until, time.Second)

		assert.Len(t, emitter.named(event.NameBruteForceDetected), 1)
	})

	t.Run("second violation cycle doubles lockout", func(t *testing.T) {
		t.Parallel()

		cache := newFakeCache()
		detector := threat.NewBruteForceDetector(cache,
			threat.WithBaseLockout(10*time.Minute))
		key := loginKey()

		trigger := func() threat.BruteForceResult {
			var last threat.BruteForceResult
			for range 6 {
				var err error
				last, err = detector.RecordAttempt(ctx, key)
				require.NoError(t, err)
			}
			return last
		}

		first := trigger()
		require.True(t, first.IsBruteForce)
		assert.Equal(t, 10*time.Minute, first.LockoutDuration)

		// Simulate a fresh cycle: attempts and lockout lapse, the
		// violation counter survives.
		require.NoError(t, detector.ClearAttempts(ctx, key))
		cache.mu.Lock()
		delete(cache.entries, "bruteforce:lockout:user@example.com|203.0.113.7|login")
		cache.mu.Unlock()

		second := trigger()
		require.True(t, second.IsBruteForce)
		assert.Equal(t, 20*time.Minute, second.LockoutDuration)
		assert.Equal(t, 2, second.ViolationCount)
	})

	t.Run("backoff caps at 32x", func(t *testing.T) {
		t.Parallel()

		cache := newFakeCache()
		detector := threat.NewBruteForceDetector(cache,
			threat.WithBaseLockout(time.Minute))
		key := loginKey()

		// Seed an extreme violation count directly.
		require.NoError(t, cache.Set(ctx,
			"bruteforce:violations:user@example.com|203.0.113.7|login",
			[]byte("40"), time.Hour))

		var last threat.BruteForceResult
		for range 6 {
			var err error
			last, err = detector.RecordAttempt(ctx, key)
			require.NoError(t, err)
		}

		require.True(t, last.IsBruteForce)
		assert.Equal(t, 32*time.Minute, last.LockoutDuration)
	})

	t.Run("lapsed lockout lazily cleared", func(t *testing.T) {
		t.Parallel()

		cache := newFakeCache()
		detector := threat.NewBruteForceDetector(cache,
			threat.WithBaseLockout(time.Nanosecond))
		key := loginKey()

		for range 6 {
			_, err := detector.RecordAttempt(ctx, key)
			require.NoError(t, err)
		}

		time.Sleep(time.Millisecond)

		locked, _, err := detector.IsLockedOut(ctx, key)
		require.NoError(t, err)
		assert.False(t, locked)

		// The record is gone, not just ignored.
		_, found, err := cache.Get(ctx, "bruteforce:lockout:user@example.com|203.0.113.7|login")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("independent keys do not interfere", func(t *testing.T) {
		t.Parallel()

		cache := newFakeCache()
		detector := threat.NewBruteForceDetector(cache)

		a := threat.AttemptKey{Identifier: "u", IP: "203.0.113.1", AttemptType: "login"}
		b := threat.AttemptKey{Identifier: "u", IP: "203.0.113.2", AttemptType: "login"}

		for range 6 {
			_, err := detector.RecordAttempt(ctx, a)
			require.NoError(t, err)
		}

		locked, _, err := detector.IsLockedOut(ctx, b)
		require.NoError(t, err)
		assert.False(t, locked, "different IP must not inherit the lockout")
	})

	t.Run("clear attempts resets the window", func(t *testing.T) {
		t.Parallel()

		cache := newFakeCache()
		detector := threat.NewBruteForceDetector(cache)
		key := loginKey()

		for range 4 {
			_, err := detector.RecordAttempt(ctx, key)
			require.NoError(t, err)
		}
		require.NoError(t, detector.ClearAttempts(ctx, key))

		result, err := detector.RecordAttempt(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Attempts)
	})

	t.Run("cache outage surfaces error", func(t *testing.T) {
		t.Parallel()

		cache := newFakeCache()
		cache.down = true
		detector := threat.NewBruteForceDetector(cache)

		_, err := detector.RecordAttempt(ctx, loginKey())
		assert.ErrorIs(t, err, threat.ErrCacheUnavailable)

		_, _, err = detector.IsLockedOut(ctx, loginKey())
		assert.ErrorIs(t, err, threat.ErrCacheUnavailable)
	})
}
