package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authkit/core/rotation"
)

const (
	familyKeyPrefix = "token_family:"

	// defaultFamilyTTL bounds how long an untouched family survives.
	// Every successful Save refreshes it, so families of live sessions
	// never lapse while families of expired sessions age out instead of
	// accumulating forever.
	defaultFamilyTTL = 30 * 24 * time.Hour
)

// FamilyStore persists token families as JSON values with optimistic
// concurrency: Save re-reads the stored family inside a WATCH transaction
// and compares its Version against the caller's copy, so a write that
// landed after the caller's Get fails with rotation.ErrFamilyConflict
// instead of silently clobbering a concurrent rotation.
type FamilyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// FamilyStoreOption configures a FamilyStore.
type FamilyStoreOption func(*FamilyStore)

// WithFamilyTTL overrides how long family keys live without a Save.
// Align it with the session retention window so a family never outlives
// its session's cleanup.
func WithFamilyTTL(ttl time.Duration) FamilyStoreOption {
	return func(s *FamilyStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewFamilyStore wraps the client.
func NewFamilyStore(client *redis.Client, opts ...FamilyStoreOption) *FamilyStore {
	s := &FamilyStore{client: client, ttl: defaultFamilyTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func familyKey(sessionID string) string {
	return familyKeyPrefix + sessionID
}

// Get loads the family for a session. Returns rotation.ErrFamilyNotFound
// when none exists.
func (s *FamilyStore) Get(ctx context.Context, sessionID string) (*rotation.TokenFamily, error) {
	value, err := s.client.Get(ctx, familyKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, rotation.ErrFamilyNotFound
	}
	if err != nil {
		return nil, err
	}

	var family rotation.TokenFamily
	if err := json.Unmarshal(value, &family); err != nil {
		return nil, err
	}
	return &family, nil
}

// Save writes the family conditionally. The stored Version must still
// match the caller's copy; a mismatch, or a key that appeared since a
// not-found Get, returns rotation.ErrFamilyConflict. The WATCH covers
// the interval between the version check and the write, so a racing
// writer in that window aborts the transaction with redis.TxFailedErr.
// On success the family's Version is advanced and the key TTL refreshed.
func (s *FamilyStore) Save(ctx context.Context, family *rotation.TokenFamily) error {
	key := familyKey(family.SessionID)
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if family.Version != 0 {
				return rotation.ErrFamilyConflict
			}
		case err != nil:
			return err
		default:
			var current rotation.TokenFamily
			if err := json.Unmarshal(stored, &current); err != nil {
				return err
			}
			if current.Version != family.Version {
				return rotation.ErrFamilyConflict
			}
		}

		next := *family
		next.Version++
		value, err := json.Marshal(&next)
		if err != nil {
			return err
		}

		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, value, s.ttl)
			return nil
		}); err != nil {
			return err
		}

		family.Version = next.Version
		return nil
	}, key)
}

// Delete destroys the family. Deleting a missing family is not an error.
func (s *FamilyStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, familyKey(sessionID)).Err()
}
