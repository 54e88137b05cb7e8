package rotation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authkit/core/session"
)

// Claims is what a verified refresh token carries. Token encoding and
// signature verification live behind the Verifier; the engine only
// consumes identifiers.
type Claims struct {
	UserID    uuid.UUID
	SessionID string
	RefreshID string
	ExpiresAt time.Time
}

// Verifier validates a presented refresh token and extracts its claims.
// Implementations return ErrTokenExpired with populated claims for a
// token that is valid except for its expiry, so the engine can apply the
// grace window.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// Locker is the atomic set-if-not-exists primitive used for the per-token
// concurrency lock. TryLock returns false without waiting when the key is
// already held; the lock is never extended and expires naturally.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// TokenFamily tracks the ordered lineage of refresh identifiers minted
// for one session. The last member is the only one valid for rotation;
// any earlier member showing up again is a replayed, superseded token.
type TokenFamily struct {
	SessionID  string    `json:"session_id"`
	Members    []string  `json:"members"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
	// Version is the optimistic concurrency stamp. Stores bump it on
	// every successful Save and refuse a Save whose Version does not
	// match the stored value. A fresh family starts at zero.
	Version int64 `json:"version"`
}

// Current returns the only member valid for rotation.
func (f TokenFamily) Current() string {
	if len(f.Members) == 0 {
		return ""
	}
	return f.Members[len(f.Members)-1]
}

// Contains reports whether id is any member, current or superseded.
func (f TokenFamily) Contains(id string) bool {
	for _, member := range f.Members {
		if member == id {
			return true
		}
	}
	return false
}

// FamilyStore persists token families keyed by session. Save must be
// conditional on the value not having changed since Get, so two engines
// racing past the lock cannot both grow the same family. Implementations
// compare the family's Version against the stored value and return
// ErrFamilyConflict on a mismatch.
type FamilyStore interface {
	// Get returns ErrFamilyNotFound when no family exists yet.
	Get(ctx context.Context, sessionID string) (*TokenFamily, error)
	// Save returns ErrFamilyConflict when the stored family's Version no
	// longer matches; on success the family's Version is advanced.
	Save(ctx context.Context, family *TokenFamily) error
	Delete(ctx context.Context, sessionID string) error
}

// Revoker blacklists token identifiers during the compromise cascade.
// Satisfied by revocation.Registry.
type Revoker interface {
	Blacklist(ctx context.Context, identifier, reason string, metadata map[string]string) error
}

// Sessions is the slice of the session manager the engine needs.
// Satisfied by session.Manager.
type Sessions interface {
	GetByID(ctx context.Context, id string) (*session.Session, error)
	GetByRefreshID(ctx context.Context, refreshID string) (*session.Session, error)
	SetRefreshID(ctx context.Context, id, refreshID string) error
	Revoke(ctx context.Context, id, reason, revokedBy string) (*session.Session, error)
}

// TokenPair is the freshly minted identifier pair handed back to the
// caller for encoding into new tokens.
type TokenPair struct {
	AccessID  string
	RefreshID string
	IssuedAt  time.Time
}
