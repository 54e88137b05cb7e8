package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the persistence interface for session records.
// Implementations must handle concurrent access safely and return
// ErrNotFound for missing rows.
type Store interface {
	GetByID(ctx context.Context, id string) (*Session, error)
	GetByRefreshID(ctx context.Context, refreshID string) (*Session, error)

	// ListActiveByUser returns the user's non-revoked, non-expired
	// sessions ordered by LastUsedAt descending.
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]Session, error)

	Create(ctx context.Context, sess *Session) error

	// UpdateLastUsed sets LastUsedAt and, when expiresAt is non-nil,
	// slides the expiry forward.
	UpdateLastUsed(ctx context.Context, id string, lastUsedAt time.Time, expiresAt *time.Time) error

	// SetRefreshID replaces the current refresh identifier after a
	// rotation.
	SetRefreshID(ctx context.Context, id, refreshID string) error

	// Revoke marks the session revoked. Revoking an already-revoked
	// session must leave the original revocation untouched.
	Revoke(ctx context.Context, id string, at time.Time, reason, revokedBy string) error

	// RevokeAllByUser revokes every active session of the user except
	// exceptID (ignored when empty) and returns the affected count.
	RevokeAllByUser(ctx context.Context, userID uuid.UUID, at time.Time, reason, exceptID string) (int64, error)

	// DeleteExpired removes sessions whose expiry predates olderThan,
	// revoked rows included, and returns the deleted count.
	DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error)
}
