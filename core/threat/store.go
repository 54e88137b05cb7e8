package threat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authkit/core/fingerprint"
	"github.com/dmitrymomot/authkit/pkg/geodist"
)

// Cache is the expiring key-value surface the detectors keep their
// sliding windows, lockouts, and violation counters in. State must live
// in a shared backend because any given request may be handled by a
// different process.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// LoginRecord is one row of a user's login history.
type LoginRecord struct {
	UserID      uuid.UUID
	SessionID   string
	IP          string
	Fingerprint fingerprint.DeviceFingerprint
	Location    *geodist.Point // nil when resolution failed
	At          time.Time
}

// HistoryStore reads a user's login history from the durable store.
// Records are returned newest first.
type HistoryStore interface {
	RecentLogins(ctx context.Context, userID uuid.UUID, since time.Time) ([]LoginRecord, error)
}

// Locator resolves an IP address to a geographic point. Resolution is
// best-effort: a nil point with a nil error means the location is
// unknown, which disables travel evaluation for that event.
type Locator interface {
	Locate(ctx context.Context, ip string) (*geodist.Point, error)
}

// Responder executes the automated response to a high-confidence account
// takeover: revoke every session and flip the account status. It is the
// single destructive automated action in the system.
type Responder interface {
	Suspend(ctx context.Context, userID uuid.UUID, reason string) error
}
