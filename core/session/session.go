package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authkit/core/fingerprint"
	"github.com/dmitrymomot/authkit/pkg/useragent"
)

// Session is one authenticated device session. The ID is the current
// access token identifier; RefreshID is the current refresh token
// identifier and is rotated on every refresh while ID and the row itself
// stay stable.
//
// A session is never physically deleted on revocation: RevokedAt is a
// terminal one-way marker and the row is kept for the retention window
// as an audit trail.
type Session struct {
	ID        string
	RefreshID string
	UserID    uuid.UUID

	// OrgID scopes the session to an organization; uuid.Nil for
	// personal sessions.
	OrgID uuid.UUID

	Fingerprint fingerprint.DeviceFingerprint
	IP          string
	UserAgent   string

	CreatedAt  time.Time
	ExpiresAt  time.Time
	LastUsedAt time.Time

	RevokedAt     *time.Time
	RevokedReason string
	RevokedBy     string
}

// IsActive reports whether the session is usable: not revoked and not
// past its expiry.
func (s Session) IsActive() bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(time.Now())
}

// IsExpired reports whether the session is past its expiry, regardless
// of revocation state.
func (s Session) IsExpired() bool {
	return !s.ExpiresAt.After(time.Now())
}

// IsRevoked reports whether the session has been revoked.
func (s Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// Device returns a human-readable device identifier based on the
// User-Agent string, e.g. "Chrome/120.0 (windows, desktop)".
// Returns "Unknown device" if UserAgent is empty or parsing fails.
func (s Session) Device() string {
	if s.UserAgent == "" {
		return "Unknown device"
	}

	ua, err := useragent.Parse(s.UserAgent)
	if err != nil {
		return "Unknown device"
	}

	return ua.GetShortIdentifier()
}

// CreateParams carries everything needed to open a session. AccessID and
// RefreshID are minted by the caller; token encoding is not this
// package's concern.
type CreateParams struct {
	UserID      uuid.UUID
	OrgID       uuid.UUID
	Fingerprint fingerprint.DeviceFingerprint
	IP          string
	UserAgent   string
	AccessID    string
	RefreshID   string
	ExpiresAt   time.Time
}

func (p CreateParams) validate() error {
	switch {
	case p.UserID == uuid.Nil:
		return ErrMissingUserID
	case p.AccessID == "" || p.RefreshID == "":
		return ErrMissingTokenID
	case p.IP == "":
		return ErrMissingIP
	case !p.ExpiresAt.After(time.Now()):
		return ErrInvalidExpiry
	}
	return nil
}
