package session

import "errors"

var (
	// ErrNotFound is returned when a session cannot be found, including
	// reads of revoked sessions.
	ErrNotFound = errors.New("session not found")
	// ErrStorageUnavailable is returned when the durable store cannot be
	// reached. Callers must treat the session as inactive.
	ErrStorageUnavailable = errors.New("session storage unavailable")
	// ErrMissingUserID is returned when creating a session without a user.
	ErrMissingUserID = errors.New("user ID is required")
	// ErrMissingTokenID is returned when creating a session without both
	// token identifiers.
	ErrMissingTokenID = errors.New("access and refresh token identifiers are required")
	// ErrMissingIP is returned when creating a session without an IP address.
	ErrMissingIP = errors.New("IP address is required")
	// ErrInvalidExpiry is returned when creating a session that would be
	// born expired.
	ErrInvalidExpiry = errors.New("expiry must be in the future")
	// ErrCleanupAlreadyStarted is returned when Start is called on a
	// running cleanup task.
	ErrCleanupAlreadyStarted = errors.New("cleanup already started")
	// ErrCleanupNotStarted is returned when Stop is called before Start.
	ErrCleanupNotStarted = errors.New("cleanup not started")
	// ErrCleanupDisabled is returned when Start is called with a
	// non-positive cleanup interval.
	ErrCleanupDisabled = errors.New("cleanup disabled by configuration")
)
