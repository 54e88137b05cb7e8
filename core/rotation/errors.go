package rotation

import "errors"

var (
	// ErrInvalidToken is returned for malformed tokens and for expired
	// tokens outside the grace window.
	ErrInvalidToken = errors.New("invalid refresh token")
	// ErrTokenExpired is returned by Verifier implementations for a token
	// valid except for its expiry. The engine translates it into either
	// the grace path or ErrInvalidToken.
	ErrTokenExpired = errors.New("refresh token expired")
	// ErrConcurrentRefresh is returned when another rotation for the same
	// token is already in flight. Hard failure: the engine never waits
	// for the lock.
	ErrConcurrentRefresh = errors.New("concurrent refresh in flight")
	// ErrSessionInvalid is returned when the token's session is missing,
	// revoked, or expired.
	ErrSessionInvalid = errors.New("session invalid")
	// ErrFamilyCompromised is returned when a superseded refresh
	// identifier is replayed; the cascading revocation has already run by
	// the time the caller sees it.
	ErrFamilyCompromised = errors.New("token family compromised")
	// ErrFamilySizeExceeded is returned when the family is already at its
	// cap; the family does not grow.
	ErrFamilySizeExceeded = errors.New("token family size exceeded")
	// ErrFamilyNotFound is returned by FamilyStore.Get when no family
	// exists for the session yet.
	ErrFamilyNotFound = errors.New("token family not found")
	// ErrFamilyConflict is returned by FamilyStore.Save when the stored
	// family changed since it was loaded. The engine maps it to
	// ErrConcurrentRefresh.
	ErrFamilyConflict = errors.New("token family modified since load")
	// ErrLockUnavailable is returned when the lock backend cannot be
	// reached; rotation fails closed.
	ErrLockUnavailable = errors.New("refresh lock unavailable")
)
