package revocation

import "errors"

var (
	// ErrCacheUnavailable is returned when the cache backend is
	// unreachable. Checks fail secure: the accompanying Status still
	// reports the identifier as blacklisted.
	ErrCacheUnavailable = errors.New("revocation cache unavailable")

	// ErrNotBlacklisted is returned by Unblacklist when no entry exists
	// for the identifier.
	ErrNotBlacklisted = errors.New("identifier is not blacklisted")

	// ErrSweepAlreadyStarted is returned when Start is called twice.
	ErrSweepAlreadyStarted = errors.New("housekeeping sweep already started")

	// ErrSweepNotStarted is returned when Stop is called before Start.
	ErrSweepNotStarted = errors.New("housekeeping sweep not started")

	// ErrSweepDisabled is returned by Start when SweepInterval is zero.
	ErrSweepDisabled = errors.New("housekeeping sweep disabled")
)
