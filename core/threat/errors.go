package threat

import "errors"

var (
	// ErrLockedOut is returned when further attempts are refused because
	// the key is inside an active lockout window.
	ErrLockedOut = errors.New("too many attempts, locked out")

	// ErrCacheUnavailable is returned when the shared cache backend is
	// unreachable. Callers on the authentication path decide whether to
	// fail open or closed; the detectors do not guess for them.
	ErrCacheUnavailable = errors.New("threat detection cache unavailable")

	// ErrHistoryUnavailable is returned when the login history source is
	// unreachable and a detector cannot evaluate.
	ErrHistoryUnavailable = errors.New("login history unavailable")
)
