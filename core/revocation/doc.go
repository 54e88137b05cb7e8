// Package revocation implements the token identifier revocation registry.
//
// The registry answers one question, "is identifier X revoked", backed
// by a fast expiring cache with a durable audit write-behind. The cache
// entry is the enforcement path and is written first; the audit append is
// advisory and its failure never fails a revocation.
//
// # Fail-Secure Reads
//
// When the cache backend is unreachable, IsBlacklisted reports the
// identifier as blacklisted together with ErrCacheUnavailable. An
// authentication outage must deny rather than silently admit unverifiable
// tokens; callers translate the error into a generic re-authenticate
// response and log the outage.
//
// # Retention
//
// Entries expire automatically after the retention TTL (default 30 days).
// An absent entry therefore does not mean "never revoked", only "outside
// the retention window". Permanent proof lives in the audit log.
// A periodic housekeeping sweep (Start/Stop/Run) collects entries whose
// recorded lifetime lapsed without backend expiry.
//
// # Usage
//
//	registry := revocation.NewRegistry(cache, auditLog,
//		revocation.WithRetentionTTL(30*24*time.Hour),
//		revocation.WithLogger(logger),
//	)
//
//	if err := registry.Blacklist(ctx, jti, "session_revoked", nil); err != nil {
//		return err
//	}
//
//	status, err := registry.IsBlacklisted(ctx, jti)
//	if status.Blacklisted {
//		// deny; err distinguishes a real hit from a fail-secure outage
//	}
package revocation
