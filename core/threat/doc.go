// Package threat implements the attack-signal detectors of the security
// core: brute-force lockout, impossible-travel evaluation, and
// account-takeover risk scoring.
//
// All detector state lives in the shared expiring cache and durable login
// history, never in process memory, because consecutive requests for the
// same user may land on different nodes.
//
// # Brute-Force Lockout
//
// Attempts accumulate per (identifier, IP, attempt type) key in a sliding
// window (default 15 minutes). Crossing the threshold (default 5) locks
// the key out for base * 2^min(violations, 5), a progressive backoff
// capped at 32x, and bumps a violation counter that outlives the
// lockout (default 7 days). Callers check IsLockedOut before
// authenticating; a lapsed lockout is lazily cleared on check.
//
//	detector := threat.NewBruteForceDetector(cache)
//	key := threat.AttemptKey{Identifier: email, IP: ip, AttemptType: "login"}
//
//	if locked, until, _ := detector.IsLockedOut(ctx, key); locked {
//		// refuse until `until`
//	}
//	result, err := detector.RecordAttempt(ctx, key)
//	if result.IsBruteForce {
//		// threshold crossed on this attempt
//	}
//
// # Impossible Travel
//
// Two consecutive logins are compared by great-circle distance and
// required average speed. Pairs under one hour apart or with an unknown
// location are skipped; speeds above 500 km/h flag the pair. The full
// computation (distance, elapsed, speed, both endpoints) is returned for
// the audit trail.
//
// # Account-Takeover Scoring
//
// Independent sub-checks over a rolling 24 hour history window each yield
// a severity (low/medium/high/critical mapping to 1/3/5/10 points); the
// total is capped at 10. A score at or above the threshold (default 3)
// marks the login as a takeover risk. With automated response enabled
// and a score at or above 8, the user is suspended: every session
// revoked and the account flipped. Suspension is the single destructive
// automated action in the system.
package threat
