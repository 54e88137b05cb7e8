// Package rotation implements single-use refresh-token rotation with
// family tracking and replay detection.
//
// Every session owns a TokenFamily: the ordered lineage of refresh
// identifiers minted for it. Only the newest member is valid for
// rotation. Presenting any earlier member proves the token escaped the
// legitimate client (the real client already holds the successor), so
// the engine blacklists every member of the family, revokes the session,
// and returns ErrFamilyCompromised. An attacker who stole one refresh
// token gets the whole lineage burned, not a fresh pair.
//
// # Concurrency
//
// Rotation is linearized per token by a short-TTL try-lock on
// (userID, refreshID). The lock is acquired or denied immediately; a
// denial returns ErrConcurrentRefresh as a hard failure because waiting
// risks serving a stale pair after the winner has already rotated. The
// lock is never extended and expires on its own.
//
// # Grace Window
//
// A token expired by less than the grace window (default 5 minutes)
// still rotates, absorbing clock skew and client retry races. The family
// checks gate the grace path exactly as the normal one, so single-use is
// not weakened.
//
// # Usage
//
//	engine := rotation.NewEngine(verifier, locker, families, registry, manager,
//		rotation.WithEvents(publisher),
//	)
//
//	pair, err := engine.Refresh(ctx, presentedToken, fingerprint.Metadata{
//		UserAgent: r.UserAgent(),
//		IP:        clientip.GetIP(r),
//	})
//	switch {
//	case errors.Is(err, rotation.ErrConcurrentRefresh):
//		// another refresh won the race; client retries with its result
//	case errors.Is(err, rotation.ErrFamilyCompromised):
//		// lineage revoked; force reauthentication
//	}
package rotation
