// Package session manages the lifecycle of authenticated device sessions:
// creation under a per-user concurrency cap, activity tracking with
// optional sliding expiry, and one-way revocation that preserves the row
// as an audit trail.
//
// A Session binds a user (and optionally an organization) to a device
// fingerprint, IP, and the identifiers of the currently valid access and
// refresh tokens. Token encoding and transport are out of scope: callers
// mint identifiers and hand them in via CreateParams.
//
// # Concurrency Cap and Eviction
//
// Each user may hold a limited number of active sessions (default 5).
// When a new session would exceed the cap, the manager scores every
// active session and revokes the lowest scorers until the new session
// fits. The score is a weighted LRU biased to keep sessions resembling
// the incoming one (same stable fingerprint, browser, OS, or IP), so a
// user logging in again from their usual laptop evicts a stale session
// on a forgotten machine, not the laptop's own previous session.
// Eviction is bookkeeping: its failures are logged and never block
// creation.
//
// # Usage
//
//	store := pg.NewSessionStore(pool)
//	manager := session.NewManager(store,
//		session.WithSessionLimit(5),
//		session.WithEvents(publisher),
//	)
//
//	sess, err := manager.Create(ctx, session.CreateParams{
//		UserID:      userID,
//		Fingerprint: fingerprint.FromRequest(r),
//		IP:          clientip.GetIP(r),
//		UserAgent:   r.UserAgent(),
//		AccessID:    accessID,
//		RefreshID:   refreshID,
//		ExpiresAt:   time.Now().Add(30 * 24 * time.Hour),
//	})
//
// Reads hide revoked sessions behind ErrNotFound; expiry is the caller's
// concern via IsActive. On storage outages reads fail with
// ErrStorageUnavailable rather than letting an unverifiable session
// through.
//
// # Cleanup
//
// Expired and revoked rows are retained for a window (default 7 days)
// and then removed by a periodic task:
//
//	go manager.Start(ctx) // or g.Go(manager.Run(ctx)) with errgroup
//	defer manager.Stop()
package session
