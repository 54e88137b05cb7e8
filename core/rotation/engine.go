package rotation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/authkit/core/event"
	"github.com/dmitrymomot/authkit/core/fingerprint"
	"github.com/dmitrymomot/authkit/core/session"
	"github.com/dmitrymomot/authkit/pkg/jti"
)

// Engine executes the refresh-token rotation protocol: verify, lock,
// validate the session and family lineage, then mint a new identifier
// pair. Rotation is exactly single-use; a superseded identifier showing
// up again is treated as token theft and cascades into revoking the
// whole family.
type Engine struct {
	verifier Verifier
	locker   Locker
	families FamilyStore
	revoker  Revoker
	sessions Sessions
	events   event.Emitter
	logger   *slog.Logger
	mint     func() (string, error)

	grace     time.Duration
	lockTTL   time.Duration
	familyCap int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithGracePeriod sets how long past expiry a token is still rotatable.
func WithGracePeriod(grace time.Duration) EngineOption {
	return func(e *Engine) {
		if grace >= 0 {
			e.grace = grace
		}
	}
}

// WithLockTTL sets the concurrency lock lifetime. The lock is never
// extended; it expires naturally.
func WithLockTTL(ttl time.Duration) EngineOption {
	return func(e *Engine) {
		if ttl > 0 {
			e.lockTTL = ttl
		}
	}
}

// WithFamilyCap sets the maximum family size before rotation is refused
// as anomalous.
func WithFamilyCap(cap int) EngineOption {
	return func(e *Engine) {
		if cap > 0 {
			e.familyCap = cap
		}
	}
}

// WithIDGenerator sets the identifier minting function.
func WithIDGenerator(mint func() (string, error)) EngineOption {
	return func(e *Engine) {
		if mint != nil {
			e.mint = mint
		}
	}
}

// WithEvents sets the emitter for security events.
func WithEvents(emitter event.Emitter) EngineOption {
	return func(e *Engine) {
		if emitter != nil {
			e.events = emitter
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a rotation engine. Defaults: 5 minute grace window,
// 1 second lock TTL, family cap 10, identifiers minted by pkg/jti.
func NewEngine(verifier Verifier, locker Locker, families FamilyStore, revoker Revoker, sessions Sessions, opts ...EngineOption) *Engine {
	e := &Engine{
		verifier:  verifier,
		locker:    locker,
		families:  families,
		revoker:   revoker,
		sessions:  sessions,
		events:    event.Discard,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		mint:      jti.New,
		grace:     5 * time.Minute,
		lockTTL:   time.Second,
		familyCap: 10,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Refresh rotates the presented refresh token into a new identifier
// pair. Every failure is final for this token: the caller retries with a
// new attempt, never by re-presenting the failed token.
func (e *Engine) Refresh(ctx context.Context, token string, meta fingerprint.Metadata) (*TokenPair, error) {
	claims, err := e.verifier.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) && e.withinGrace(claims) {
			e.logger.InfoContext(ctx, "expired token accepted within grace window",
				slog.String("session_id", claims.SessionID))
		} else {
			e.logger.WarnContext(ctx, "refresh token rejected", slog.Any("error", err))
			return nil, ErrInvalidToken
		}
	}

	held, err := e.locker.TryLock(ctx, "refresh_lock:"+claims.UserID.String()+":"+claims.RefreshID, e.lockTTL)
	if err != nil {
		return nil, errors.Join(ErrLockUnavailable, err)
	}
	if !held {
		e.logger.WarnContext(ctx, "concurrent refresh rejected",
			slog.String("session_id", claims.SessionID))
		return nil, ErrConcurrentRefresh
	}

	sess, err := e.loadSession(ctx, claims)
	if err != nil {
		return nil, err
	}

	family, err := e.loadFamily(ctx, sess)
	if err != nil {
		return nil, err
	}

	if claims.RefreshID != family.Current() {
		if family.Contains(claims.RefreshID) {
			// A superseded member replayed: the single-use invariant is
			// broken, so this token was exfiltrated.
			e.cascade(ctx, sess, family, claims.RefreshID, meta)
			return nil, ErrFamilyCompromised
		}
		e.logger.WarnContext(ctx, "refresh identifier unknown to family",
			slog.String("session_id", sess.ID))
		return nil, ErrSessionInvalid
	}

	if len(family.Members) >= e.familyCap {
		e.logger.WarnContext(ctx, "token family at size cap",
			slog.String("session_id", sess.ID),
			slog.Int("members", len(family.Members)))
		return nil, ErrFamilySizeExceeded
	}

	return e.rotate(ctx, sess, family, claims.RefreshID)
}

func (e *Engine) withinGrace(claims Claims) bool {
	if e.grace <= 0 || claims.ExpiresAt.IsZero() {
		return false
	}
	return time.Since(claims.ExpiresAt) <= e.grace
}

// loadSession resolves the session for the claims. The row is looked up
// by the presented refresh identifier first; a miss falls back to the
// session identifier so that a replayed superseded token still reaches
// the family check instead of dead-ending as a missing session.
func (e *Engine) loadSession(ctx context.Context, claims Claims) (*session.Session, error) {
	sess, err := e.sessions.GetByRefreshID(ctx, claims.RefreshID)
	if errors.Is(err, session.ErrNotFound) {
		sess, err = e.sessions.GetByID(ctx, claims.SessionID)
	}
	if err != nil {
		e.logger.WarnContext(ctx, "refresh for unusable session",
			slog.String("session_id", claims.SessionID),
			slog.Any("error", err))
		return nil, errors.Join(ErrSessionInvalid, err)
	}

	if !sess.IsActive() || sess.UserID != claims.UserID {
		return nil, ErrSessionInvalid
	}

	return sess, nil
}

// loadFamily returns the session's family, initializing a fresh lineage
// on the first rotation.
func (e *Engine) loadFamily(ctx context.Context, sess *session.Session) (*TokenFamily, error) {
	family, err := e.families.Get(ctx, sess.ID)
	if err == nil {
		return family, nil
	}
	if !errors.Is(err, ErrFamilyNotFound) {
		return nil, errors.Join(ErrSessionInvalid, err)
	}

	now := time.Now()
	return &TokenFamily{
		SessionID:  sess.ID,
		Members:    []string{sess.RefreshID},
		CreatedAt:  now,
		LastUsedAt: now,
	}, nil
}

// rotate mints the new pair and advances the family lineage. The
// superseded identifier is blacklisted so it cannot be replayed even
// against caches that have not seen the family update yet.
func (e *Engine) rotate(ctx context.Context, sess *session.Session, family *TokenFamily, supersededID string) (*TokenPair, error) {
	accessID, err := e.mint()
	if err != nil {
		return nil, err
	}
	refreshID, err := e.mint()
	if err != nil {
		return nil, err
	}

	if err := e.sessions.SetRefreshID(ctx, sess.ID, refreshID); err != nil {
		return nil, errors.Join(ErrSessionInvalid, err)
	}

	family.Members = append(family.Members, refreshID)
	family.LastUsedAt = time.Now()
	if err := e.families.Save(ctx, family); err != nil {
		// The conditional save lost to a concurrent writer that slipped
		// past the lock.
		return nil, errors.Join(ErrConcurrentRefresh, err)
	}

	// Retiring the old identifier is idempotent bookkeeping.
	if err := e.revoker.Blacklist(ctx, supersededID, "rotated", map[string]string{
		"session_id": sess.ID,
	}); err != nil {
		e.logger.WarnContext(ctx, "superseded identifier blacklist failed",
			slog.String("session_id", sess.ID),
			slog.Any("error", err))
	}

	return &TokenPair{
		AccessID:  accessID,
		RefreshID: refreshID,
		IssuedAt:  time.Now(),
	}, nil
}

// cascade is the theft response: blacklist every family member
// individually, revoke the session, and destroy the family. Failures
// inside the cascade are logged and absorbed; the caller gets
// ErrFamilyCompromised regardless, and the next attempt re-runs whatever
// part did not land.
func (e *Engine) cascade(ctx context.Context, sess *session.Session, family *TokenFamily, presentedID string, meta fingerprint.Metadata) {
	presenter := fingerprint.Generate(meta)
	e.logger.ErrorContext(ctx, "token family compromised, revoking lineage",
		slog.String("session_id", sess.ID),
		slog.String("user_id", sess.UserID.String()),
		slog.String("presenter_device", presenter.StableHash),
		slog.String("presenter_ip", meta.IP),
		slog.Int("members", len(family.Members)))

	revoked := 0
	for _, member := range family.Members {
		if err := e.revoker.Blacklist(ctx, member, "token family compromised", map[string]string{
			"session_id": sess.ID,
		}); err != nil {
			e.logger.ErrorContext(ctx, "family member blacklist failed",
				slog.String("identifier", member),
				slog.Any("error", err))
			continue
		}
		revoked++
	}

	if _, err := e.sessions.Revoke(ctx, sess.ID, "token family compromised", "system"); err != nil {
		e.logger.ErrorContext(ctx, "compromised session revocation failed",
			slog.String("session_id", sess.ID),
			slog.Any("error", err))
	}

	if err := e.families.Delete(ctx, sess.ID); err != nil {
		e.logger.ErrorContext(ctx, "compromised family deletion failed",
			slog.String("session_id", sess.ID),
			slog.Any("error", err))
	}

	if err := e.events.Publish(ctx, event.TokenFamilyCompromised{
		SessionID:      sess.ID,
		UserID:         sess.UserID,
		PresentedID:    presentedID,
		RevokedMembers: revoked,
	}); err != nil {
		e.logger.WarnContext(ctx, "family compromised event emission failed", slog.Any("error", err))
	}
}
