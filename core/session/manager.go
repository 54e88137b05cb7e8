package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authkit/core/event"
)

// Manager owns the session lifecycle: creation with concurrency-limited
// eviction, reads that hide revoked sessions, activity tracking, and
// one-way revocation.
type Manager struct {
	store  Store
	events event.Emitter
	logger *slog.Logger
	cfg    Config

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a session manager over the given store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		events: event.Discard,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		cfg:    defaultConfig(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Create opens a new session, evicting the user's lowest-priority
// sessions first when the concurrency cap would be exceeded. Eviction
// failures are logged and never block creation.
func (m *Manager) Create(ctx context.Context, params CreateParams) (*Session, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &Session{
		ID:          params.AccessID,
		RefreshID:   params.RefreshID,
		UserID:      params.UserID,
		OrgID:       params.OrgID,
		Fingerprint: params.Fingerprint,
		IP:          params.IP,
		UserAgent:   params.UserAgent,
		CreatedAt:   now,
		ExpiresAt:   params.ExpiresAt,
		LastUsedAt:  now,
	}

	m.enforceLimit(ctx, sess, now)

	if err := m.store.Create(ctx, sess); err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	if err := m.events.Publish(ctx, event.SessionCreated{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		IP:        sess.IP,
		Device:    sess.Device(),
	}); err != nil {
		m.logger.WarnContext(ctx, "session created event emission failed", slog.Any("error", err))
	}

	return sess, nil
}

// enforceLimit revokes the lowest-priority active sessions so the new one
// fits under the cap. Best-effort: every failure is logged and absorbed.
func (m *Manager) enforceLimit(ctx context.Context, incoming *Session, now time.Time) {
	active, err := m.store.ListActiveByUser(ctx, incoming.UserID)
	if err != nil {
		m.logger.ErrorContext(ctx, "session limit enforcement skipped",
			slog.String("user_id", incoming.UserID.String()),
			slog.Any("error", err))
		return
	}

	for _, victim := range selectEvictions(active, *incoming, m.cfg.Limit, now) {
		if err := m.store.Revoke(ctx, victim.ID, now, "evicted: concurrent session limit", "system"); err != nil {
			m.logger.ErrorContext(ctx, "session eviction failed",
				slog.String("session_id", victim.ID),
				slog.Any("error", err))
			continue
		}

		if err := m.events.Publish(ctx, event.SessionRevoked{
			SessionID: victim.ID,
			UserID:    victim.UserID,
			Reason:    "evicted: concurrent session limit",
			RevokedBy: "system",
		}); err != nil {
			m.logger.WarnContext(ctx, "session revoked event emission failed", slog.Any("error", err))
		}
	}
}

// GetByID returns the session with the given access identifier. Revoked
// sessions read as not found. Expiry is not checked here: callers inspect
// IsActive or ExpiresAt themselves.
func (m *Manager) GetByID(ctx context.Context, id string) (*Session, error) {
	return m.get(func() (*Session, error) { return m.store.GetByID(ctx, id) })
}

// GetByRefreshID returns the session holding the given refresh
// identifier, with the same visibility rules as GetByID.
func (m *Manager) GetByRefreshID(ctx context.Context, refreshID string) (*Session, error) {
	return m.get(func() (*Session, error) { return m.store.GetByRefreshID(ctx, refreshID) })
}

func (m *Manager) get(load func() (*Session, error)) (*Session, error) {
	sess, err := load()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		// An unverifiable session must read as unusable, never as valid.
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	if sess.IsRevoked() {
		return nil, ErrNotFound
	}

	return sess, nil
}

// Touch records activity on the session. With extend true and a sliding
// window configured, the expiry moves forward by the window.
func (m *Manager) Touch(ctx context.Context, id string, extend bool) (*Session, error) {
	sess, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess.LastUsedAt = now

	var expiresAt *time.Time
	if extend && m.cfg.SlidingWindow > 0 {
		slid := now.Add(m.cfg.SlidingWindow)
		sess.ExpiresAt = slid
		expiresAt = &slid
	}

	if err := m.store.UpdateLastUsed(ctx, id, now, expiresAt); err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	return sess, nil
}

// SetRefreshID replaces the session's refresh identifier after a token
// rotation.
func (m *Manager) SetRefreshID(ctx context.Context, id, refreshID string) error {
	if err := m.store.SetRefreshID(ctx, id, refreshID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errors.Join(ErrStorageUnavailable, err)
	}
	return nil
}

// Revoke terminates the session. One-way and idempotent: revoking an
// already-revoked session returns it unchanged without error.
func (m *Manager) Revoke(ctx context.Context, id, reason, revokedBy string) (*Session, error) {
	sess, err := m.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	if sess.IsRevoked() {
		return sess, nil
	}

	now := time.Now()
	if err := m.store.Revoke(ctx, id, now, reason, revokedBy); err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	sess.RevokedAt = &now
	sess.RevokedReason = reason
	sess.RevokedBy = revokedBy

	if err := m.events.Publish(ctx, event.SessionRevoked{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		Reason:    reason,
		RevokedBy: revokedBy,
	}); err != nil {
		m.logger.WarnContext(ctx, "session revoked event emission failed", slog.Any("error", err))
	}

	return sess, nil
}

// RevokeAll terminates every active session of the user, optionally
// sparing the caller's own session. Emits a single bulk event, not one
// per session.
func (m *Manager) RevokeAll(ctx context.Context, userID uuid.UUID, reason, exceptID string) (int64, error) {
	count, err := m.store.RevokeAllByUser(ctx, userID, time.Now(), reason, exceptID)
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}

	if count > 0 {
		if err := m.events.Publish(ctx, event.SessionBulkRevoked{
			UserID:   userID,
			Reason:   reason,
			Count:    int(count),
			ExceptID: exceptID,
		}); err != nil {
			m.logger.WarnContext(ctx, "bulk revoked event emission failed", slog.Any("error", err))
		}
	}

	return count, nil
}

// VerifySessionActive reports whether the session with the given access
// identifier exists and is active. Storage outages surface as errors so
// the caller can refuse rather than trust an unverifiable session.
func (m *Manager) VerifySessionActive(ctx context.Context, accessID string) (bool, error) {
	sess, err := m.GetByID(ctx, accessID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return sess.IsActive(), nil
}

// CleanupExpired removes sessions whose expiry is older than the
// retention window, revoked rows included. Returns the deleted count.
func (m *Manager) CleanupExpired(ctx context.Context) (int64, error) {
	count, err := m.store.DeleteExpired(ctx, time.Now().Add(-m.cfg.Retention))
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}
	return count, nil
}
