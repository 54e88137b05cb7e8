package pg

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/authkit/core/fingerprint"
	"github.com/dmitrymomot/authkit/core/session"
)

// querier is satisfied by both the pool and a transaction, so store
// methods transparently join a transaction carried in the context.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SessionStore persists session rows in PostgreSQL. Implements
// session.Store.
//
// Expected schema:
//
//	CREATE TABLE sessions (
//		id             TEXT PRIMARY KEY,
//		refresh_id     TEXT NOT NULL,
//		user_id        UUID NOT NULL,
//		org_id         UUID NOT NULL,
//		fingerprint    JSONB NOT NULL DEFAULT '{}',
//		ip             TEXT NOT NULL,
//		user_agent     TEXT NOT NULL DEFAULT '',
//		created_at     TIMESTAMPTZ NOT NULL,
//		expires_at     TIMESTAMPTZ NOT NULL,
//		last_used_at   TIMESTAMPTZ NOT NULL,
//		revoked_at     TIMESTAMPTZ,
//		revoked_reason TEXT NOT NULL DEFAULT '',
//		revoked_by     TEXT NOT NULL DEFAULT ''
//	);
//	CREATE INDEX sessions_refresh_id_idx ON sessions (refresh_id);
//	CREATE INDEX sessions_user_id_idx ON sessions (user_id);
type SessionStore struct {
	pool *pgxpool.Pool
}

// NewSessionStore wraps the pool.
func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

func (s *SessionStore) q(ctx context.Context) querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return s.pool
}

const sessionColumns = `id, refresh_id, user_id, org_id, fingerprint, ip, user_agent,
	created_at, expires_at, last_used_at, revoked_at, revoked_reason, revoked_by`

func scanSession(row pgx.Row) (*session.Session, error) {
	var (
		sess   session.Session
		fpJSON []byte
	)
	err := row.Scan(&sess.ID, &sess.RefreshID, &sess.UserID, &sess.OrgID, &fpJSON,
		&sess.IP, &sess.UserAgent, &sess.CreatedAt, &sess.ExpiresAt, &sess.LastUsedAt,
		&sess.RevokedAt, &sess.RevokedReason, &sess.RevokedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(fpJSON) > 0 {
		var fp fingerprint.DeviceFingerprint
		if err := json.Unmarshal(fpJSON, &fp); err == nil {
			sess.Fingerprint = fp
		}
	}

	return &sess, nil
}

func (s *SessionStore) GetByID(ctx context.Context, id string) (*session.Session, error) {
	row := s.q(ctx).QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	return scanSession(row)
}

func (s *SessionStore) GetByRefreshID(ctx context.Context, refreshID string) (*session.Session, error) {
	row := s.q(ctx).QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE refresh_id = $1`, refreshID)
	return scanSession(row)
}

func (s *SessionStore) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]session.Session, error) {
	rows, err := s.q(ctx).Query(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > now()
		 ORDER BY last_used_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []session.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

func (s *SessionStore) Create(ctx context.Context, sess *session.Session) error {
	fpJSON, err := json.Marshal(sess.Fingerprint)
	if err != nil {
		return err
	}

	_, err = s.q(ctx).Exec(ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		sess.ID, sess.RefreshID, sess.UserID, sess.OrgID, fpJSON, sess.IP, sess.UserAgent,
		sess.CreatedAt, sess.ExpiresAt, sess.LastUsedAt,
		sess.RevokedAt, sess.RevokedReason, sess.RevokedBy)
	return err
}

func (s *SessionStore) UpdateLastUsed(ctx context.Context, id string, lastUsedAt time.Time, expiresAt *time.Time) error {
	tag, err := s.q(ctx).Exec(ctx,
		`UPDATE sessions
		 SET last_used_at = $2, expires_at = COALESCE($3, expires_at)
		 WHERE id = $1`, id, lastUsedAt, expiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (s *SessionStore) SetRefreshID(ctx context.Context, id, refreshID string) error {
	tag, err := s.q(ctx).Exec(ctx,
		`UPDATE sessions SET refresh_id = $2 WHERE id = $1`, id, refreshID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

// Revoke marks the session revoked. The guard on revoked_at keeps the
// transition one-way: a second revocation touches nothing.
func (s *SessionStore) Revoke(ctx context.Context, id string, at time.Time, reason, revokedBy string) error {
	_, err := s.q(ctx).Exec(ctx,
		`UPDATE sessions
		 SET revoked_at = $2, revoked_reason = $3, revoked_by = $4
		 WHERE id = $1 AND revoked_at IS NULL`, id, at, reason, revokedBy)
	return err
}

func (s *SessionStore) RevokeAllByUser(ctx context.Context, userID uuid.UUID, at time.Time, reason, exceptID string) (int64, error) {
	tag, err := s.q(ctx).Exec(ctx,
		`UPDATE sessions
		 SET revoked_at = $2, revoked_reason = $3, revoked_by = 'system'
		 WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > now()
		   AND ($4 = '' OR id <> $4)`, userID, at, reason, exceptID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *SessionStore) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := s.q(ctx).Exec(ctx,
		`DELETE FROM sessions WHERE expires_at < $1`, olderThan)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
