package pg

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/authkit/core/fingerprint"
	"github.com/dmitrymomot/authkit/core/threat"
	"github.com/dmitrymomot/authkit/pkg/geodist"
)

// LoginHistory records login observations and serves the range queries
// the threat detectors run. Implements threat.HistoryStore.
//
// Expected schema:
//
//	CREATE TABLE login_history (
//		id          BIGSERIAL PRIMARY KEY,
//		user_id     UUID NOT NULL,
//		session_id  TEXT NOT NULL,
//		ip          TEXT NOT NULL,
//		fingerprint JSONB NOT NULL DEFAULT '{}',
//		lat         DOUBLE PRECISION,
//		lon         DOUBLE PRECISION,
//		created_at  TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX login_history_user_time_idx ON login_history (user_id, created_at DESC);
type LoginHistory struct {
	pool *pgxpool.Pool
}

// NewLoginHistory wraps the pool.
func NewLoginHistory(pool *pgxpool.Pool) *LoginHistory {
	return &LoginHistory{pool: pool}
}

func (h *LoginHistory) q(ctx context.Context) querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return h.pool
}

// Record appends one login observation. Location is optional.
func (h *LoginHistory) Record(ctx context.Context, record threat.LoginRecord) error {
	fpJSON, err := json.Marshal(record.Fingerprint)
	if err != nil {
		return err
	}

	var lat, lon *float64
	if record.Location != nil {
		lat, lon = &record.Location.Lat, &record.Location.Lon
	}

	_, err = h.q(ctx).Exec(ctx,
		`INSERT INTO login_history (user_id, session_id, ip, fingerprint, lat, lon, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.UserID, record.SessionID, record.IP, fpJSON, lat, lon, record.At)
	return err
}

// RecentLogins returns the user's logins at or after since, newest first.
func (h *LoginHistory) RecentLogins(ctx context.Context, userID uuid.UUID, since time.Time) ([]threat.LoginRecord, error) {
	rows, err := h.q(ctx).Query(ctx,
		`SELECT user_id, session_id, ip, fingerprint, lat, lon, created_at
		 FROM login_history
		 WHERE user_id = $1 AND created_at >= $2
		 ORDER BY created_at DESC`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []threat.LoginRecord
	for rows.Next() {
		var (
			record   threat.LoginRecord
			fpJSON   []byte
			lat, lon *float64
		)
		if err := rows.Scan(&record.UserID, &record.SessionID, &record.IP,
			&fpJSON, &lat, &lon, &record.At); err != nil {
			return nil, err
		}

		if len(fpJSON) > 0 {
			var fp fingerprint.DeviceFingerprint
			if err := json.Unmarshal(fpJSON, &fp); err == nil {
				record.Fingerprint = fp
			}
		}
		if lat != nil && lon != nil {
			record.Location = &geodist.Point{Lat: *lat, Lon: *lon}
		}

		records = append(records, record)
	}
	return records, rows.Err()
}
