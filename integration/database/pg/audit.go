package pg

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/authkit/core/revocation"
)

// AuditLog is the durable append-only record of revocation actions.
// Implements revocation.AuditLog. Appends are advisory: the registry
// logs and absorbs failures here, the cache entry is the enforcement
// path.
//
// Expected schema:
//
//	CREATE TABLE revocation_audit (
//		id         BIGSERIAL PRIMARY KEY,
//		identifier TEXT NOT NULL,
//		action     TEXT NOT NULL,
//		reason     TEXT NOT NULL DEFAULT '',
//		metadata   JSONB NOT NULL DEFAULT '{}',
//		created_at TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX revocation_audit_identifier_idx ON revocation_audit (identifier);
type AuditLog struct {
	pool *pgxpool.Pool
}

// NewAuditLog wraps the pool.
func NewAuditLog(pool *pgxpool.Pool) *AuditLog {
	return &AuditLog{pool: pool}
}

func (a *AuditLog) q(ctx context.Context) querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return a.pool
}

// Append inserts one audit record.
func (a *AuditLog) Append(ctx context.Context, record revocation.AuditRecord) error {
	metadata, err := json.Marshal(record.Metadata)
	if err != nil {
		return err
	}

	_, err = a.q(ctx).Exec(ctx,
		`INSERT INTO revocation_audit (identifier, action, reason, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		record.Identifier, string(record.Action), record.Reason, metadata, record.At)
	return err
}
