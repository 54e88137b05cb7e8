package revocation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

// keyPrefix namespaces revocation entries in the shared cache.
const keyPrefix = "revoked:"

// Registry is the authoritative yes/no answer to "is identifier X
// revoked". The expiring cache is the enforcement path; the durable audit
// log is the advisory trail.
type Registry struct {
	cache  Cache
	audit  AuditLog
	logger *slog.Logger
	cfg    *Config

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistry creates a revocation registry over the given cache and
// audit log.
func NewRegistry(cache Cache, audit AuditLog, opts ...Option) *Registry {
	r := &Registry{
		cache:  cache,
		audit:  audit,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		cfg:    defaultConfig(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Blacklist revokes an identifier. The cache entry is written first
// because it is the enforcement path; the audit append follows and its
// failure is logged but never fails the call, since the cache entry
// already blocks traffic.
func (r *Registry) Blacklist(ctx context.Context, identifier, reason string, metadata map[string]string) error {
	entry := Entry{
		Identifier:    identifier,
		Reason:        reason,
		BlacklistedAt: time.Now(),
		Metadata:      metadata,
		TTL:           r.cfg.RetentionTTL,
	}

	value, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	if err := r.cache.Set(ctx, keyPrefix+identifier, value, r.cfg.RetentionTTL); err != nil {
		return errors.Join(ErrCacheUnavailable, err)
	}

	if err := r.audit.Append(ctx, AuditRecord{
		Identifier: identifier,
		Action:     AuditActionBlacklist,
		Reason:     reason,
		Metadata:   metadata,
		At:         entry.BlacklistedAt,
	}); err != nil {
		r.logger.ErrorContext(ctx, "revocation audit append failed",
			slog.String("identifier", identifier),
			slog.Any("error", err))
	}

	return nil
}

// IsBlacklisted checks whether an identifier is revoked.
//
// Fail-secure policy: when the cache backend is unreachable the returned
// Status reports Blacklisted=true together with ErrCacheUnavailable, so
// callers deny the request and can log the outage. Treating unknown as
// revoked is a deliberate security choice, not a bug.
func (r *Registry) IsBlacklisted(ctx context.Context, identifier string) (Status, error) {
	value, found, err := r.cache.Get(ctx, keyPrefix+identifier)
	if err != nil {
		return Status{Blacklisted: true, Reason: "verification unavailable"},
			errors.Join(ErrCacheUnavailable, err)
	}
	if !found {
		return Status{}, nil
	}

	var entry Entry
	if err := json.Unmarshal(value, &entry); err != nil {
		// A corrupt entry still represents a revocation.
		r.logger.ErrorContext(ctx, "corrupt revocation entry",
			slog.String("identifier", identifier),
			slog.Any("error", err))
		return Status{Blacklisted: true, Reason: "corrupt entry"}, nil
	}

	return Status{
		Blacklisted: true,
		Reason:      entry.Reason,
		At:          entry.BlacklistedAt,
	}, nil
}

// Unblacklist reverses a revocation. Admin-only; the reversal is recorded
// in the audit log as a record distinct from the original blacklist entry.
func (r *Registry) Unblacklist(ctx context.Context, identifier, reason string) error {
	_, found, err := r.cache.Get(ctx, keyPrefix+identifier)
	if err != nil {
		return errors.Join(ErrCacheUnavailable, err)
	}
	if !found {
		return ErrNotBlacklisted
	}

	if err := r.cache.Delete(ctx, keyPrefix+identifier); err != nil {
		return errors.Join(ErrCacheUnavailable, err)
	}

	if err := r.audit.Append(ctx, AuditRecord{
		Identifier: identifier,
		Action:     AuditActionUnblacklist,
		Reason:     reason,
		At:         time.Now(),
	}); err != nil {
		r.logger.ErrorContext(ctx, "unblacklist audit append failed",
			slog.String("identifier", identifier),
			slog.Any("error", err))
	}

	return nil
}
