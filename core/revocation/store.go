package revocation

import (
	"context"
	"time"
)

// Cache is the expiring key-value surface the registry enforces through.
// Implementations must be safe for concurrent use and shared across
// processes; the Redis adapter in integration/database/redis satisfies it.
type Cache interface {
	// Get returns the value for key. The second return is false when the
	// key is absent; an error means the backend is unreachable.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set writes value under key with the given TTL. Zero TTL means no
	// automatic expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys enumerates keys matching a glob pattern, for housekeeping only.
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// AuditAction distinguishes the durable record written for a revocation
// from the record written for its reversal.
type AuditAction string

const (
	AuditActionBlacklist   AuditAction = "blacklist"
	AuditActionUnblacklist AuditAction = "unblacklist"
)

// AuditRecord is the immutable durable trail of a registry mutation.
type AuditRecord struct {
	Identifier string
	Action     AuditAction
	Reason     string
	Metadata   map[string]string
	At         time.Time
}

// AuditLog is the durable append-only counterpart of the cache fast path.
// Appends are advisory: the cache entry blocks traffic whether or not the
// audit write lands.
type AuditLog interface {
	Append(ctx context.Context, record AuditRecord) error
}

// Entry is a revocation record as stored in the cache.
//
// An absent entry after the retention TTL does not mean "never revoked",
// only "outside the retention window". Callers needing permanent proof
// must consult the audit log.
type Entry struct {
	Identifier    string            `json:"identifier"`
	Reason        string            `json:"reason"`
	BlacklistedAt time.Time         `json:"blacklisted_at"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	TTL           time.Duration     `json:"ttl"`
}

// Status is the answer to an IsBlacklisted check.
type Status struct {
	Blacklisted bool
	Reason      string
	At          time.Time
}
