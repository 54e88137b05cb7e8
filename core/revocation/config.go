package revocation

import (
	"log/slog"
	"time"
)

// Config holds registry configuration.
type Config struct {
	// RetentionTTL bounds how long a revocation entry stays in the cache.
	RetentionTTL time.Duration

	// SweepInterval controls the housekeeping sweep frequency.
	// Zero disables the sweep; TTL expiry still applies.
	SweepInterval time.Duration

	// ShutdownTimeout bounds how long Stop waits for an in-flight sweep.
	ShutdownTimeout time.Duration
}

func defaultConfig() *Config {
	return &Config{
		RetentionTTL:    30 * 24 * time.Hour,
		SweepInterval:   time.Hour,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Option is a functional option for configuring the registry.
type Option func(*Registry)

// WithRetentionTTL sets how long revocation entries are retained.
func WithRetentionTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		if ttl > 0 {
			r.cfg.RetentionTTL = ttl
		}
	}
}

// WithSweepInterval sets the housekeeping sweep frequency.
// Set to 0 to disable the sweep.
func WithSweepInterval(interval time.Duration) Option {
	return func(r *Registry) {
		r.cfg.SweepInterval = interval
	}
}

// WithShutdownTimeout sets the graceful shutdown timeout for the sweep.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(r *Registry) {
		if timeout > 0 {
			r.cfg.ShutdownTimeout = timeout
		}
	}
}

// WithLogger sets the logger for bookkeeping failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}
