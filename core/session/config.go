package session

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/authkit/core/event"
)

// Config holds session manager configuration.
type Config struct {
	// Limit is the per-user concurrent session cap enforced by eviction.
	Limit int
	// SlidingWindow is how far Touch slides the expiry forward when
	// extension is requested. Zero disables extension-on-use.
	SlidingWindow time.Duration
	// Retention is how long expired and revoked rows are kept for audit
	// before cleanup removes them.
	Retention time.Duration
	// CleanupInterval is the period of the expired-session cleanup task.
	// Zero disables the periodic task; CleanupExpired stays callable.
	CleanupInterval time.Duration
	// ShutdownTimeout bounds how long Stop waits for an in-flight
	// cleanup pass.
	ShutdownTimeout time.Duration
}

func defaultConfig() Config {
	return Config{
		Limit:           5,
		SlidingWindow:   24 * time.Hour,
		Retention:       7 * 24 * time.Hour,
		CleanupInterval: time.Hour,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Option is a functional option for configuring the session manager.
type Option func(*Manager)

// WithSessionLimit sets the per-user concurrent session cap.
func WithSessionLimit(limit int) Option {
	return func(m *Manager) {
		if limit > 0 {
			m.cfg.Limit = limit
		}
	}
}

// WithSlidingWindow sets the extension-on-use window. Zero disables
// sliding expiry: Touch then only updates LastUsedAt.
func WithSlidingWindow(window time.Duration) Option {
	return func(m *Manager) {
		if window >= 0 {
			m.cfg.SlidingWindow = window
		}
	}
}

// WithRetention sets how long expired and revoked rows survive cleanup.
func WithRetention(retention time.Duration) Option {
	return func(m *Manager) {
		if retention > 0 {
			m.cfg.Retention = retention
		}
	}
}

// WithCleanupInterval sets the period of the cleanup task.
func WithCleanupInterval(interval time.Duration) Option {
	return func(m *Manager) {
		m.cfg.CleanupInterval = interval
	}
}

// WithShutdownTimeout sets the graceful shutdown timeout for Stop.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		if timeout > 0 {
			m.cfg.ShutdownTimeout = timeout
		}
	}
}

// WithEvents sets the emitter for session lifecycle events.
func WithEvents(emitter event.Emitter) Option {
	return func(m *Manager) {
		if emitter != nil {
			m.events = emitter
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}
