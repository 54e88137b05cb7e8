package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Start begins the periodic expired-session cleanup. Blocking; runs until
// the context is cancelled. Use Run for errgroup wiring or call Start in
// a goroutine.
//
// Cleanup is housekeeping: pass failures are logged and absorbed, and the
// next tick retries.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return ErrCleanupAlreadyStarted
	}
	if m.cfg.CleanupInterval <= 0 {
		m.mu.Unlock()
		return ErrCleanupDisabled
	}

	ctx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "session cleanup started",
		slog.Duration("interval", m.cfg.CleanupInterval),
		slog.Duration("retention", m.cfg.Retention))

	ticker := time.NewTicker(m.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.InfoContext(context.Background(), "session cleanup stopping")
			return ctx.Err()
		case <-ticker.C:
			m.wg.Add(1)
			if count, err := m.CleanupExpired(ctx); err != nil {
				m.logger.WarnContext(ctx, "session cleanup pass failed", slog.Any("error", err))
			} else if count > 0 {
				m.logger.InfoContext(ctx, "session cleanup completed", slog.Int64("removed", count))
			}
			m.wg.Done()
		}
	}
}

// Stop gracefully shuts down the cleanup task, waiting up to
// ShutdownTimeout for an in-flight pass to finish.
func (m *Manager) Stop() error {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return ErrCleanupNotStarted
	}
	cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(m.cfg.ShutdownTimeout):
		return fmt.Errorf("cleanup shutdown timeout exceeded after %s", m.cfg.ShutdownTimeout)
	}
}

// Run provides errgroup compatibility: the returned function starts the
// cleanup task and shuts it down when the context is cancelled.
func (m *Manager) Run(ctx context.Context) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- m.Start(ctx)
		}()

		select {
		case <-ctx.Done():
			_ = m.Stop()
			<-errCh
			return nil
		case err := <-errCh:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}
