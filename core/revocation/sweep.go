package revocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Start begins the periodic housekeeping sweep. This is a blocking
// operation that runs until the context is cancelled; use Run for
// errgroup wiring or call Start in a goroutine.
//
// The sweep is pure housekeeping: TTL expiry removes entries on backends
// that support it, and the sweep only collects entries whose recorded
// lifetime has lapsed without a backend expiry (e.g. entries written with
// zero TTL). Sweep errors are logged and absorbed.
func (r *Registry) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return ErrSweepAlreadyStarted
	}
	if r.cfg.SweepInterval <= 0 {
		r.mu.Unlock()
		return ErrSweepDisabled
	}

	ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "revocation sweep started",
		slog.Duration("interval", r.cfg.SweepInterval))

	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(context.Background(), "revocation sweep stopping")
			return ctx.Err()
		case <-ticker.C:
			r.wg.Add(1)
			r.sweep(ctx)
			r.wg.Done()
		}
	}
}

// Stop gracefully shuts down the sweep, waiting up to ShutdownTimeout for
// an in-flight pass to finish.
func (r *Registry) Stop() error {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel == nil {
		return ErrSweepNotStarted
	}
	cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(r.cfg.ShutdownTimeout):
		return fmt.Errorf("sweep shutdown timeout exceeded after %s", r.cfg.ShutdownTimeout)
	}
}

// Run provides errgroup compatibility: the returned function starts the
// sweep and shuts it down when the context is cancelled.
func (r *Registry) Run(ctx context.Context) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- r.Start(ctx)
		}()

		select {
		case <-ctx.Done():
			_ = r.Stop()
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

// sweep removes cache entries whose recorded lifetime has lapsed.
func (r *Registry) sweep(ctx context.Context) {
	keys, err := r.cache.Keys(ctx, keyPrefix+"*")
	if err != nil {
		r.logger.WarnContext(ctx, "revocation sweep enumeration failed", slog.Any("error", err))
		return
	}

	now := time.Now()
	removed := 0
	for _, key := range keys {
		value, found, err := r.cache.Get(ctx, key)
		if err != nil || !found {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(value, &entry); err != nil {
			// Corrupt entries stay in place: they still read as revoked.
			continue
		}

		if entry.TTL > 0 && now.After(entry.BlacklistedAt.Add(entry.TTL)) {
			if err := r.cache.Delete(ctx, key); err != nil {
				r.logger.WarnContext(ctx, "revocation sweep delete failed",
					slog.String("key", key),
					slog.Any("error", err))
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		r.logger.InfoContext(ctx, "revocation sweep completed", slog.Int("removed", removed))
	}
}
