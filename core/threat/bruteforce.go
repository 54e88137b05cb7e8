package threat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/dmitrymomot/authkit/core/event"
)

// AttemptKey identifies one brute-force tracking bucket. Separate IPs and
// attempt types accumulate independently so a distributed attack cannot
// lock a victim out of unrelated flows.
type AttemptKey struct {
	Identifier  string
	IP          string
	AttemptType string
}

func (k AttemptKey) cacheKey(kind string) string {
	// Pipe-delimited: IPs contain colons.
	return "bruteforce:" + kind + ":" + k.Identifier + "|" + k.IP + "|" + k.AttemptType
}

// BruteForceResult reports the outcome of recording one attempt.
type BruteForceResult struct {
	IsBruteForce    bool
	Attempts        int
	LockoutDuration time.Duration
	LockedUntil     time.Time
	ViolationCount  int
}

// lockoutRecord is the cached Locked state for a key.
type lockoutRecord struct {
	LockedUntil    time.Time `json:"locked_until"`
	ViolationCount int       `json:"violation_count"`
}

// BruteForceDetector tracks failed attempts per (identifier, IP,
// attempt type) key in a sliding window and locks the key out with
// progressive backoff once the threshold is crossed.
type BruteForceDetector struct {
	cache  Cache
	events event.Emitter
	logger *slog.Logger
	window time.Duration
	max    int
	base   time.Duration
	vioTTL time.Duration
	maxExp int
}

// BruteForceOption configures a BruteForceDetector.
type BruteForceOption func(*BruteForceDetector)

// WithAttemptWindow sets the sliding window attempts are counted over.
func WithAttemptWindow(window time.Duration) BruteForceOption {
	return func(d *BruteForceDetector) {
		if window > 0 {
			d.window = window
		}
	}
}

// WithMaxAttempts sets the attempt count that triggers a lockout.
func WithMaxAttempts(max int) BruteForceOption {
	return func(d *BruteForceDetector) {
		if max > 0 {
			d.max = max
		}
	}
}

// WithBaseLockout sets the first-violation lockout duration.
func WithBaseLockout(base time.Duration) BruteForceOption {
	return func(d *BruteForceDetector) {
		if base > 0 {
			d.base = base
		}
	}
}

// WithViolationTTL sets how long the persisted violation counter drives
// progressive lockouts.
func WithViolationTTL(ttl time.Duration) BruteForceOption {
	return func(d *BruteForceDetector) {
		if ttl > 0 {
			d.vioTTL = ttl
		}
	}
}

// WithBruteForceEvents sets the emitter for lockout events.
func WithBruteForceEvents(emitter event.Emitter) BruteForceOption {
	return func(d *BruteForceDetector) {
		if emitter != nil {
			d.events = emitter
		}
	}
}

// WithBruteForceLogger sets the logger.
func WithBruteForceLogger(logger *slog.Logger) BruteForceOption {
	return func(d *BruteForceDetector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewBruteForceDetector creates a detector with the given shared cache.
// Defaults: 15 minute window, 5 attempts, 15 minute base lockout, 7 day
// violation retention, backoff capped at 32x.
func NewBruteForceDetector(cache Cache, opts ...BruteForceOption) *BruteForceDetector {
	d := &BruteForceDetector{
		cache:  cache,
		events: event.Discard,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		window: 15 * time.Minute,
		max:    5,
		base:   15 * time.Minute,
		vioTTL: 7 * 24 * time.Hour,
		maxExp: 5,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// RecordAttempt registers a failed attempt for the key. When the pruned
// window already holds the maximum, the key transitions to Locked with
// lockoutDuration = base * 2^min(violations, 5) and the persisted
// violation counter is incremented; otherwise the attempt timestamp is
// appended.
//
// Callers must check IsLockedOut before authenticating; RecordAttempt
// itself does not refuse attempts.
func (d *BruteForceDetector) RecordAttempt(ctx context.Context, key AttemptKey) (BruteForceResult, error) {
	now := time.Now()

	attempts, err := d.loadAttempts(ctx, key)
	if err != nil {
		return BruteForceResult{}, err
	}

	// Prune to the sliding window.
	recent := attempts[:0]
	for _, at := range attempts {
		if now.Sub(at) <= d.window {
			recent = append(recent, at)
		}
	}

	if len(recent) >= d.max {
		return d.lock(ctx, key, len(recent), now)
	}

	recent = append(recent, now)
	if err := d.saveAttempts(ctx, key, recent); err != nil {
		return BruteForceResult{}, err
	}

	return BruteForceResult{Attempts: len(recent)}, nil
}

// IsLockedOut reports whether the key is inside an active lockout window.
// A lapsed lockout is lazily cleared on check.
func (d *BruteForceDetector) IsLockedOut(ctx context.Context, key AttemptKey) (bool, time.Time, error) {
	value, found, err := d.cache.Get(ctx, key.cacheKey("lockout"))
	if err != nil {
		return false, time.Time{}, errors.Join(ErrCacheUnavailable, err)
	}
	if !found {
		return false, time.Time{}, nil
	}

	var record lockoutRecord
	if err := json.Unmarshal(value, &record); err != nil {
		// Corrupt records are cleared rather than trusted.
		_ = d.cache.Delete(ctx, key.cacheKey("lockout"))
		return false, time.Time{}, nil
	}

	if time.Now().After(record.LockedUntil) {
		if err := d.cache.Delete(ctx, key.cacheKey("lockout")); err != nil {
			d.logger.WarnContext(ctx, "lazy lockout clear failed", slog.Any("error", err))
		}
		return false, time.Time{}, nil
	}

	return true, record.LockedUntil, nil
}

// ClearAttempts resets the attempt window for the key, typically after a
// successful authentication. The violation counter is left intact so a
// repeat offender still escalates.
func (d *BruteForceDetector) ClearAttempts(ctx context.Context, key AttemptKey) error {
	if err := d.cache.Delete(ctx, key.cacheKey("attempts")); err != nil {
		return errors.Join(ErrCacheUnavailable, err)
	}
	return nil
}

func (d *BruteForceDetector) lock(ctx context.Context, key AttemptKey, attempts int, now time.Time) (BruteForceResult, error) {
	violations, err := d.loadViolations(ctx, key)
	if err != nil {
		return BruteForceResult{}, err
	}

	exp := violations
	if exp > d.maxExp {
		exp = d.maxExp
	}
	duration := d.base * (1 << exp)
	until := now.Add(duration)

	record, err := json.Marshal(lockoutRecord{
		LockedUntil:    until,
		ViolationCount: violations + 1,
	})
	if err != nil {
		return BruteForceResult{}, err
	}
	if err := d.cache.Set(ctx, key.cacheKey("lockout"), record, duration); err != nil {
		return BruteForceResult{}, errors.Join(ErrCacheUnavailable, err)
	}

	// The counter persists past the lockout to drive progressive backoff.
	if err := d.cache.Set(ctx, key.cacheKey("violations"),
		[]byte(strconv.Itoa(violations+1)), d.vioTTL); err != nil {
		d.logger.WarnContext(ctx, "violation counter update failed",
			slog.String("identifier", key.Identifier),
			slog.Any("error", err))
	}

	if err := d.events.Publish(ctx, event.BruteForceDetected{
		Identifier:      key.Identifier,
		IP:              key.IP,
		AttemptType:     key.AttemptType,
		Attempts:        attempts,
		LockoutDuration: duration,
		ViolationCount:  violations + 1,
	}); err != nil {
		d.logger.WarnContext(ctx, "brute force event emission failed", slog.Any("error", err))
	}

	return BruteForceResult{
		IsBruteForce:    true,
		Attempts:        attempts,
		LockoutDuration: duration,
		LockedUntil:     until,
		ViolationCount:  violations + 1,
	}, nil
}

func (d *BruteForceDetector) loadAttempts(ctx context.Context, key AttemptKey) ([]time.Time, error) {
	value, found, err := d.cache.Get(ctx, key.cacheKey("attempts"))
	if err != nil {
		return nil, errors.Join(ErrCacheUnavailable, err)
	}
	if !found {
		return nil, nil
	}

	var attempts []time.Time
	if err := json.Unmarshal(value, &attempts); err != nil {
		// Start a fresh window over a corrupt one.
		return nil, nil
	}
	return attempts, nil
}

func (d *BruteForceDetector) saveAttempts(ctx context.Context, key AttemptKey, attempts []time.Time) error {
	value, err := json.Marshal(attempts)
	if err != nil {
		return err
	}
	if err := d.cache.Set(ctx, key.cacheKey("attempts"), value, d.window); err != nil {
		return errors.Join(ErrCacheUnavailable, err)
	}
	return nil
}

func (d *BruteForceDetector) loadViolations(ctx context.Context, key AttemptKey) (int, error) {
	value, found, err := d.cache.Get(ctx, key.cacheKey("violations"))
	if err != nil {
		return 0, errors.Join(ErrCacheUnavailable, err)
	}
	if !found {
		return 0, nil
	}

	violations, err := strconv.Atoi(string(value))
	if err != nil || violations < 0 {
		return 0, nil
	}
	return violations, nil
}
