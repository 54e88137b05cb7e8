package threat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authkit/core/event"
	"github.com/dmitrymomot/authkit/pkg/geodist"
)

// LoginPoint is one geolocated login observation.
type LoginPoint struct {
	IP       string
	Location *geodist.Point // nil when unknown
	At       time.Time
}

// TravelResult is the outcome of comparing two consecutive logins.
// Distance, elapsed time, speed, and both endpoints are included for the
// audit trail even when nothing is flagged.
type TravelResult struct {
	// Evaluated is false when the pair was skipped: elapsed time below
	// the minimum or either location unknown.
	Evaluated  bool
	Impossible bool
	DistanceKm float64
	Elapsed    time.Duration
	SpeedKmh   float64
	From       LoginPoint
	To         LoginPoint
}

// TravelDetector flags login pairs whose required travel speed exceeds a
// plausible maximum.
type TravelDetector struct {
	history    HistoryStore
	locator    Locator
	events     event.Emitter
	logger     *slog.Logger
	minElapsed time.Duration
	maxSpeed   float64
}

// TravelOption configures a TravelDetector.
type TravelOption func(*TravelDetector)

// WithMaxSpeed sets the plausibility threshold in km/h.
func WithMaxSpeed(kmh float64) TravelOption {
	return func(d *TravelDetector) {
		if kmh > 0 {
			d.maxSpeed = kmh
		}
	}
}

// WithMinElapsed sets the minimum elapsed time between logins for a pair
// to be evaluated.
func WithMinElapsed(min time.Duration) TravelOption {
	return func(d *TravelDetector) {
		if min > 0 {
			d.minElapsed = min
		}
	}
}

// WithTravelEvents sets the emitter for impossible-travel events.
func WithTravelEvents(emitter event.Emitter) TravelOption {
	return func(d *TravelDetector) {
		if emitter != nil {
			d.events = emitter
		}
	}
}

// WithTravelLogger sets the logger.
func WithTravelLogger(logger *slog.Logger) TravelOption {
	return func(d *TravelDetector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewTravelDetector creates a detector over the given history source and
// IP locator. Defaults: 500 km/h maximum speed, 1 hour minimum elapsed.
func NewTravelDetector(history HistoryStore, locator Locator, opts ...TravelOption) *TravelDetector {
	d := &TravelDetector{
		history:    history,
		locator:    locator,
		events:     event.Discard,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		minElapsed: time.Hour,
		maxSpeed:   500,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Evaluate compares two logins. Pure function: it never touches the
// history store or locator.
//
// Pairs closer than the minimum elapsed time are skipped as insufficient
// signal, which knowingly under-detects travel that is impossible within
// a very short window; the behavior is kept as-is.
func (d *TravelDetector) Evaluate(prev, next LoginPoint) TravelResult {
	result := TravelResult{From: prev, To: next}

	if prev.Location == nil || next.Location == nil {
		return result
	}

	elapsed := next.At.Sub(prev.At)
	if elapsed < d.minElapsed {
		return result
	}

	result.Evaluated = true
	result.DistanceKm = geodist.Haversine(*prev.Location, *next.Location)
	result.Elapsed = elapsed
	result.SpeedKmh = result.DistanceKm / elapsed.Hours()
	result.Impossible = result.SpeedKmh > d.maxSpeed

	return result
}

// Check evaluates a new login against the user's most recent prior login,
// resolving the new login's location when it is not already set. An
// impossible pair emits threat_detection.impossible_travel_detected.
func (d *TravelDetector) Check(ctx context.Context, userID uuid.UUID, login LoginPoint) (TravelResult, error) {
	if login.Location == nil {
		loc, err := d.locator.Locate(ctx, login.IP)
		if err != nil {
			// Location resolution is best-effort; absence disables
			// evaluation for this event.
			d.logger.WarnContext(ctx, "ip location resolution failed",
				slog.String("ip", login.IP),
				slog.Any("error", err))
		} else {
			login.Location = loc
		}
	}

	records, err := d.history.RecentLogins(ctx, userID, login.At.Add(-48*time.Hour))
	if err != nil {
		return TravelResult{}, errors.Join(ErrHistoryUnavailable, err)
	}

	prev, ok := lastBefore(records, login.At)
	if !ok {
		return TravelResult{To: login}, nil
	}

	result := d.Evaluate(prev, login)

	if result.Impossible {
		if err := d.events.Publish(ctx, event.ImpossibleTravelDetected{
			UserID:     userID,
			DistanceKm: result.DistanceKm,
			Elapsed:    result.Elapsed,
			SpeedKmh:   result.SpeedKmh,
			FromIP:     prev.IP,
			ToIP:       login.IP,
		}); err != nil {
			d.logger.WarnContext(ctx, "impossible travel event emission failed", slog.Any("error", err))
		}
	}

	return result, nil
}

// lastBefore returns the newest record strictly older than at.
// Records are expected newest first.
func lastBefore(records []LoginRecord, at time.Time) (LoginPoint, bool) {
	for _, record := range records {
		if record.At.Before(at) {
			return LoginPoint{IP: record.IP, Location: record.Location, At: record.At}, true
		}
	}
	return LoginPoint{}, false
}
