package threat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/core/event"
	"github.com/dmitrymomot/authkit/core/fingerprint"
	"github.com/dmitrymomot/authkit/core/threat"
)

// fakeResponder records suspension calls.
type fakeResponder struct {
	suspended []uuid.UUID
	err       error
}

func (r *fakeResponder) Suspend(ctx context.Context, userID uuid.UUID, reason string) error {
	if r.err != nil {
		return r.err
	}
	r.suspended = append(r.suspended, userID)
	return nil
}

func deviceFP(tag string) fingerprint.DeviceFingerprint {
	return fingerprint.DeviceFingerprint{StableHash: "v1:" + tag}
}

// knownHistory returns three logins from the same device, spread over the
// past day at hours close to the current login's, so only the sub-check
// under test fires.
func knownHistory(userID uuid.UUID, at time.Time, fp fingerprint.DeviceFingerprint) []threat.LoginRecord {
	return []threat.LoginRecord{
		{UserID: userID, IP: "203.0.113.1", Fingerprint: fp, At: at.Add(-2 * time.Hour)},
		{UserID: userID, IP: "203.0.113.1", Fingerprint: fp, At: at.Add(-5 * time.Hour)},
		{UserID: userID, IP: "203.0.113.1", Fingerprint: fp, At: at.Add(-23 * time.Hour)},
	}
}

func TestTakeoverScorer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	userID := uuid.New()
	at := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	travel := threat.NewTravelDetector(nil, nil)

	t.Run("quiet history scores zero", func(t *testing.T) {
		t.Parallel()

		fp := deviceFP("known")
		history := &fakeHistory{records: knownHistory(userID, at, fp)}
		scorer := threat.NewTakeoverScorer(history, travel)

		current := threat.LoginRecord{UserID: userID, IP: "203.0.113.1", Fingerprint: fp, At: at}
		assessment, err := scorer.Score(ctx, userID, current)
		require.NoError(t, err)
		assert.Zero(t, assessment.Score)
		assert.False(t, assessment.IsTakeover)
		assert.Empty(t, assessment.Signals)
	})

	t.Run("unseen device is medium and crosses the threshold", func(t *testing.T) {
		t.Parallel()

		history := &fakeHistory{records: knownHistory(userID, at, deviceFP("known"))}
		scorer := threat.NewTakeoverScorer(history, travel)

		current := threat.LoginRecord{UserID: userID, IP: "203.0.113.1", Fingerprint: deviceFP("fresh"), At: at}
		assessment, err := scorer.Score(ctx, userID, current)
		require.NoError(t, err)
		assert.Equal(t, 3, assessment.Score)
		assert.True(t, assessment.IsTakeover)
		require.Len(t, assessment.Signals, 1)
		assert.Equal(t, "device_change", assessment.Signals[0].Type)
		assert.Equal(t, threat.SeverityMedium, assessment.Signals[0].Severity)
	})

	t.Run("unseen device escalates with three distinct priors", func(t *testing.T) {
		t.Parallel()

		history := &fakeHistory{records: []threat.LoginRecord{
			{UserID: userID, Fingerprint: deviceFP("a"), At: at.Add(-2 * time.Hour)},
			{UserID: userID, Fingerprint: deviceFP("b"), At: at.Add(-5 * time.Hour)},
			{UserID: userID, Fingerprint: deviceFP("c"), At: at.Add(-23 * time.Hour)},
		}}
		scorer := threat.NewTakeoverScorer(history, travel)

		current := threat.LoginRecord{UserID: userID, Fingerprint: deviceFP("fresh"), At: at}
		assessment, err := scorer.Score(ctx, userID, current)
		require.NoError(t, err)
		require.Len(t, assessment.Signals, 1)
		assert.Equal(t, threat.SeverityHigh, assessment.Signals[0].Severity)
		assert.Equal(t, 5, assessment.Score)
	})

	t.Run("impossible travel is high", func(t *testing.T) {
		t.Parallel()

		fp := deviceFP("known")
		history := &fakeHistory{records: []threat.LoginRecord{
			{UserID: userID, IP: "203.0.113.1", Fingerprint: fp, Location: &sanFrancisco, At: at.Add(-2 * time.Hour)},
			{UserID: userID, IP: "203.0.113.1", Fingerprint: fp, Location: &sanFrancisco, At: at.Add(-5 * time.Hour)},
			{UserID: userID, IP: "203.0.113.1", Fingerprint: fp, Location: &sanFrancisco, At: at.Add(-23 * time.Hour)},
		}}
		scorer := threat.NewTakeoverScorer(history, travel)

		current := threat.LoginRecord{UserID: userID, IP: "198.51.100.1", Fingerprint: fp, Location: &newYork, At: at}
		assessment, err := scorer.Score(ctx, userID, current)
		require.NoError(t, err)
		require.Len(t, assessment.Signals, 1)
		assert.Equal(t, "suspicious_location", assessment.Signals[0].Type)
		assert.Equal(t, 5, assessment.Score)
	})

	t.Run("rapid logins are high", func(t *testing.T) {
		t.Parallel()

		fp := deviceFP("known")
		history := &fakeHistory{records: []threat.LoginRecord{
			{UserID: userID, Fingerprint: fp, At: at.Add(-time.Minute)},
			{UserID: userID, Fingerprint: fp, At: at.Add(-3 * time.Minute)},
			{UserID: userID, Fingerprint: fp, At: at.Add(-23 * time.Hour)},
		}}
		scorer := threat.NewTakeoverScorer(history, travel)

		current := threat.LoginRecord{UserID: userID, Fingerprint: fp, At: at}
		assessment, err := scorer.Score(ctx, userID, current)
		require.NoError(t, err)
		require.Len(t, assessment.Signals, 1)
		assert.Equal(t, "rapid_logins", assessment.Signals[0].Type)
	})

	t.Run("unusual hour needs enough history", func(t *testing.T) {
		t.Parallel()

		fp := deviceFP("known")
		// Two priors only: the hour rule must stay silent.
		history := &fakeHistory{records: []threat.LoginRecord{
			{UserID: userID, Fingerprint: fp, At: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
			{UserID: userID, Fingerprint: fp, At: time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)},
		}}
		scorer := threat.NewTakeoverScorer(history, travel,
			threat.WithScoreWindow(36*time.Hour))

		current := threat.LoginRecord{UserID: userID, Fingerprint: fp, At: time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)}
		assessment, err := scorer.Score(ctx, userID, current)
		require.NoError(t, err)
		assert.Empty(t, assessment.Signals)
	})

	t.Run("unusual hour fires with three priors", func(t *testing.T) {
		t.Parallel()

		fp := deviceFP("known")
		// Average hour 9; a 23:00 login deviates by 14 hours.
		history := &fakeHistory{records: []threat.LoginRecord{
			{UserID: userID, Fingerprint: fp, At: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
			{UserID: userID, Fingerprint: fp, At: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)},
			{UserID: userID, Fingerprint: fp, At: time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)},
		}}
		scorer := threat.NewTakeoverScorer(history, travel,
			threat.WithScoreWindow(48*time.Hour))

		current := threat.LoginRecord{UserID: userID, Fingerprint: fp, At: time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)}
		assessment, err := scorer.Score(ctx, userID, current)
		require.NoError(t, err)
		require.Len(t, assessment.Signals, 1)
		assert.Equal(t, "unusual_hour", assessment.Signals[0].Type)
		assert.Equal(t, threat.SeverityHigh, assessment.Signals[0].Severity)
	})

	t.Run("score is capped at ten", func(t *testing.T) {
		t.Parallel()

		// Impossible travel (5), unseen device among three distinct
		// priors (5), unusual hour (3): raw 13, capped.
		late := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
		history := &fakeHistory{records: []threat.LoginRecord{
			{UserID: userID, IP: "203.0.113.1", Fingerprint: deviceFP("a"), Location: &sanFrancisco, At: late.Add(-70 * time.Minute)},
			{UserID: userID, IP: "203.0.113.1", Fingerprint: deviceFP("b"), Location: &sanFrancisco, At: late.Add(-80 * time.Minute)},
			{UserID: userID, IP: "203.0.113.1", Fingerprint: deviceFP("c"), Location: &sanFrancisco, At: time.Date(2026, 3, 9, 3, 0, 0, 0, time.UTC)},
		}}
		scorer := threat.NewTakeoverScorer(history, travel,
			threat.WithScoreWindow(48*time.Hour))

		current := threat.LoginRecord{UserID: userID, IP: "198.51.100.1", Fingerprint: deviceFP("fresh"), Location: &newYork, At: late}
		assessment, err := scorer.Score(ctx, userID, current)
		require.NoError(t, err)
		assert.Equal(t, 10, assessment.Score)
		assert.True(t, assessment.IsTakeover)
	})

	t.Run("emits takeover event with signal types", func(t *testing.T) {
		t.Parallel()

		history := &fakeHistory{records: knownHistory(userID, at, deviceFP("known"))}
		emitter := &captureEmitter{}
		scorer := threat.NewTakeoverScorer(history, travel,
			threat.WithTakeoverEvents(emitter))

		current := threat.LoginRecord{UserID: userID, IP: "203.0.113.1", Fingerprint: deviceFP("fresh"), At: at}
		_, err := scorer.Score(ctx, userID, current)
		require.NoError(t, err)

		payloads := emitter.named(event.NameAccountTakeoverDetected)
		require.Len(t, payloads, 1)
		detected := payloads[0].(event.AccountTakeoverDetected)
		assert.Equal(t, userID, detected.UserID)
		assert.Equal(t, []string{"device_change"}, detected.Signals)
		assert.False(t, detected.Suspended)
	})

	t.Run("automated response suspends at high scores only", func(t *testing.T) {
		t.Parallel()

		responder := &fakeResponder{}
		history := &fakeHistory{records: knownHistory(userID, at, deviceFP("known"))}
		scorer := threat.NewTakeoverScorer(history, travel,
			threat.WithAutomatedResponse(responder, 8))

		// Score 3: flagged but below the suspension threshold.
		current := threat.LoginRecord{UserID: userID, IP: "203.0.113.1", Fingerprint: deviceFP("fresh"), At: at}
		assessment, err := scorer.Score(ctx, userID, current)
		require.NoError(t, err)
		assert.True(t, assessment.IsTakeover)
		assert.False(t, assessment.Suspended)
		assert.Empty(t, responder.suspended)
	})

	t.Run("automated response fires at the suspension threshold", func(t *testing.T) {
		t.Parallel()

		responder := &fakeResponder{}
		history := &fakeHistory{records: []threat.LoginRecord{
			{UserID: userID, IP: "203.0.113.1", Fingerprint: deviceFP("a"), Location: &sanFrancisco, At: at.Add(-2 * time.Minute)},
			{UserID: userID, IP: "203.0.113.1", Fingerprint: deviceFP("b"), Location: &sanFrancisco, At: at.Add(-4 * time.Minute)},
			{UserID: userID, IP: "203.0.113.1", Fingerprint: deviceFP("c"), Location: &sanFrancisco, At: at.Add(-90 * time.Minute)},
		}}
		emitter := &captureEmitter{}
		scorer := threat.NewTakeoverScorer(history, travel,
			threat.WithAutomatedResponse(responder, 8),
			threat.WithTakeoverEvents(emitter))

		current := threat.LoginRecord{UserID: userID, IP: "198.51.100.1", Fingerprint: deviceFP("fresh"), Location: &newYork, At: at}
		assessment, err := scorer.Score(ctx, userID, current)
		require.NoError(t, err)
		assert.True(t, assessment.Suspended)
		assert.Equal(t, []uuid.UUID{userID}, responder.suspended)

		payloads := emitter.named(event.NameAccountTakeoverDetected)
		require.Len(t, payloads, 1)
		assert.True(t, payloads[0].(event.AccountTakeoverDetected).Suspended)
	})

	t.Run("suspension failure surfaces to the caller", func(t *testing.T) {
		t.Parallel()

		responder := &fakeResponder{err: errors.New("user service down")}
		history := &fakeHistory{records: []threat.LoginRecord{
			{UserID: userID, IP: "203.0.113.1", Fingerprint: deviceFP("a"), Location: &sanFrancisco, At: at.Add(-2 * time.Minute)},
			{UserID: userID, IP: "203.0.113.1", Fingerprint: deviceFP("b"), Location: &sanFrancisco, At: at.Add(-4 * time.Minute)},
			{UserID: userID, IP: "203.0.113.1", Fingerprint: deviceFP("c"), Location: &sanFrancisco, At: at.Add(-90 * time.Minute)},
		}}
		emitter := &captureEmitter{}
		scorer := threat.NewTakeoverScorer(history, travel,
			threat.WithAutomatedResponse(responder, 8),
			threat.WithTakeoverEvents(emitter))

		current := threat.LoginRecord{UserID: userID, IP: "198.51.100.1", Fingerprint: deviceFP("fresh"), Location: &newYork, At: at}
		assessment, err := scorer.Score(ctx, userID, current)
		require.Error(t, err)
		assert.False(t, assessment.Suspended)
		assert.True(t, assessment.IsTakeover)

		// The detection still reaches alerting even though the
		// automated response did not land.
		payloads := emitter.named(event.NameAccountTakeoverDetected)
		require.Len(t, payloads, 1)
		assert.False(t, payloads[0].(event.AccountTakeoverDetected).Suspended)
	})

	t.Run("history outage surfaces error", func(t *testing.T) {
		t.Parallel()

		history := &fakeHistory{err: errors.New("connection refused")}
		scorer := threat.NewTakeoverScorer(history, travel)

		_, err := scorer.Score(ctx, userID, threat.LoginRecord{UserID: userID, At: at})
		assert.ErrorIs(t, err, threat.ErrHistoryUnavailable)
	})
}
