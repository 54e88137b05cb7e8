package session_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/core/session"
)

func TestEvictionScore(t *testing.T) {
	t.Parallel()

	now := time.Now()
	incoming := session.Session{
		Fingerprint: chromeOnWindows(),
		IP:          "203.0.113.10",
	}

	t.Run("component weights", func(t *testing.T) {
		t.Parallel()

		candidate := session.Session{
			Fingerprint: chromeOnWindows(),
			IP:          "203.0.113.10",
			CreatedAt:   now.Add(-3 * time.Hour),
			LastUsedAt:  now.Add(-2 * time.Hour),
		}

		score, breakdown := session.EvictionScore(candidate, incoming, now)
		assert.Equal(t, 30, breakdown.Age)
		assert.Equal(t, 40, breakdown.Idle)
		assert.Equal(t, 5000, breakdown.Device)
		assert.Equal(t, 1000, breakdown.Browser)
		assert.Equal(t, 500, breakdown.OS)
		assert.Equal(t, 2000, breakdown.Network)
		assert.Equal(t, 30+40+5000+1000+500+2000, score)
	})

	t.Run("age and idle are capped", func(t *testing.T) {
		t.Parallel()

		candidate := session.Session{
			Fingerprint: safariOnIPhone(),
			IP:          "198.51.100.20",
			CreatedAt:   now.Add(-365 * 24 * time.Hour),
			LastUsedAt:  now.Add(-365 * 24 * time.Hour),
		}

		score, breakdown := session.EvictionScore(candidate, incoming, now)
		assert.Equal(t, 1000, breakdown.Age)
		assert.Equal(t, 2000, breakdown.Idle)
		assert.Equal(t, 3000, score)
	})

	t.Run("matching device always outranks a non-matching one", func(t *testing.T) {
		t.Parallel()

		// The non-matching candidate gets the maximum possible
		// recency-based score; the matching one the minimum. The device
		// bonus alone must keep the matching session safer.
		matching := session.Session{
			Fingerprint: chromeOnWindows(),
			CreatedAt:   now.Add(-365 * 24 * time.Hour),
			LastUsedAt:  now.Add(-365 * 24 * time.Hour),
		}
		other := session.Session{
			Fingerprint: safariOnIPhone(),
			IP:          "203.0.113.10", // even on the same network
			CreatedAt:   now,
			LastUsedAt:  now,
		}

		matchScore, _ := session.EvictionScore(matching, incoming, now)
		otherScore, _ := session.EvictionScore(other, incoming, now)
		assert.Greater(t, matchScore, otherScore)
	})

	t.Run("empty fingerprints never count as a match", func(t *testing.T) {
		t.Parallel()

		blank := session.Session{CreatedAt: now, LastUsedAt: now}
		score, breakdown := session.EvictionScore(blank, session.Session{}, now)
		assert.Zero(t, breakdown.Device)
		assert.Zero(t, score)
	})
}

// Invariant behind the scoring: with the cap full of a mix of devices,
// a login from a known device never evicts that device's own session
// while a foreign one remains, even when the known session is the
// oldest and idlest of the lot.
func TestEvictionKeepsCurrentDevice(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	store := newFakeStore()
	manager := session.NewManager(store, session.WithSessionLimit(2))
	userID := uuid.New()

	now := time.Now()
	sameDevice := &session.Session{
		ID:          "same-device",
		RefreshID:   "refresh-same-device",
		UserID:      userID,
		Fingerprint: chromeOnWindows(),
		IP:          "192.0.2.99", // different network than the incoming login
		CreatedAt:   now.Add(-90 * 24 * time.Hour),
		LastUsedAt:  now.Add(-60 * 24 * time.Hour),
		ExpiresAt:   now.Add(24 * time.Hour),
	}
	foreign := &session.Session{
		ID:          "foreign",
		RefreshID:   "refresh-foreign",
		UserID:      userID,
		Fingerprint: safariOnIPhone(),
		IP:          "198.51.100.20",
		CreatedAt:   now.Add(-time.Minute),
		LastUsedAt:  now.Add(-time.Minute),
		ExpiresAt:   now.Add(24 * time.Hour),
	}
	require.NoError(t, store.Create(ctx, sameDevice))
	require.NoError(t, store.Create(ctx, foreign))

	foreign2 := *foreign
	foreign2.ID = "foreign-2"
	foreign2.RefreshID = "refresh-foreign-2"
	require.NoError(t, store.Create(ctx, &foreign2))

	_, err := manager.Create(ctx, createParams(userID, "incoming"))
	require.NoError(t, err)

	_, err = manager.GetByID(ctx, "same-device")
	assert.NoError(t, err, "the current device's session must survive")

	var evicted int
	for _, id := range []string{"foreign", "foreign-2"} {
		if _, err := manager.GetByID(ctx, id); err != nil {
			evicted++
		}
	}
	assert.Equal(t, 2, evicted, "both foreign sessions go before the matching one")
}
