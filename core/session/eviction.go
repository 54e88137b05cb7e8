package session

import (
	"sort"
	"time"

	"github.com/dmitrymomot/authkit/core/fingerprint"
)

// Eviction scoring is biased to keep sessions that look like the device
// the user is logging in from right now: device, browser, OS, and IP
// matches dominate the score, age and idle time add smaller capped
// amounts, and the lowest scorers are revoked first. The sessions most
// at risk are recent logins from unfamiliar devices, not long-established
// ones. This bounds concurrency without logging the user out of the
// device in their hand.

const (
	ageWeight  = 10
	ageCap     = 1000
	idleWeight = 20
	idleCap    = 2000

	stableMatchBonus  = 5000
	browserMatchBonus = 1000
	osMatchBonus      = 500
	ipMatchBonus      = 2000
)

// ScoreBreakdown itemizes an eviction score for logging and diagnostics.
type ScoreBreakdown struct {
	Age     int
	Idle    int
	Device  int
	Browser int
	OS      int
	Network int
}

// EvictionScore rates how much a candidate session is worth keeping when
// the incoming session pushes the user over the concurrency cap. Higher
// is safer from eviction.
func EvictionScore(candidate, incoming Session, now time.Time) (int, ScoreBreakdown) {
	var b ScoreBreakdown

	b.Age = int(now.Sub(candidate.CreatedAt).Hours()) * ageWeight
	if b.Age > ageCap {
		b.Age = ageCap
	}
	if b.Age < 0 {
		b.Age = 0
	}

	b.Idle = int(now.Sub(candidate.LastUsedAt).Hours()) * idleWeight
	if b.Idle > idleCap {
		b.Idle = idleCap
	}
	if b.Idle < 0 {
		b.Idle = 0
	}

	if fingerprint.Match(candidate.Fingerprint, incoming.Fingerprint) {
		b.Device = stableMatchBonus
	}
	if fingerprint.SameBrowser(candidate.Fingerprint, incoming.Fingerprint) {
		b.Browser = browserMatchBonus
	}
	if fingerprint.SameOS(candidate.Fingerprint, incoming.Fingerprint) {
		b.OS = osMatchBonus
	}
	if candidate.IP != "" && candidate.IP == incoming.IP {
		b.Network = ipMatchBonus
	}

	return b.Age + b.Idle + b.Device + b.Browser + b.OS + b.Network, b
}

// selectEvictions picks the lowest-scoring active sessions to revoke so
// that, with the incoming session added, the user stays within limit.
// Returns nil when there is already room.
func selectEvictions(active []Session, incoming Session, limit int, now time.Time) []Session {
	if len(active) < limit {
		return nil
	}

	type scored struct {
		sess  Session
		score int
	}

	candidates := make([]scored, len(active))
	for i, sess := range active {
		score, _ := EvictionScore(sess, incoming, now)
		candidates[i] = scored{sess: sess, score: score}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score < candidates[j].score
	})

	// Room for the incoming session: shrink to limit-1.
	excess := len(active) - (limit - 1)
	evict := make([]Session, 0, excess)
	for i := range excess {
		evict = append(evict, candidates[i].sess)
	}
	return evict
}
