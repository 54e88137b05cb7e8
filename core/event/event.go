package event

import (
	"time"

	"github.com/google/uuid"
)

// Event wraps a domain payload with delivery metadata.
type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Payload   Payload   `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// Payload is a domain event body. Implementations return their wire name,
// which downstream consumers (webhooks, notification fan-out, audit) use
// for routing.
type Payload interface {
	EventName() string
}

// New wraps a payload into an Event with a generated ID and timestamp.
func New(payload Payload) Event {
	return Event{
		ID:        uuid.New().String(),
		Name:      payload.EventName(),
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

// Event names consumed by collaborator layers.
const (
	NameSessionCreated     = "session.created"
	NameSessionRevoked     = "session.revoked"
	NameSessionBulkRevoked = "session.bulk_revoked"

	NameBruteForceDetected       = "threat_detection.brute_force_detected"
	NameImpossibleTravelDetected = "threat_detection.impossible_travel_detected"
	NameAccountTakeoverDetected  = "threat_detection.account_takeover_detected"

	NameTokenFamilyCompromised = "rotation.family_compromised"
)

// SessionCreated is emitted after a session row is persisted.
type SessionCreated struct {
	SessionID string    `json:"session_id"`
	UserID    uuid.UUID `json:"user_id"`
	IP        string    `json:"ip"`
	Device    string    `json:"device"`
}

func (SessionCreated) EventName() string { return NameSessionCreated }

// SessionRevoked is emitted after a single session transitions to revoked.
type SessionRevoked struct {
	SessionID string    `json:"session_id"`
	UserID    uuid.UUID `json:"user_id"`
	Reason    string    `json:"reason"`
	RevokedBy string    `json:"revoked_by,omitempty"`
}

func (SessionRevoked) EventName() string { return NameSessionRevoked }

// SessionBulkRevoked is emitted once per RevokeAll call, not per session.
type SessionBulkRevoked struct {
	UserID   uuid.UUID `json:"user_id"`
	Reason   string    `json:"reason"`
	Count    int       `json:"count"`
	ExceptID string    `json:"except_id,omitempty"`
}

func (SessionBulkRevoked) EventName() string { return NameSessionBulkRevoked }

// BruteForceDetected is emitted when an attempt window crosses the
// lockout threshold.
type BruteForceDetected struct {
	Identifier      string        `json:"identifier"`
	IP              string        `json:"ip"`
	AttemptType     string        `json:"attempt_type"`
	Attempts        int           `json:"attempts"`
	LockoutDuration time.Duration `json:"lockout_duration"`
	ViolationCount  int           `json:"violation_count"`
}

func (BruteForceDetected) EventName() string { return NameBruteForceDetected }

// ImpossibleTravelDetected is emitted when two logins require an
// implausible travel speed.
type ImpossibleTravelDetected struct {
	UserID     uuid.UUID     `json:"user_id"`
	DistanceKm float64       `json:"distance_km"`
	Elapsed    time.Duration `json:"elapsed"`
	SpeedKmh   float64       `json:"speed_kmh"`
	FromIP     string        `json:"from_ip"`
	ToIP       string        `json:"to_ip"`
}

func (ImpossibleTravelDetected) EventName() string { return NameImpossibleTravelDetected }

// AccountTakeoverDetected is emitted when the risk score crosses the
// takeover threshold.
type AccountTakeoverDetected struct {
	UserID    uuid.UUID `json:"user_id"`
	Score     int       `json:"score"`
	Signals   []string  `json:"signals"`
	Suspended bool      `json:"suspended"`
}

func (AccountTakeoverDetected) EventName() string { return NameAccountTakeoverDetected }

// TokenFamilyCompromised is emitted when a superseded refresh identifier
// is replayed and the whole family is cascaded.
type TokenFamilyCompromised struct {
	SessionID      string    `json:"session_id"`
	UserID         uuid.UUID `json:"user_id"`
	PresentedID    string    `json:"presented_id"`
	RevokedMembers int       `json:"revoked_members"`
}

func (TokenFamilyCompromised) EventName() string { return NameTokenFamilyCompromised }
