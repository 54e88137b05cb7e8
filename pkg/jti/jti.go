package jti

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// encodedLen is the length of a base64url encoding of 32 random bytes
// without padding.
const encodedLen = 43

// ErrGeneration is returned when the system entropy source fails.
var ErrGeneration = errors.New("failed to generate identifier")

// New creates a cryptographically secure random identifier using 32 bytes
// (256 bits) encoded as a base64 URL-safe string without padding.
func New() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// MustNew is like New but panics when the entropy source fails. Useful in
// tests and initialization paths where a failing entropy source is fatal
// anyway.
func MustNew() string {
	s, err := New()
	if err != nil {
		panic(err)
	}
	return s
}

// IsWellFormed reports whether s has the shape of an identifier produced
// by New. It does not prove the identifier was ever issued.
func IsWellFormed(s string) bool {
	if len(s) != encodedLen {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil
}
