// Package jti mints opaque token identifiers.
//
// An identifier (JTI) is a cryptographically random 32-byte value encoded
// as a base64 URL-safe string without padding. Identifiers carry no
// embedded claims; they exist only to track, rotate, and revoke tokens
// without decoding the tokens themselves.
//
// # Usage
//
//	id, err := jti.New()
//	if err != nil {
//		// crypto/rand failure, treat as fatal
//	}
//
// The token encoding that wraps an identifier (signature algorithm, claims
// schema) is the caller's concern and out of scope for this package.
package jti
