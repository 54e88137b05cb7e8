// Package fingerprint derives device fingerprints from connection metadata.
//
// Every fingerprint carries two hashes. The stable hash covers coarse,
// slowly-changing attributes (browser family and major version, OS family
// and major version, device type, primary language) and survives benign
// client updates such as a browser minor release. The volatile hash covers
// the exact User-Agent and Accept headers and changes whenever anything
// about the client changes. Session eviction keys off the stable hash;
// anomaly correlation may use either.
//
// Generation is a pure function: it has no side effects, never fails, and
// classifies unparseable input into "unknown" buckets. Identical coarse
// attributes always produce an identical stable hash, independent of
// header ordering, because components are combined in a fixed order.
//
// # Hash Format
//
// Both hashes are version-prefixed: "v1:" followed by 32 hex characters
// (a 16-byte truncation of SHA-256). Truncation halves storage while
// keeping collision probability negligible for fingerprinting purposes.
//
// # Usage
//
//	fp := fingerprint.Generate(fingerprint.Metadata{
//		UserAgent:      r.UserAgent(),
//		IP:             clientip.GetIP(r),
//		AcceptLanguage: r.Header.Get("Accept-Language"),
//	})
//
//	if fingerprint.Match(fp, session.Fingerprint) {
//		// same device family
//	}
//
// FromRequest is a convenience wrapper that pulls the metadata out of an
// *http.Request directly.
package fingerprint
