package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/dmitrymomot/authkit/pkg/clientip"
	"github.com/dmitrymomot/authkit/pkg/useragent"
)

const (
	hashVersion = "v1:"
	// hashLen uses 16 bytes (128 bits) for balance between uniqueness and
	// storage efficiency. SHA-256 provides 256 bits, but 128 bits is
	// sufficient for fingerprinting and reduces storage by 50%.
	hashLen = 16
)

// Metadata is the raw connection metadata a fingerprint is derived from.
type Metadata struct {
	UserAgent      string
	IP             string
	AcceptLanguage string
	AcceptEncoding string
	Accept         string
}

// DeviceFingerprint is the derived identity of a client device.
// It is embedded in session records and login history rows; it is not
// persisted independently.
type DeviceFingerprint struct {
	// StableHash covers browser family/major, OS family/major, device type,
	// and primary language. Survives benign client updates.
	StableHash string `json:"stable_hash"`

	// VolatileHash covers the exact User-Agent and Accept headers.
	VolatileHash string `json:"volatile_hash"`

	Browser        string               `json:"browser"`
	BrowserVersion string               `json:"browser_version"`
	OS             string               `json:"os"`
	OSVersion      string               `json:"os_version"`
	DeviceType     useragent.DeviceType `json:"device_type"`
	Language       string               `json:"language"`
}

// Generate derives a fingerprint from connection metadata. It is a pure
// function with no failure modes: unparseable input is classified as
// "unknown" rather than rejected.
func Generate(meta Metadata) DeviceFingerprint {
	fp := DeviceFingerprint{
		Browser:    "unknown",
		OS:         "unknown",
		DeviceType: useragent.DeviceTypeUnknown,
		Language:   primaryLanguage(meta.AcceptLanguage),
	}

	if ua, err := useragent.Parse(meta.UserAgent); err == nil {
		fp.Browser = ua.BrowserName()
		fp.BrowserVersion = ua.BrowserVer()
		fp.OS = ua.OS()
		fp.OSVersion = ua.OSVersion()
		fp.DeviceType = ua.DeviceType()
	}

	// Fixed component order keeps hashes independent of header ordering.
	fp.StableHash = hash(
		fp.Browser,
		useragent.Major(fp.BrowserVersion),
		fp.OS,
		useragent.Major(fp.OSVersion),
		string(fp.DeviceType),
		fp.Language,
	)
	fp.VolatileHash = hash(
		meta.UserAgent,
		meta.AcceptLanguage,
		meta.AcceptEncoding,
		meta.Accept,
	)

	return fp
}

// FromRequest derives a fingerprint directly from an HTTP request.
func FromRequest(r *http.Request) DeviceFingerprint {
	return Generate(Metadata{
		UserAgent:      r.UserAgent(),
		IP:             clientip.GetIP(r),
		AcceptLanguage: r.Header.Get("Accept-Language"),
		AcceptEncoding: r.Header.Get("Accept-Encoding"),
		Accept:         r.Header.Get("Accept"),
	})
}

// Match reports whether two fingerprints identify the same device family,
// comparing stable hashes only.
func Match(a, b DeviceFingerprint) bool {
	return a.StableHash != "" && a.StableHash == b.StableHash
}

// SameBrowser reports whether two fingerprints share a browser family.
func SameBrowser(a, b DeviceFingerprint) bool {
	return a.Browser != "" && a.Browser != "unknown" && a.Browser == b.Browser
}

// SameOS reports whether two fingerprints share an OS family.
func SameOS(a, b DeviceFingerprint) bool {
	return a.OS != "" && a.OS != "unknown" && a.OS == b.OS
}

// hash combines components in order with a pipe delimiter to prevent
// collision attacks where ["ab","c"] and ["a","bc"] would otherwise hash
// identically, then truncates SHA-256 to 16 bytes.
func hash(components ...string) string {
	combined := strings.Join(components, "|")
	sum := sha256.Sum256([]byte(combined))
	return hashVersion + hex.EncodeToString(sum[:hashLen])
}

// primaryLanguage extracts the base language of the first Accept-Language
// entry: "en-US,en;q=0.9" becomes "en". Empty input yields "".
func primaryLanguage(acceptLanguage string) string {
	first := acceptLanguage
	if idx := strings.IndexByte(first, ','); idx != -1 {
		first = first[:idx]
	}
	if idx := strings.IndexByte(first, ';'); idx != -1 {
		first = first[:idx]
	}
	if idx := strings.IndexByte(first, '-'); idx != -1 {
		first = first[:idx]
	}
	return strings.ToLower(strings.TrimSpace(first))
}
