package useragent

import (
	"fmt"
	"strings"
)

// DeviceType classifies the client device derived from the User-Agent.
type DeviceType string

const (
	DeviceTypeDesktop DeviceType = "desktop"
	DeviceTypeMobile  DeviceType = "mobile"
	DeviceTypeTablet  DeviceType = "tablet"
	DeviceTypeBot     DeviceType = "bot"
	DeviceTypeUnknown DeviceType = "unknown"
)

// UserAgent holds the information extracted from a User-Agent string.
type UserAgent struct {
	raw        string
	deviceType DeviceType
	os         string
	osVersion  string
	browser    string
	browserVer string
}

// New constructs a UserAgent from pre-parsed components. Useful as a
// fallback when Parse fails and processing must continue.
func New(raw string, deviceType DeviceType, os, osVersion, browser, browserVer string) UserAgent {
	return UserAgent{
		raw:        raw,
		deviceType: deviceType,
		os:         os,
		osVersion:  osVersion,
		browser:    browser,
		browserVer: browserVer,
	}
}

// Raw returns the original User-Agent string.
func (ua UserAgent) Raw() string { return ua.raw }

// DeviceType returns the classified device type.
func (ua UserAgent) DeviceType() DeviceType { return ua.deviceType }

// OS returns the operating system family, e.g. "windows", "ios".
func (ua UserAgent) OS() string { return ua.os }

// OSVersion returns the operating system version as found, e.g. "10.0".
func (ua UserAgent) OSVersion() string { return ua.osVersion }

// BrowserName returns the browser family, e.g. "chrome", "safari".
func (ua UserAgent) BrowserName() string { return ua.browser }

// BrowserVer returns the browser version as found, e.g. "120.0.6099.71".
func (ua UserAgent) BrowserVer() string { return ua.browserVer }

// IsBot reports whether the client was classified as an automated agent.
func (ua UserAgent) IsBot() bool { return ua.deviceType == DeviceTypeBot }

// IsMobile reports whether the client was classified as a mobile device.
func (ua UserAgent) IsMobile() bool { return ua.deviceType == DeviceTypeMobile }

// GetShortIdentifier returns a human-readable device identifier such as
// "Chrome/120.0 (windows, desktop)" or "Bot: Googlebot".
func (ua UserAgent) GetShortIdentifier() string {
	if ua.IsBot() {
		name := ua.browser
		if name == "" {
			name = "unknown"
		}
		return "Bot: " + name
	}

	browser := capitalize(ua.browser)
	if browser == "" {
		browser = "Unknown"
	}

	version := MajorMinor(ua.browserVer)
	if version != "" {
		browser += "/" + version
	}

	os := ua.os
	if os == "" {
		os = "unknown"
	}

	return fmt.Sprintf("%s (%s, %s)", browser, os, ua.deviceType)
}

// Parse extracts browser, operating system, and device information from a
// User-Agent string. Classification is keyword-based with a fast path for
// common crawlers; unrecognized agents yield "unknown" buckets rather
// than an error, so only an empty input fails.
func Parse(raw string) (UserAgent, error) {
	if strings.TrimSpace(raw) == "" {
		return UserAgent{}, ErrEmptyUserAgent
	}

	lower := strings.ToLower(raw)

	ua := UserAgent{raw: raw}

	if name, ok := detectBot(lower); ok {
		ua.deviceType = DeviceTypeBot
		ua.browser = name
		return ua, nil
	}

	ua.os, ua.osVersion = detectOS(raw, lower)
	ua.browser, ua.browserVer = detectBrowser(raw, lower)
	ua.deviceType = detectDevice(lower, ua.os)

	return ua, nil
}

// MajorMinor truncates a dotted version string to its first two segments.
// "120.0.6099.71" becomes "120.0"; short inputs pass through unchanged.
func MajorMinor(version string) string {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return version
	}
	return parts[0] + "." + parts[1]
}

// Major returns the first segment of a dotted version string.
func Major(version string) string {
	if idx := strings.IndexByte(version, '.'); idx != -1 {
		return version[:idx]
	}
	return version
}

var knownBots = map[string]string{
	"googlebot":           "Googlebot",
	"bingbot":             "Bingbot",
	"duckduckbot":         "DuckDuckBot",
	"baiduspider":         "Baiduspider",
	"yandexbot":           "YandexBot",
	"slurp":               "Yahoo Slurp",
	"facebookexternalhit": "Facebook",
	"twitterbot":          "Twitterbot",
	"linkedinbot":         "LinkedInBot",
	"telegrambot":         "TelegramBot",
	"applebot":            "Applebot",
}

func detectBot(lower string) (string, bool) {
	for marker, name := range knownBots {
		if strings.Contains(lower, marker) {
			return name, true
		}
	}

	// Generic markers cover the long tail of crawlers and scripts.
	for _, marker := range []string{"bot", "crawler", "spider", "curl/", "wget/", "python-requests", "go-http-client"} {
		if strings.Contains(lower, marker) {
			return "unknown", true
		}
	}

	return "", false
}

func detectOS(raw, lower string) (name, version string) {
	switch {
	case strings.Contains(lower, "windows nt"):
		return "windows", tokenAfter(raw, "Windows NT ")
	case strings.Contains(lower, "iphone os") || strings.Contains(lower, "cpu os"):
		// iOS reports versions with underscores: "iPhone OS 17_2 like Mac OS X"
		v := tokenAfter(raw, "OS ")
		return "ios", strings.ReplaceAll(v, "_", ".")
	case strings.Contains(lower, "mac os x"):
		v := tokenAfter(raw, "Mac OS X ")
		return "macos", strings.ReplaceAll(v, "_", ".")
	case strings.Contains(lower, "android"):
		return "android", tokenAfter(raw, "Android ")
	case strings.Contains(lower, "cros"):
		return "chromeos", ""
	case strings.Contains(lower, "linux"):
		return "linux", ""
	default:
		return "unknown", ""
	}
}

func detectBrowser(raw, lower string) (name, version string) {
	switch {
	case strings.Contains(lower, "edg/"):
		return "edge", tokenAfter(raw, "Edg/")
	case strings.Contains(lower, "opr/"):
		return "opera", tokenAfter(raw, "OPR/")
	case strings.Contains(lower, "samsungbrowser/"):
		return "samsung", tokenAfter(raw, "SamsungBrowser/")
	case strings.Contains(lower, "firefox/"):
		return "firefox", tokenAfter(raw, "Firefox/")
	case strings.Contains(lower, "chrome/") || strings.Contains(lower, "crios/"):
		if v := tokenAfter(raw, "CriOS/"); v != "" {
			return "chrome", v
		}
		return "chrome", tokenAfter(raw, "Chrome/")
	case strings.Contains(lower, "safari/") && strings.Contains(lower, "version/"):
		return "safari", tokenAfter(raw, "Version/")
	case strings.Contains(lower, "msie") || strings.Contains(lower, "trident/"):
		return "ie", tokenAfter(raw, "MSIE ")
	default:
		return "unknown", ""
	}
}

func detectDevice(lower, os string) DeviceType {
	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		return DeviceTypeTablet
	case strings.Contains(lower, "mobile") || strings.Contains(lower, "iphone") || os == "ios":
		return DeviceTypeMobile
	case os == "android":
		// Android without the Mobile token is typically a tablet.
		return DeviceTypeTablet
	case os == "unknown":
		return DeviceTypeUnknown
	default:
		return DeviceTypeDesktop
	}
}

// capitalize upper-cases the first byte of an ASCII browser family name.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

// tokenAfter returns the version-like token following marker in s,
// stopping at the first character that cannot be part of a version.
func tokenAfter(s, marker string) string {
	idx := strings.Index(s, marker)
	if idx == -1 {
		return ""
	}
	rest := s[idx+len(marker):]

	end := 0
	for end < len(rest) {
		c := rest[end]
		if (c < '0' || c > '9') && c != '.' && c != '_' {
			break
		}
		end++
	}
	return rest[:end]
}
