// Package useragent provides User-Agent string parsing to extract browser,
// operating system, and device information for fingerprinting and request
// handling.
//
// The package identifies device types (mobile, desktop, tablet, bot),
// operating system families, and browser families with a fast path for
// common crawlers. Parsing is keyword-based: unrecognized agents fall into
// "unknown" buckets rather than failing, so only an empty input returns an
// error.
//
// # Basic Usage
//
//	ua, err := useragent.Parse(r.Header.Get("User-Agent"))
//	if err != nil {
//		// only ErrEmptyUserAgent is possible
//	}
//
//	fmt.Println(ua.DeviceType())   // "mobile"
//	fmt.Println(ua.OS())           // "ios"
//	fmt.Println(ua.BrowserName())  // "safari"
//	fmt.Println(ua.BrowserVer())   // "17.2"
//
// # Device Type Detection
//
//	switch ua.DeviceType() {
//	case useragent.DeviceTypeMobile:
//		// mobile client
//	case useragent.DeviceTypeBot:
//		// crawler traffic
//	default:
//		// desktop and everything else
//	}
//
// GetShortIdentifier produces human-readable device labels for audit
// trails and session listings, e.g. "Chrome/120.0 (windows, desktop)".
package useragent
