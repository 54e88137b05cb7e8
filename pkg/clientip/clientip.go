package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Proxy headers in priority order. CDN-set headers are checked before
// generic proxy headers because they are harder to spoof from outside.
var headerPriority = []string{
	"CF-Connecting-IP",
	"DO-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// GetIP extracts the real client IP address from the request.
//
// Proxy headers are checked in priority order; the first valid IP wins.
// X-Forwarded-For may carry a comma-separated chain, in which case the
// leftmost (original client) entry is used. If no header yields a valid
// address, the RemoteAddr host is returned as-is.
func GetIP(r *http.Request) string {
	for _, header := range headerPriority {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}

		// X-Forwarded-For: "client, proxy1, proxy2"
		if idx := strings.IndexByte(value, ','); idx != -1 {
			value = value[:idx]
		}

		if ip := normalize(value); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := normalize(host); ip != "" {
		return ip
	}

	return r.RemoteAddr
}

// normalize validates and canonicalizes an IP string.
// Returns "" for invalid addresses and the unspecified address 0.0.0.0,
// which some proxies emit when they have no client IP.
func normalize(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}
