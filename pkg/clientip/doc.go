// Package clientip extracts real client IP addresses from HTTP requests.
//
// The package handles proxy headers in priority order to determine the
// actual client address, which feeds rate limiting, geolocation, and
// security logging for requests arriving through proxies, load balancers,
// or CDNs.
//
// # Header Priority
//
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For (leftmost entry of the chain)
//  4. X-Real-IP (nginx and other proxies)
//  5. RemoteAddr (direct connection)
//
// All candidates are validated with net.ParseIP and normalized; the
// unspecified address 0.0.0.0 is rejected. GetIP never panics and always
// returns a string, falling back to the raw RemoteAddr when nothing
// better is available.
//
// # Usage
//
//	ip := clientip.GetIP(r)
//	log.Printf("authentication attempt from %s", ip)
package clientip
