package clientip_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/authkit/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	t.Parallel()

	t.Run("remote addr fallback", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "203.0.113.7:51234"

		assert.Equal(t, "203.0.113.7", clientip.GetIP(r))
	})

	t.Run("cloudflare header wins", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "10.0.0.1:80"
		r.Header.Set("CF-Connecting-IP", "198.51.100.4")
		r.Header.Set("X-Forwarded-For", "192.0.2.9")

		assert.Equal(t, "198.51.100.4", clientip.GetIP(r))
	})

	t.Run("forwarded chain uses first hop", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "10.0.0.1:80"
		r.Header.Set("X-Forwarded-For", "192.0.2.9, 10.0.0.2, 10.0.0.3")

		assert.Equal(t, "192.0.2.9", clientip.GetIP(r))
	})

	t.Run("invalid header skipped", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "203.0.113.7:51234"
		r.Header.Set("X-Forwarded-For", "not-an-ip")

		assert.Equal(t, "203.0.113.7", clientip.GetIP(r))
	})

	t.Run("unspecified address rejected", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "203.0.113.7:51234"
		r.Header.Set("X-Real-IP", "0.0.0.0")

		assert.Equal(t, "203.0.113.7", clientip.GetIP(r))
	})

	t.Run("ipv6 normalized", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "[2001:db8::1]:443"

		assert.Equal(t, "2001:db8::1", clientip.GetIP(r))
	})
}
