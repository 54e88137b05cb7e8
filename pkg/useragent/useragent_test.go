package useragent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/useragent"
)

const (
	chromeWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.71 Safari/537.36"
	safariIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Mobile/15E148 Safari/604.1"
	firefoxLinux  = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	edgeWindows   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.2210.91"
	googlebot     = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
	safariIPad    = "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("chrome on windows desktop", func(t *testing.T) {
		t.Parallel()

		ua, err := useragent.Parse(chromeWindows)
		require.NoError(t, err)

		assert.Equal(t, "chrome", ua.BrowserName())
		assert.Equal(t, "120.0.6099.71", ua.BrowserVer())
		assert.Equal(t, "windows", ua.OS())
		assert.Equal(t, "10.0", ua.OSVersion())
		assert.Equal(t, useragent.DeviceTypeDesktop, ua.DeviceType())
	})

	t.Run("safari on iphone", func(t *testing.T) {
		t.Parallel()

		ua, err := useragent.Parse(safariIPhone)
		require.NoError(t, err)

		assert.Equal(t, "safari", ua.BrowserName())
		assert.Equal(t, "ios", ua.OS())
		assert.Equal(t, "17.2", ua.OSVersion())
		assert.Equal(t, useragent.DeviceTypeMobile, ua.DeviceType())
		assert.True(t, ua.IsMobile())
	})

	t.Run("firefox on linux", func(t *testing.T) {
		t.Parallel()

		ua, err := useragent.Parse(firefoxLinux)
		require.NoError(t, err)

		assert.Equal(t, "firefox", ua.BrowserName())
		assert.Equal(t, "121.0", ua.BrowserVer())
		assert.Equal(t, "linux", ua.OS())
		assert.Equal(t, useragent.DeviceTypeDesktop, ua.DeviceType())
	})

	t.Run("edge is not chrome", func(t *testing.T) {
		t.Parallel()

		ua, err := useragent.Parse(edgeWindows)
		require.NoError(t, err)

		assert.Equal(t, "edge", ua.BrowserName())
		assert.Equal(t, "120.0.2210.91", ua.BrowserVer())
	})

	t.Run("ipad is tablet", func(t *testing.T) {
		t.Parallel()

		ua, err := useragent.Parse(safariIPad)
		require.NoError(t, err)

		assert.Equal(t, useragent.DeviceTypeTablet, ua.DeviceType())
	})

	t.Run("googlebot", func(t *testing.T) {
		t.Parallel()

		ua, err := useragent.Parse(googlebot)
		require.NoError(t, err)

		assert.True(t, ua.IsBot())
		assert.Equal(t, "Bot: Googlebot", ua.GetShortIdentifier())
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		_, err := useragent.Parse("  ")
		assert.ErrorIs(t, err, useragent.ErrEmptyUserAgent)
	})

	t.Run("gibberish falls back to unknown", func(t *testing.T) {
		t.Parallel()

		ua, err := useragent.Parse("definitely not a browser")
		require.NoError(t, err)

		assert.Equal(t, "unknown", ua.BrowserName())
		assert.Equal(t, "unknown", ua.OS())
		assert.Equal(t, useragent.DeviceTypeUnknown, ua.DeviceType())
	})
}

func TestGetShortIdentifier(t *testing.T) {
	t.Parallel()

	ua, err := useragent.Parse(chromeWindows)
	require.NoError(t, err)

	assert.Equal(t, "Chrome/120.0 (windows, desktop)", ua.GetShortIdentifier())
}

func TestVersionHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "120.0", useragent.MajorMinor("120.0.6099.71"))
	assert.Equal(t, "17", useragent.MajorMinor("17"))
	assert.Equal(t, "120", useragent.Major("120.0.6099.71"))
	assert.Equal(t, "", useragent.Major(""))
}
