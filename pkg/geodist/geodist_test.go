package geodist_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/authkit/pkg/geodist"
)

func TestHaversine(t *testing.T) {
	t.Parallel()

	t.Run("san francisco to new york", func(t *testing.T) {
		t.Parallel()

		sf := geodist.Point{Lat: 37.7749, Lon: -122.4194}
		ny := geodist.Point{Lat: 40.7128, Lon: -74.0060}

		km := geodist.Haversine(sf, ny)
		assert.InDelta(t, 4130, km, 30)
	})

	t.Run("same point is zero", func(t *testing.T) {
		t.Parallel()

		p := geodist.Point{Lat: 51.5074, Lon: -0.1278}
		assert.Zero(t, geodist.Haversine(p, p))
	})

	t.Run("symmetric", func(t *testing.T) {
		t.Parallel()

		a := geodist.Point{Lat: 35.6762, Lon: 139.6503}
		b := geodist.Point{Lat: -33.8688, Lon: 151.2093}

		assert.InDelta(t, geodist.Haversine(a, b), geodist.Haversine(b, a), 1e-9)
	})

	t.Run("antimeridian crossing", func(t *testing.T) {
		t.Parallel()

		a := geodist.Point{Lat: 0, Lon: 179.5}
		b := geodist.Point{Lat: 0, Lon: -179.5}

		// A degree of longitude at the equator is ~111 km.
		assert.InDelta(t, 111, geodist.Haversine(a, b), 2)
	})
}
