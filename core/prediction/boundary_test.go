package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/trailcast/core/geo"
	"github.com/kilianp07/trailcast/core/model"
)

func TestCircleBoundary_ClosedRing(t *testing.T) {
	center := model.Point{Lat: 37.5665, Lon: 126.978}
	for _, n := range []int{3, 4, 17, DefaultSegments} {
		for _, r := range []float64{0, 1, 200, 5000} {
			ring, err := CircleBoundary(center, r, n)
			require.NoError(t, err)
			require.Len(t, ring, n+1)
			assert.Equal(t, ring[0], ring[n])
		}
	}
}

func TestCircleBoundary_ZeroRadius(t *testing.T) {
	center := model.Point{Lat: -33.86, Lon: 151.2}
	ring, err := CircleBoundary(center, 0, 12)
	require.NoError(t, err)
	for _, p := range ring {
		assert.InDelta(t, center.Lat, p.Lat, 1e-12)
		assert.InDelta(t, center.Lon, p.Lon, 1e-12)
	}
}

func TestCircleBoundary_RadiusIsRespected(t *testing.T) {
	center := model.Point{Lat: 37, Lon: 127}
	ring, err := CircleBoundary(center, 200, 36)
	require.NoError(t, err)
	for _, p := range ring {
		assert.InDelta(t, 200, geo.Haversine(center, p), 1.0)
	}
	// The first vertex sits due east.
	assert.InDelta(t, center.Lat, ring[0].Lat, 1e-12)
	assert.Greater(t, ring[0].Lon, center.Lon)
}

func TestCircleBoundary_InvalidArgs(t *testing.T) {
	center := model.Point{}
	_, err := CircleBoundary(center, 10, 0)
	assert.ErrorIs(t, err, ErrInvalidSegments)
	_, err = CircleBoundary(center, 10, -1)
	assert.ErrorIs(t, err, ErrInvalidSegments)
	_, err = CircleBoundary(center, -1, 10)
	assert.ErrorIs(t, err, ErrNegativeRadius)
}
