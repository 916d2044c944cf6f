package prediction

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kilianp07/trailcast/core/geo"
	"github.com/kilianp07/trailcast/core/model"
)

// DefaultSegments is the number of ring vertices used for display.
const DefaultSegments = 60

var (
	// ErrInvalidSegments is returned when a ring is requested with fewer than one segment.
	ErrInvalidSegments = errors.New("segments must be positive")
	// ErrNegativeRadius is returned for radii below zero.
	ErrNegativeRadius = errors.New("radius must be non-negative")
)

// CircleBoundary approximates a circle of radiusM metres around center with
// segments evenly spaced vertices. The first vertex is repeated at the end so
// the returned ring is closed and holds segments+1 points.
func CircleBoundary(center model.Point, radiusM float64, segments int) ([]model.Point, error) {
	if segments <= 0 {
		return nil, ErrInvalidSegments
	}
	if radiusM < 0 || math.IsNaN(radiusM) {
		return nil, ErrNegativeRadius
	}
	ring := make([]model.Point, 0, segments+1)
	step := 2 * math.Pi / float64(segments)
	for i := 0; i < segments; i++ {
		a := step * float64(i)
		d := r2.Vec{X: radiusM * math.Cos(a), Y: radiusM * math.Sin(a)}
		ring = append(ring, geo.Offset(center, d))
	}
	return append(ring, ring[0]), nil
}
