package prediction

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/trailcast/core/geo"
	"github.com/kilianp07/trailcast/core/model"
)

// DefaultRadiusM is the uncertainty radius attached to every prediction unless
// another policy is configured.
const DefaultRadiusM = 200.0

// RadiusPolicy chooses the uncertainty radius for a prediction.
type RadiusPolicy interface {
	Radius(obs []model.Observation) float64
}

// FixedRadius always returns the same radius in metres.
type FixedRadius float64

// Radius implements RadiusPolicy.
func (f FixedRadius) Radius([]model.Observation) float64 { return float64(f) }

// DispersionRadius derives the radius from the spread of historical step
// lengths: mean + K*stddev, clamped to [MinM, MaxM]. MaxM <= 0 disables the
// upper bound. Tracks with fewer than two steps get Fallback.
type DispersionRadius struct {
	K        float64
	MinM     float64
	MaxM     float64
	Fallback float64
}

// Radius implements RadiusPolicy.
func (d DispersionRadius) Radius(obs []model.Observation) float64 {
	pts := make([]model.Point, len(obs))
	for i, o := range obs {
		pts[i] = o.Point()
	}
	steps := geo.Steps(pts)
	if len(steps) < 2 {
		return d.fallback()
	}
	mean, std := stat.MeanStdDev(steps, nil)
	r := mean + d.K*std
	if math.IsNaN(r) {
		return d.fallback()
	}
	r = math.Max(r, d.MinM)
	if d.MaxM > 0 {
		r = math.Min(r, d.MaxM)
	}
	return r
}

func (d DispersionRadius) fallback() float64 {
	if d.Fallback > 0 {
		return d.Fallback
	}
	return DefaultRadiusM
}
