package prediction

import (
	"github.com/kilianp07/trailcast/core/geo"
	"github.com/kilianp07/trailcast/core/model"
)

// TrajectoryPredictor extrapolates the last observed step by one more step of
// equal length and bearing. The zero value uses FixedRadius(DefaultRadiusM).
type TrajectoryPredictor struct {
	Radius RadiusPolicy
}

// NewTrajectoryPredictor returns a predictor using the given radius policy.
// A nil policy selects the fixed default radius.
func NewTrajectoryPredictor(policy RadiusPolicy) *TrajectoryPredictor {
	return &TrajectoryPredictor{Radius: policy}
}

// EstimateNext implements Engine.
func (p *TrajectoryPredictor) EstimateNext(obs []model.Observation) (model.Prediction, bool) {
	if len(obs) < MinObservations {
		return model.Prediction{}, false
	}
	prev := obs[len(obs)-2].Point()
	last := obs[len(obs)-1].Point()

	dist := geo.Haversine(prev, last)
	bearing := geo.PlanarBearing(prev, last)
	next := geo.Offset(last, geo.Displacement(dist, bearing))

	return model.Prediction{Lat: next.Lat, Lon: next.Lon, RadiusM: p.radius(obs)}, true
}

func (p *TrajectoryPredictor) radius(obs []model.Observation) float64 {
	if p == nil || p.Radius == nil {
		return DefaultRadiusM
	}
	return p.Radius.Radius(obs)
}

// EstimateNext runs the default predictor with the fixed 200 m radius.
func EstimateNext(obs []model.Observation) (model.Prediction, bool) {
	var p TrajectoryPredictor
	return p.EstimateNext(obs)
}
