package prediction

import "github.com/kilianp07/trailcast/core/model"

// Engine estimates the next location of an ordered observation sequence.
type Engine interface {
	// EstimateNext returns the predicted next location. ok is false when the
	// sequence is too short to extrapolate.
	EstimateNext(observations []model.Observation) (pred model.Prediction, ok bool)
}

// MinObservations is the shortest sequence EstimateNext can extrapolate from.
const MinObservations = 2
