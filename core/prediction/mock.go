package prediction

import "github.com/kilianp07/trailcast/core/model"

// MockEngine returns a canned prediction once enough observations are given.
type MockEngine struct {
	Prediction model.Prediction
	// MinObservations overrides the default threshold of two when positive.
	MinObservations int
	Calls           int
}

// EstimateNext returns the configured prediction, or no result for short inputs.
func (m *MockEngine) EstimateNext(obs []model.Observation) (model.Prediction, bool) {
	m.Calls++
	need := MinObservations
	if m.MinObservations > 0 {
		need = m.MinObservations
	}
	if len(obs) < need {
		return model.Prediction{}, false
	}
	return m.Prediction, true
}
