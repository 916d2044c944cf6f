package metrics

import (
	"time"

	"github.com/kilianp07/trailcast/core/model"
)

// Outcome labels for PredictionEvent.
const (
	OutcomePredicted    = "predicted"
	OutcomeInsufficient = "insufficient_data"
)

// PredictionEvent describes one call of the estimator.
type PredictionEvent struct {
	ID         string
	Source     string
	TrackLen   int
	Predicted  bool
	Prediction model.Prediction
	// StepM is the length of the extrapolated step in metres.
	StepM float64
	Time  time.Time
}

// Outcome returns the label used by sinks for this event.
func (e PredictionEvent) Outcome() string {
	if e.Predicted {
		return OutcomePredicted
	}
	return OutcomeInsufficient
}

// MetricsSink records prediction events.
type MetricsSink interface {
	RecordPrediction(ev PredictionEvent) error
}

// ObservationEvent summarises one ingestion batch.
type ObservationEvent struct {
	Source   string
	Accepted int
	Rejected int
	TrackLen int
	Time     time.Time
}

// ObservationRecorder is implemented by sinks able to record ingestion.
type ObservationRecorder interface {
	RecordObservations(ev ObservationEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordPrediction(PredictionEvent) error    { return nil }
func (NopSink) RecordObservations(ObservationEvent) error { return nil }
