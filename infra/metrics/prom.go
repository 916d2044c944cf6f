package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/trailcast/core/metrics"
)

// PromSink exposes prediction activity as Prometheus metrics.
type PromSink struct {
	predictions  *prometheus.CounterVec
	steps        prometheus.Histogram
	radius       prometheus.Gauge
	trackLen     prometheus.Gauge
	observations *prometheus.CounterVec
}

// NewPromSink registers metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics that
// are already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	predictions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trail_predictions_total",
		Help: "Number of next-location estimates by source and outcome",
	}, []string{"source", "outcome"})
	steps := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "trail_prediction_step_meters",
		Help:    "Length of the extrapolated step",
		Buckets: prometheus.ExponentialBuckets(10, 2, 12),
	})
	radius := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "trail_prediction_radius_meters",
		Help: "Uncertainty radius of the latest prediction",
	})
	trackLen := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "trail_track_observations",
		Help: "Number of observations in the track",
	})
	observations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trail_observations_ingested_total",
		Help: "Observations received by source and result",
	}, []string{"source", "result"})

	var err error
	if predictions, err = register(reg, predictions); err != nil {
		return nil, err
	}
	if steps, err = register(reg, steps); err != nil {
		return nil, err
	}
	if radius, err = register(reg, radius); err != nil {
		return nil, err
	}
	if trackLen, err = register(reg, trackLen); err != nil {
		return nil, err
	}
	if observations, err = register(reg, observations); err != nil {
		return nil, err
	}
	return &PromSink{
		predictions:  predictions,
		steps:        steps,
		radius:       radius,
		trackLen:     trackLen,
		observations: observations,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPrediction counts the estimate and, on success, records the step
// length and radius.
func (s *PromSink) RecordPrediction(ev coremetrics.PredictionEvent) error {
	s.predictions.WithLabelValues(ev.Source, ev.Outcome()).Inc()
	s.trackLen.Set(float64(ev.TrackLen))
	if ev.Predicted {
		s.steps.Observe(ev.StepM)
		s.radius.Set(ev.Prediction.RadiusM)
	}
	return nil
}

// RecordObservations counts accepted and rejected observations.
func (s *PromSink) RecordObservations(ev coremetrics.ObservationEvent) error {
	if ev.Accepted > 0 {
		s.observations.WithLabelValues(ev.Source, "accepted").Add(float64(ev.Accepted))
	}
	if ev.Rejected > 0 {
		s.observations.WithLabelValues(ev.Source, "rejected").Add(float64(ev.Rejected))
	}
	s.trackLen.Set(float64(ev.TrackLen))
	return nil
}
