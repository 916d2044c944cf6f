// Package metrics defines the observability hooks of the prediction service.
// A MetricsSink receives one PredictionEvent per estimate; sinks that also
// implement ObservationRecorder are told about ingested observations. Sinks
// are built from configuration through the factory registry and combined
// with a multi sink when more than one is configured.
package metrics
