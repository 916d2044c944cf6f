package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/trailcast/core/factory"
)

type recordSink struct {
	predictions  int
	observations int
	err          error
}

func (r *recordSink) RecordPrediction(PredictionEvent) error {
	r.predictions++
	return r.err
}

func (r *recordSink) RecordObservations(ObservationEvent) error {
	r.observations++
	return r.err
}

type predictionOnly struct{ n int }

func (p *predictionOnly) RecordPrediction(PredictionEvent) error { p.n++; return nil }

func TestMultiSink(t *testing.T) {
	failing := &recordSink{err: errors.New("boom")}
	ok := &recordSink{}
	plain := &predictionOnly{}
	m := NewMultiSink(failing, ok, plain)

	err := m.RecordPrediction(PredictionEvent{Predicted: true})
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, 1, ok.predictions, "later sinks still called")
	assert.Equal(t, 1, plain.n)

	require.Error(t, m.RecordObservations(ObservationEvent{Accepted: 2}))
	assert.Equal(t, 1, ok.observations)
}

type closingSink struct {
	predictionOnly
	closed bool
}

func (c *closingSink) Close() error { c.closed = true; return nil }

func TestMultiSinkClose(t *testing.T) {
	c := &closingSink{}
	m := NewMultiSink(&predictionOnly{}, c)
	require.NoError(t, m.Close())
	assert.True(t, c.closed)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomePredicted, PredictionEvent{Predicted: true}.Outcome())
	assert.Equal(t, OutcomeInsufficient, PredictionEvent{}.Outcome())
}

func TestNewMetricsSink(t *testing.T) {
	require.NoError(t, RegisterMetricsSink("test-record", func(map[string]any) (MetricsSink, error) {
		return &recordSink{}, nil
	}))

	s, err := NewMetricsSink(nil)
	require.NoError(t, err)
	assert.IsType(t, NopSink{}, s)

	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "test-record"}})
	require.NoError(t, err)
	assert.IsType(t, &recordSink{}, s)

	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "test-record"}, {Type: "test-record"}})
	require.NoError(t, err)
	assert.IsType(t, &MultiSink{}, s)

	_, err = NewMetricsSink([]factory.ModuleConfig{{Type: "missing"}})
	assert.Error(t, err)
}

func TestConfigHasSink(t *testing.T) {
	c := Config{Sinks: []factory.ModuleConfig{{Type: "prometheus"}}}
	assert.True(t, c.HasSink("prometheus"))
	assert.False(t, c.HasSink("influx"))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Sinks: []factory.ModuleConfig{{Type: "nop"}}}.Validate())
	assert.Error(t, Config{Sinks: []factory.ModuleConfig{{Conf: map[string]any{"url": "x"}}}}.Validate())
}
