package prediction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/trailcast/core/model"
)

func obs(points ...[2]float64) []model.Observation {
	t0 := time.Date(2025, 7, 1, 20, 0, 0, 0, time.UTC)
	out := make([]model.Observation, len(points))
	for i, p := range points {
		out[i] = model.Observation{Timestamp: t0.Add(time.Duration(i) * 10 * time.Minute), Lat: p[0], Lon: p[1]}
	}
	return out
}

func TestEstimateNext_NotEnoughData(t *testing.T) {
	_, ok := EstimateNext(nil)
	assert.False(t, ok)
	_, ok = EstimateNext(obs())
	assert.False(t, ok)
	_, ok = EstimateNext(obs([2]float64{37, 127}))
	assert.False(t, ok)
}

func TestEstimateNext_IdenticalPoints(t *testing.T) {
	pred, ok := EstimateNext(obs([2]float64{37, 127}, [2]float64{37, 127}))
	require.True(t, ok)
	assert.Equal(t, 37.0, pred.Lat)
	assert.Equal(t, 127.0, pred.Lon)
	assert.Equal(t, DefaultRadiusM, pred.RadiusM)
}

func TestEstimateNext_DueNorth(t *testing.T) {
	pred, ok := EstimateNext(obs([2]float64{37, 127}, [2]float64{37.001, 127}))
	require.True(t, ok)
	assert.InDelta(t, 127.0, pred.Lon, 1e-12)
	assert.Greater(t, pred.Lat, 37.001)
	// The haversine metre step projected back with 111320 m/deg is slightly
	// shorter than the raw 0.001 degree delta.
	assert.InDelta(t, 0.001, pred.Lat-37.001, 1e-5)
}

func TestEstimateNext_DueEast(t *testing.T) {
	pred, ok := EstimateNext(obs([2]float64{0, 10}, [2]float64{0, 10.001}))
	require.True(t, ok)
	assert.InDelta(t, 0, pred.Lat, 1e-12)
	assert.InDelta(t, 10.002, pred.Lon, 1e-5)
}

func TestEstimateNext_UsesOnlyTrailingPair(t *testing.T) {
	short := obs([2]float64{37.0005, 127.0005}, [2]float64{37.001, 127.001})
	long := obs([2]float64{10, 10}, [2]float64{50, -20}, [2]float64{37.0005, 127.0005}, [2]float64{37.001, 127.001})
	a, ok := EstimateNext(short)
	require.True(t, ok)
	b, ok := EstimateNext(long)
	require.True(t, ok)
	assert.Equal(t, a, b)
}

func TestEstimateNext_Idempotent(t *testing.T) {
	in := obs([2]float64{37.5665, 126.978}, [2]float64{37.5667, 126.9782}, [2]float64{37.5668, 126.9785})
	p := NewTrajectoryPredictor(nil)
	a, ok1 := p.EstimateNext(in)
	b, ok2 := p.EstimateNext(in)
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, a, b)
	assert.Len(t, in, 3, "input must not be modified")
}

func TestEstimateNext_CustomPolicy(t *testing.T) {
	p := NewTrajectoryPredictor(FixedRadius(75))
	pred, ok := p.EstimateNext(obs([2]float64{37, 127}, [2]float64{37.001, 127}))
	require.True(t, ok)
	assert.Equal(t, 75.0, pred.RadiusM)
}

func TestMockEngine(t *testing.T) {
	m := &MockEngine{Prediction: model.Prediction{Lat: 1, Lon: 2, RadiusM: 3}}
	_, ok := m.EstimateNext(obs([2]float64{0, 0}))
	assert.False(t, ok)
	pred, ok := m.EstimateNext(obs([2]float64{0, 0}, [2]float64{1, 1}))
	assert.True(t, ok)
	assert.Equal(t, 3.0, pred.RadiusM)
	assert.Equal(t, 2, m.Calls)
}
