package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/trailcast/core/metrics"
	"github.com/kilianp07/trailcast/core/model"
)

type writeRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (w *writeRecorder) server(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		w.mu.Lock()
		w.bodies = append(w.bodies, strings.TrimSpace(string(data)))
		w.mu.Unlock()
		rw.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInfluxSink_RecordPrediction(t *testing.T) {
	rec := &writeRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer func() { _ = sink.Close() }()

	now := time.Date(2025, 7, 1, 20, 0, 0, 0, time.UTC)
	ev := coremetrics.PredictionEvent{
		ID:         "p1",
		Source:     "http",
		TrackLen:   3,
		Predicted:  true,
		Prediction: model.Prediction{Lat: 37.002, Lon: 127, RadiusM: 200},
		StepM:      111.19492,
		Time:       now,
	}
	require.NoError(t, sink.RecordPrediction(ev))

	p := write.NewPointWithMeasurement("prediction").
		AddTag("source", "http").
		AddTag("outcome", "predicted").
		AddField("track_len", 3).
		AddTag("prediction_id", "p1").
		AddField("lat", 37.002).
		AddField("lon", 127.0).
		AddField("radius_m", 200.0).
		AddField("step_m", 111.195).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	require.Len(t, rec.bodies, 1)
	assert.Equal(t, expected, rec.bodies[0])
}

func TestInfluxSink_RecordInsufficient(t *testing.T) {
	rec := &writeRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	defer func() { _ = sink.Close() }()

	require.NoError(t, sink.RecordPrediction(coremetrics.PredictionEvent{Source: "mqtt", TrackLen: 1, Time: time.Now()}))
	require.NoError(t, sink.RecordObservations(coremetrics.ObservationEvent{Source: "mqtt", Accepted: 1, TrackLen: 1, Time: time.Now()}))
	require.Len(t, rec.bodies, 2)
	assert.Contains(t, rec.bodies[0], "outcome=insufficient_data")
	assert.NotContains(t, rec.bodies[0], "radius_m")
	assert.True(t, strings.HasPrefix(rec.bodies[1], "observation_ingest,source=mqtt"))
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	assert.True(t, called, "health endpoint not called")
	assert.IsType(t, coremetrics.NopSink{}, sink)
}
