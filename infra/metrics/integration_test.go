//go:build integration

package metrics

import (
	"context"
	"testing"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/trailcast/core/metrics"
	"github.com/kilianp07/trailcast/core/model"
	"github.com/kilianp07/trailcast/internal/testutil"
)

func TestInfluxSinkContainer(t *testing.T) {
	ctx := context.Background()
	inf, cleanup, err := testutil.StartInfluxDB(ctx)
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	defer cleanup()

	sink := NewInfluxSinkWithFallback(inf.URL, inf.Token, inf.Org, inf.Bucket)
	require.IsType(t, &InfluxSink{}, sink)
	defer func() { _ = sink.(*InfluxSink).Close() }()

	require.NoError(t, sink.RecordPrediction(coremetrics.PredictionEvent{
		ID: "it-1", Source: "it", TrackLen: 2, Predicted: true,
		Prediction: model.Prediction{Lat: 37.5, Lon: 127, RadiusM: 200},
		StepM:      111.2, Time: time.Now(),
	}))

	client := influxdb2.NewClient(inf.URL, inf.Token)
	defer client.Close()
	query := `from(bucket: "trail") |> range(start: -1h) |> filter(fn: (r) => r._measurement == "prediction" and r._field == "radius_m")`
	res, err := client.QueryAPI(inf.Org).Query(ctx, query)
	require.NoError(t, err)
	var values []any
	for res.Next() {
		values = append(values, res.Record().Value())
	}
	require.NoError(t, res.Err())
	require.Len(t, values, 1)
	assert.Equal(t, 200.0, values[0])
}
