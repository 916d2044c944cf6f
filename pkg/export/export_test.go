package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/trailcast/core/model"
	"github.com/kilianp07/trailcast/core/predlog"
)

func records() []predlog.Record {
	t0 := time.Date(2025, 7, 1, 20, 0, 0, 0, time.UTC)
	return []predlog.Record{
		{ID: "a", Timestamp: t0, Source: "http", TrackLen: 1},
		{ID: "b", Timestamp: t0.Add(time.Minute), Source: "mqtt", TrackLen: 2, Predicted: true,
			Prediction: model.Prediction{Lat: 37.002, Lon: 127, RadiusM: 200}},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records()))
	want := "id,timestamp,source,track_len,predicted,lat,lon,radius_m\n" +
		"a,2025-07-01T20:00:00Z,http,1,false,,,\n" +
		"b,2025-07-01T20:01:00Z,mqtt,2,true,37.002,127,200\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, records()))
	assert.Contains(t, buf.String(), `"id":"b"`)
	assert.Error(t, Write(&buf, "xml", records()))
}
