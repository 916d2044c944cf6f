package ingest

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/trailcast/core/model"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 7, 1, 20, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-07-01T20:00:00Z", want},
		{"2025-07-01T22:00:00+02:00", want},
		{"2025-07-01 20:00:00", want},
		{"2025-07-01T20:00:00", want},
		{" 2025-07-01 20:00 ", want},
		{"1751400000", want},
		{"1751400000.5", want.Add(500 * time.Millisecond)},
		{"2025-07-01", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
	for _, bad := range []string{"", "yesterday", "2025-13-01", "NaN"} {
		_, err := ParseTimestamp(bad)
		assert.ErrorIs(t, err, ErrInvalidTimestamp, bad)
	}
}

func TestEpochSecondsRange(t *testing.T) {
	for _, bad := range []float64{1e20, -1e20, 9.3e18, 253402300800, -62135596801} {
		_, err := EpochSeconds(bad)
		assert.ErrorIs(t, err, ErrInvalidTimestamp, "%v", bad)
	}
	got, err := EpochSeconds(253402300799)
	require.NoError(t, err)
	assert.Equal(t, 9999, got.Year())
	got, err = EpochSeconds(-62135596800)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Year())

	_, err = ParseTimestamp("1e20")
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
	_, err = DecodeObservation([]byte(`{"timestamp":1e20,"lat":1,"lon":1}`))
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestReadCSV(t *testing.T) {
	doc := `Lat, lon, timestamp, note
37.5667,126.9782,2025-07-01 20:10:00,b
37.5665,126.9780,2025-07-01 20:00:00,a

37.5669,126.9785,1751401200,c
`
	obs, err := ReadCSV(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, obs, 3)
	assert.Equal(t, 37.5665, obs[0].Lat, "sorted by timestamp")
	assert.Equal(t, 126.9782, obs[1].Lon)
	assert.Equal(t, 37.5669, obs[2].Lat)
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ReadCSV(strings.NewReader("timestamp,lat\n2025-07-01,1\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ReadCSV(strings.NewReader("timestamp,lat,lon\nsoon,1,2\n"))
	assert.ErrorIs(t, err, ErrInvalidTimestamp)

	_, err = ReadCSV(strings.NewReader("timestamp,lat,lon\n2025-07-01,north,2\n"))
	assert.ErrorIs(t, err, ErrInvalidObservation)

	_, err = ReadCSV(strings.NewReader("timestamp,lat,lon\n2025-07-01,91,2\n"))
	assert.ErrorIs(t, err, ErrInvalidObservation)
	assert.Contains(t, err.Error(), "lat=91")

	_, err = ReadCSV(strings.NewReader("timestamp,lat,lon\n2025-07-01,1\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	in := []model.Observation{
		{Timestamp: time.Date(2025, 7, 1, 20, 0, 0, 0, time.UTC), Lat: 37.5665, Lon: 126.978},
		{Timestamp: time.Date(2025, 7, 1, 20, 10, 0, 0, time.UTC), Lat: -33.8688, Lon: 151.2093},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, in))
	assert.True(t, strings.HasPrefix(buf.String(), "timestamp,lat,lon\n"))
	out, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeJSON(t *testing.T) {
	obs, err := DecodeJSON(strings.NewReader(`[
		{"timestamp": 1751400600, "lat": 37.001, "lon": 127},
		{"timestamp": "2025-07-01T20:00:00Z", "lat": 37, "lon": 127}
	]`))
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, 37.0, obs[0].Lat)

	one, err := DecodeJSON(strings.NewReader(`{"timestamp": "2025-07-01", "lat": 0, "lon": 0}`))
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestDecodeJSON_Errors(t *testing.T) {
	_, err := DecodeJSON(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = DecodeJSON(strings.NewReader(`{"lat": 1, "lon": 2}`))
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = DecodeJSON(strings.NewReader(`{"timestamp": 1, "lon": 2}`))
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = DecodeJSON(strings.NewReader(`{"timestamp": true, "lat": 1, "lon": 2}`))
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
	_, err = DecodeJSON(strings.NewReader(`{"timestamp": 1, "lat": 1, "lon": 200}`))
	assert.ErrorIs(t, err, ErrInvalidObservation)
	_, err = DecodeJSON(strings.NewReader(`[{`))
	assert.Error(t, err)
}

func TestDecodeObservation(t *testing.T) {
	o, err := DecodeObservation([]byte(`{"timestamp": 1751400000, "lat": 37.5, "lon": 127.1}`))
	require.NoError(t, err)
	assert.Equal(t, 37.5, o.Lat)
	_, err = DecodeObservation([]byte(`{"timestamp": 1751400000, "lat": -95, "lon": 127.1}`))
	assert.ErrorIs(t, err, ErrInvalidObservation)
}
