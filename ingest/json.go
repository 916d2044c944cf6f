package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kilianp07/trailcast/core/model"
)

// ErrMissingField is returned when a JSON observation omits a coordinate or
// the timestamp.
var ErrMissingField = errors.New("missing field")

// rawObservation accepts the timestamp as a string or a number.
type rawObservation struct {
	Timestamp json.RawMessage `json:"timestamp"`
	Lat       *float64        `json:"lat"`
	Lon       *float64        `json:"lon"`
}

func (r rawObservation) observation() (model.Observation, error) {
	if len(r.Timestamp) == 0 || string(r.Timestamp) == "null" {
		return model.Observation{}, fmt.Errorf("%w: timestamp", ErrMissingField)
	}
	if r.Lat == nil {
		return model.Observation{}, fmt.Errorf("%w: lat", ErrMissingField)
	}
	if r.Lon == nil {
		return model.Observation{}, fmt.Errorf("%w: lon", ErrMissingField)
	}
	t, err := decodeTimestamp(r.Timestamp)
	if err != nil {
		return model.Observation{}, err
	}
	return model.Observation{Timestamp: t, Lat: *r.Lat, Lon: *r.Lon}, nil
}

func decodeTimestamp(raw json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParseTimestamp(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidTimestamp, raw)
	}
	return EpochSeconds(f)
}

// DecodeJSON reads either a single observation object or an array of them.
// The result is validated and sorted by timestamp.
func DecodeJSON(r io.Reader) ([]model.Observation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMissingField)
	}
	var raws []rawObservation
	if data[0] == '[' {
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("decode observations: %w", err)
		}
	} else {
		var one rawObservation
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("decode observation: %w", err)
		}
		raws = []rawObservation{one}
	}
	out := make([]model.Observation, 0, len(raws))
	for i, r := range raws {
		o, err := r.observation()
		if err != nil {
			return nil, fmt.Errorf("observation %d: %w", i, err)
		}
		out = append(out, o)
	}
	return Normalize(out)
}

// DecodeObservation parses one JSON observation message, as published on the
// MQTT observation topic.
func DecodeObservation(payload []byte) (model.Observation, error) {
	var r rawObservation
	if err := json.Unmarshal(payload, &r); err != nil {
		return model.Observation{}, fmt.Errorf("decode observation: %w", err)
	}
	o, err := r.observation()
	if err != nil {
		return model.Observation{}, err
	}
	if err := Validate(o); err != nil {
		return model.Observation{}, err
	}
	return o, nil
}
