// Package ingest turns uploaded files and request bodies into ordered,
// validated observation sequences.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/trailcast/core/model"
)

// ErrMissingColumn is returned when the CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

var columnAliases = map[string][]string{
	"timestamp": {"timestamp", "time", "ts", "datetime"},
	"lat":       {"lat", "latitude"},
	"lon":       {"lon", "lng", "long", "longitude"},
}

// ReadCSV parses a CSV document with a header containing timestamp, lat and
// lon columns in any order. Extra columns are ignored. The result is validated
// and sorted by timestamp.
func ReadCSV(r io.Reader) ([]model.Observation, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var out []model.Observation
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if blank(rec) {
			continue
		}
		o, err := parseRecord(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, o)
	}
	return Normalize(out)
}

func columnIndex(header []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	idx := make(map[string]int, len(columnAliases))
	for col, aliases := range columnAliases {
		for _, a := range aliases {
			if i, ok := pos[a]; ok {
				idx[col] = i
				break
			}
		}
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return idx, nil
}

func parseRecord(rec []string, idx map[string]int) (model.Observation, error) {
	field := func(col string) (string, error) {
		i := idx[col]
		if i >= len(rec) {
			return "", fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
		return strings.TrimSpace(rec[i]), nil
	}
	ts, err := field("timestamp")
	if err != nil {
		return model.Observation{}, err
	}
	t, err := ParseTimestamp(ts)
	if err != nil {
		return model.Observation{}, err
	}
	lat, err := parseCoord(field("lat"))
	if err != nil {
		return model.Observation{}, fmt.Errorf("lat: %w", err)
	}
	lon, err := parseCoord(field("lon"))
	if err != nil {
		return model.Observation{}, fmt.Errorf("lon: %w", err)
	}
	return model.Observation{Timestamp: t, Lat: lat, Lon: lon}, nil
}

func parseCoord(s string, err error) (float64, error) {
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidObservation, s)
	}
	return f, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// WriteCSV writes observations with a timestamp,lat,lon header. Timestamps
// are RFC3339 in UTC.
func WriteCSV(w io.Writer, obs []model.Observation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "lat", "lon"}); err != nil {
		return err
	}
	for _, o := range obs {
		rec := []string{
			o.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatFloat(o.Lat, 'f', -1, 64),
			strconv.FormatFloat(o.Lon, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
