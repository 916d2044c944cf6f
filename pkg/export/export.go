// Package export writes prediction log records in formats suited to
// spreadsheets and scripts.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/trailcast/core/predlog"
)

// Formats accepted by Write.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Write encodes records in the given format.
func Write(w io.Writer, format string, records []predlog.Record) error {
	switch format {
	case FormatJSON, "":
		return WriteJSON(w, records)
	case FormatCSV:
		return WriteCSV(w, records)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteJSON writes the records to w as a JSON array.
func WriteJSON(w io.Writer, records []predlog.Record) error {
	if records == nil {
		records = []predlog.Record{}
	}
	return json.NewEncoder(w).Encode(records)
}

// WriteCSV writes one row per record. Estimates without a result leave the
// coordinate columns empty.
func WriteCSV(w io.Writer, records []predlog.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "timestamp", "source", "track_len", "predicted", "lat", "lon", "radius_m"}); err != nil {
		return err
	}
	for _, r := range records {
		rec := []string{
			r.ID,
			r.Timestamp.UTC().Format(time.RFC3339),
			r.Source,
			strconv.Itoa(r.TrackLen),
			strconv.FormatBool(r.Predicted),
			"", "", "",
		}
		if r.Predicted {
			rec[5] = strconv.FormatFloat(r.Prediction.Lat, 'f', -1, 64)
			rec[6] = strconv.FormatFloat(r.Prediction.Lon, 'f', -1, 64)
			rec[7] = strconv.FormatFloat(r.Prediction.RadiusM, 'f', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
