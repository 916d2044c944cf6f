package ingest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimestamp is returned for values that are neither a known date
// layout nor a Unix epoch number.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// layouts are tried in order. Values without an offset are read as UTC.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp accepts ISO-8601 style strings or Unix epoch seconds
// (fractional seconds allowed).
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTimestamp)
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}
	return EpochSeconds(f)
}

// Epoch bounds keep timestamps within years 1 to 9999, the range RFC 3339
// and JSON encoding of time.Time support.
var (
	minEpoch = float64(time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC).Unix())
	maxEpoch = float64(time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC).Unix())
)

// EpochSeconds converts Unix seconds to a UTC time.
func EpochSeconds(f float64) (time.Time, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < minEpoch || f > maxEpoch {
		return time.Time{}, fmt.Errorf("%w: epoch %v out of range", ErrInvalidTimestamp, f)
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC(), nil
}
