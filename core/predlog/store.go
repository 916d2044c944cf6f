// Package predlog persists every next-location estimate so it can be
// reviewed later. Stores are append-only and queried by time window.
package predlog

import (
	"context"
	"time"

	"github.com/kilianp07/trailcast/core/model"
)

// Record captures one estimate and the observations it was derived from.
type Record struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Source     string            `json:"source"`
	TrackLen   int               `json:"track_len"`
	Prev       model.Observation `json:"prev"`
	Last       model.Observation `json:"last"`
	Predicted  bool              `json:"predicted"`
	Prediction model.Prediction  `json:"prediction"`
}

// Query defines filters for retrieving records. Zero values disable a filter.
type Query struct {
	Start  time.Time
	End    time.Time
	Source string
	// PredictedOnly drops estimates that had too few observations.
	PredictedOnly bool
}

// Match reports whether r satisfies q.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Source != "" && r.Source != q.Source {
		return false
	}
	if q.PredictedOnly && !r.Predicted {
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
