// Package tracker ties the track store to the estimator. It validates and
// appends incoming observations, runs the estimator, and fans each result
// out to the prediction log, the metrics sinks and the MQTT publisher.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/trailcast/core/geo"
	"github.com/kilianp07/trailcast/core/logger"
	"github.com/kilianp07/trailcast/core/metrics"
	"github.com/kilianp07/trailcast/core/model"
	coremqtt "github.com/kilianp07/trailcast/core/mqtt"
	"github.com/kilianp07/trailcast/core/predlog"
	"github.com/kilianp07/trailcast/core/prediction"
	"github.com/kilianp07/trailcast/core/track"
	"github.com/kilianp07/trailcast/ingest"
)

// SourceTrack labels estimates triggered by track appends.
const SourceTrack = "track"

// Result is the outcome of one estimate over the current track.
type Result struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Source     string            `json:"source"`
	TrackLen   int               `json:"track_len"`
	Predicted  bool              `json:"predicted"`
	Prediction *model.Prediction `json:"prediction,omitempty"`
}

// Tracker owns the track and the latest estimate.
type Tracker struct {
	store     *track.Store
	engine    prediction.Engine
	sink      metrics.MetricsSink
	plog      predlog.Store
	publisher coremqtt.Publisher
	logger    logger.Logger
	auto      atomic.Bool

	now   func() time.Time
	newID func() string

	mu            sync.RWMutex
	latest        *Result
	latestVersion uint64
}

// New creates a Tracker. sink, plog and publisher are optional; nil values
// disable the corresponding output.
func New(store *track.Store, engine prediction.Engine, sink metrics.MetricsSink, plog predlog.Store, publisher coremqtt.Publisher, log logger.Logger) (*Tracker, error) {
	if store == nil || engine == nil || log == nil {
		return nil, fmt.Errorf("tracker: nil parameter provided to New")
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if plog == nil {
		plog = predlog.NopStore{}
	}
	return &Tracker{
		store:     store,
		engine:    engine,
		sink:      sink,
		plog:      plog,
		publisher: publisher,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}, nil
}

// SetPublisher sets the publisher used for every later estimate.
func (t *Tracker) SetPublisher(p coremqtt.Publisher) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.publisher = p
}

// SetAuto enables estimation after every append when Run is active.
func (t *Tracker) SetAuto(auto bool) { t.auto.Store(auto) }

// Store returns the underlying track store.
func (t *Tracker) Store() *track.Store { return t.store }

// Ingest validates the batch, orders it by timestamp and appends it to the
// track. An invalid observation rejects the whole batch.
func (t *Tracker) Ingest(ctx context.Context, source string, obs []model.Observation) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	ev := metrics.ObservationEvent{Source: source, Time: t.now()}
	sorted, err := ingest.Normalize(obs)
	if err != nil {
		ev.Rejected = len(obs)
		ev.TrackLen = t.store.Len()
		t.recordObservations(ev)
		return 0, err
	}
	if err := t.store.Append(sorted...); err != nil {
		return 0, err
	}
	ev.Accepted = len(sorted)
	ev.TrackLen = t.store.Len()
	t.recordObservations(ev)
	t.logger.Debugw("observations appended", map[string]any{
		"source":    source,
		"count":     len(sorted),
		"track_len": ev.TrackLen,
	})
	return len(sorted), nil
}

func (t *Tracker) recordObservations(ev metrics.ObservationEvent) {
	rec, ok := t.sink.(metrics.ObservationRecorder)
	if !ok {
		return
	}
	if err := rec.RecordObservations(ev); err != nil {
		t.logger.Warnf("record observations: %v", err)
	}
}

// Predict estimates the next location from the current track. Output
// failures are logged and joined into the returned error; the Result is
// valid regardless.
func (t *Tracker) Predict(ctx context.Context, source string) (Result, error) {
	version := t.store.Version()
	obs := t.store.Snapshot()
	res := Result{ID: t.newID(), Timestamp: t.now(), Source: source, TrackLen: len(obs)}
	pred, ok := t.engine.EstimateNext(obs)
	ev := metrics.PredictionEvent{ID: res.ID, Source: source, TrackLen: len(obs), Time: res.Timestamp}
	rec := predlog.Record{ID: res.ID, Timestamp: res.Timestamp, Source: source, TrackLen: len(obs)}
	if ok {
		res.Predicted = true
		res.Prediction = &pred
		prev, last := obs[len(obs)-2], obs[len(obs)-1]
		ev.Predicted = true
		ev.Prediction = pred
		ev.StepM = geo.Haversine(prev.Point(), last.Point())
		rec.Prev, rec.Last = prev, last
		rec.Predicted = true
		rec.Prediction = pred
		t.logger.Infow("next location estimated", map[string]any{
			"id":        res.ID,
			"lat":       pred.Lat,
			"lon":       pred.Lon,
			"radius_m":  pred.RadiusM,
			"track_len": len(obs),
		})
	} else {
		t.logger.Debugf("no estimate for track of %d observations", len(obs))
	}

	t.mu.Lock()
	t.latest = &res
	t.latestVersion = version
	t.mu.Unlock()

	var errs []error
	if err := t.plog.Append(ctx, rec); err != nil {
		errs = append(errs, fmt.Errorf("prediction log: %w", err))
	}
	if err := t.sink.RecordPrediction(ev); err != nil {
		errs = append(errs, fmt.Errorf("metrics: %w", err))
	}
	t.mu.RLock()
	publisher := t.publisher
	t.mu.RUnlock()
	if publisher != nil {
		_, err := publisher.PublishPrediction(coremqtt.PredictionMessage{
			ID:         res.ID,
			Timestamp:  res.Timestamp,
			TrackLen:   res.TrackLen,
			Predicted:  res.Predicted,
			Prediction: res.Prediction,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("publish: %w", err))
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		t.logger.Errorf("prediction %s outputs: %v", res.ID, err)
	}
	return res, err
}

// Latest returns the most recent estimate, if any was computed.
func (t *Tracker) Latest() (Result, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.latest == nil {
		return Result{}, false
	}
	return *t.latest, true
}

// Current returns the latest estimate when it still reflects the track and
// otherwise runs Predict.
func (t *Tracker) Current(ctx context.Context, source string) (Result, error) {
	t.mu.RLock()
	latest, version := t.latest, t.latestVersion
	t.mu.RUnlock()
	if latest != nil && version == t.store.Version() {
		return *latest, nil
	}
	return t.Predict(ctx, source)
}

// History queries the prediction log.
func (t *Tracker) History(ctx context.Context, q predlog.Query) ([]predlog.Record, error) {
	return t.plog.Query(ctx, q)
}

// Run re-estimates after every track append when auto mode is enabled. It
// blocks until ctx is cancelled or the store is closed.
func (t *Tracker) Run(ctx context.Context) {
	events := t.store.Subscribe()
	defer t.store.Unsubscribe(events)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
			if t.auto.Load() {
				_, _ = t.Predict(ctx, SourceTrack)
			}
		case <-ctx.Done():
			return
		}
	}
}
