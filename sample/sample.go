// Package sample generates synthetic trails for demos and tests.
package sample

import (
	"math/rand"
	"time"

	"github.com/kilianp07/trailcast/core/model"
)

// Config describes a random-walk trail.
type Config struct {
	// Count is the number of observations (default 20).
	Count int `json:"count"`
	// Start is the first position before the first step.
	Start model.Point `json:"start"`
	// StartTime is the timestamp of the first observation.
	StartTime time.Time `json:"start_time"`
	// Interval separates consecutive observations (default 10m).
	Interval time.Duration `json:"interval"`
	// Drift is the mean step in degrees applied to lat and lon (default 0.0001).
	Drift float64 `json:"drift"`
	// Jitter is the standard deviation of the per-step noise in degrees
	// (default 0.00005).
	Jitter float64 `json:"jitter"`
	// Seed fixes the random source; zero seeds from the clock.
	Seed int64 `json:"seed"`
}

// DefaultStart is Seoul City Hall.
var DefaultStart = model.Point{Lat: 37.5665, Lon: 126.9780}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Count <= 0 {
		c.Count = 20
	}
	if c.Start == (model.Point{}) {
		c.Start = DefaultStart
	}
	if c.StartTime.IsZero() {
		c.StartTime = time.Date(2025, 7, 1, 20, 0, 0, 0, time.UTC)
	}
	if c.Interval <= 0 {
		c.Interval = 10 * time.Minute
	}
	if c.Drift == 0 {
		c.Drift = 0.0001
	}
	if c.Jitter == 0 {
		c.Jitter = 0.00005
	}
}

// Trail returns cfg.Count observations. Each step moves lat and lon by
// Drift plus normal noise, so the first observation is already one step away
// from Start.
func Trail(cfg Config) []model.Observation {
	cfg.SetDefaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	lat, lon := cfg.Start.Lat, cfg.Start.Lon
	out := make([]model.Observation, cfg.Count)
	for i := range out {
		lat += cfg.Drift + rng.NormFloat64()*cfg.Jitter
		lon += cfg.Drift + rng.NormFloat64()*cfg.Jitter
		out[i] = model.Observation{
			Timestamp: cfg.StartTime.Add(time.Duration(i) * cfg.Interval),
			Lat:       lat,
			Lon:       lon,
		}
	}
	return out
}
