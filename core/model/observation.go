package model

import (
	"fmt"
	"time"
)

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String formats the point with five decimals, roughly one metre of precision.
func (p Point) String() string {
	return fmt.Sprintf("(%.5f, %.5f)", p.Lat, p.Lon)
}

// Observation records where and when an event was seen.
// Sequences of observations are kept oldest first.
type Observation struct {
	Timestamp time.Time `json:"timestamp"`
	Lat       float64   `json:"lat" validate:"gte=-90,lte=90"`
	Lon       float64   `json:"lon" validate:"gte=-180,lte=180"`
}

// Point returns the coordinate part of the observation.
func (o Observation) Point() Point {
	return Point{Lat: o.Lat, Lon: o.Lon}
}

// Prediction is the estimated next location together with a display radius.
// It is derived from the two most recent observations and never stored by the
// estimator itself.
type Prediction struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	RadiusM float64 `json:"radius_m"`
}

// Point returns the predicted coordinate.
func (p Prediction) Point() Point {
	return Point{Lat: p.Lat, Lon: p.Lon}
}

// String renders the prediction the way operators read it: "(lat, lon) ± r m".
func (p Prediction) String() string {
	return fmt.Sprintf("%s ± %gm", p.Point(), p.RadiusM)
}
