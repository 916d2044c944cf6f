// Package geo holds the small amount of geodesy the estimator needs: great
// circle distance on a spherical Earth and a local equirectangular projection
// between metre offsets and degrees.
//
// The projection treats the neighbourhood of a reference point as flat. It is
// accurate over a few kilometres away from the poles and degrades as
// cos(latitude) approaches zero; no clamping is applied.
package geo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kilianp07/trailcast/core/model"
)

const (
	// EarthRadiusM is the mean Earth radius used by Haversine.
	EarthRadiusM = 6371000.0
	// MetersPerDegree is the length of one degree of latitude, and of one
	// degree of longitude at the equator.
	MetersPerDegree = 111320.0
)

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// Haversine returns the great-circle distance between a and b in metres.
func Haversine(a, b model.Point) float64 {
	lat1, lon1 := radians(a.Lat), radians(a.Lon)
	lat2, lon2 := radians(b.Lat), radians(b.Lon)
	dlat := lat2 - lat1
	dlon := lon2 - lon1
	h := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	return 2 * EarthRadiusM * math.Asin(math.Sqrt(h))
}

// PlanarBearing returns atan2(Δlon, Δlat) in radians, measured clockwise from
// north on raw degree deltas. It is not a spherical initial bearing.
func PlanarBearing(a, b model.Point) float64 {
	return math.Atan2(b.Lon-a.Lon, b.Lat-a.Lat)
}

// Displacement returns the east/north vector of length dist along bearing.
func Displacement(dist, bearing float64) r2.Vec {
	return r2.Vec{X: dist * math.Sin(bearing), Y: dist * math.Cos(bearing)}
}

// Offset moves ref by d metres (X east, Y north) using the local
// equirectangular approximation around ref.
func Offset(ref model.Point, d r2.Vec) model.Point {
	dlat := d.Y / MetersPerDegree
	dlon := d.X / (MetersPerDegree * math.Cos(radians(ref.Lat)))
	return model.Point{Lat: ref.Lat + dlat, Lon: ref.Lon + dlon}
}

// Steps returns the haversine length of every consecutive pair in pts.
func Steps(pts []model.Point) []float64 {
	if len(pts) < 2 {
		return nil
	}
	out := make([]float64, 0, len(pts)-1)
	for i := 1; i < len(pts); i++ {
		out = append(out, Haversine(pts[i-1], pts[i]))
	}
	return out
}

// Centroid returns the arithmetic mean of the coordinates. ok is false for an
// empty input.
func Centroid(pts []model.Point) (model.Point, bool) {
	if len(pts) == 0 {
		return model.Point{}, false
	}
	var sum r2.Vec
	for _, p := range pts {
		sum = r2.Add(sum, r2.Vec{X: p.Lon, Y: p.Lat})
	}
	mean := r2.Scale(1/float64(len(pts)), sum)
	return model.Point{Lat: mean.Y, Lon: mean.X}, true
}
