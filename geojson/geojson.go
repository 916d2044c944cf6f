// Package geojson renders a track and its prediction as a GeoJSON
// FeatureCollection that map front-ends can draw as layers. Coordinates are
// [lon, lat] as RFC 7946 requires.
package geojson

import (
	"time"

	"github.com/kilianp07/trailcast/core/geo"
	"github.com/kilianp07/trailcast/core/model"
	"github.com/kilianp07/trailcast/core/prediction"
)

// Feature kinds set in the "kind" property.
const (
	KindPath        = "path"
	KindObservation = "observation"
	KindPrediction  = "prediction"
	KindUncertainty = "uncertainty"
)

// FeatureCollection is a GeoJSON feature collection. Center is a foreign
// member holding the mean observed position, used to centre the view.
type FeatureCollection struct {
	Type     string      `json:"type"`
	Features []Feature   `json:"features"`
	Center   *[2]float64 `json:"center,omitempty"`
}

// Feature is a single GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry holds a Point, LineString or Polygon.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

func position(p model.Point) [2]float64 { return [2]float64{p.Lon, p.Lat} }

// Point builds a Point feature.
func Point(p model.Point, props map[string]any) Feature {
	return Feature{Type: "Feature", Geometry: Geometry{Type: "Point", Coordinates: position(p)}, Properties: props}
}

// LineString builds a LineString feature.
func LineString(pts []model.Point, props map[string]any) Feature {
	coords := make([][2]float64, len(pts))
	for i, p := range pts {
		coords[i] = position(p)
	}
	return Feature{Type: "Feature", Geometry: Geometry{Type: "LineString", Coordinates: coords}, Properties: props}
}

// Polygon builds a single-ring Polygon feature. ring must already be closed.
func Polygon(ring []model.Point, props map[string]any) Feature {
	coords := make([][2]float64, len(ring))
	for i, p := range ring {
		coords[i] = position(p)
	}
	return Feature{Type: "Feature", Geometry: Geometry{Type: "Polygon", Coordinates: [][][2]float64{coords}}, Properties: props}
}

// View assembles the path, the observed points and, when pred is not nil,
// the predicted point with its uncertainty ring of the given segment count.
func View(obs []model.Observation, pred *model.Prediction, segments int) (FeatureCollection, error) {
	fc := FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
	pts := make([]model.Point, len(obs))
	for i, o := range obs {
		pts[i] = o.Point()
	}
	if c, ok := geo.Centroid(pts); ok {
		pos := position(c)
		fc.Center = &pos
	}
	if len(pts) >= 2 {
		fc.Features = append(fc.Features, LineString(pts, map[string]any{"kind": KindPath}))
	}
	for i, o := range obs {
		fc.Features = append(fc.Features, Point(o.Point(), map[string]any{
			"kind":      KindObservation,
			"index":     i,
			"timestamp": o.Timestamp.UTC().Format(time.RFC3339),
		}))
	}
	if pred == nil {
		return fc, nil
	}
	ring, err := prediction.CircleBoundary(pred.Point(), pred.RadiusM, segments)
	if err != nil {
		return FeatureCollection{}, err
	}
	fc.Features = append(fc.Features,
		Point(pred.Point(), map[string]any{"kind": KindPrediction, "radius_m": pred.RadiusM}),
		Polygon(ring, map[string]any{"kind": KindUncertainty, "radius_m": pred.RadiusM}),
	)
	return fc, nil
}
