package model

import (
	"testing"
	"time"
)

func TestObservationPoint(t *testing.T) {
	o := Observation{Timestamp: time.Unix(0, 0), Lat: 37.5, Lon: 127}
	p := o.Point()
	if p.Lat != 37.5 || p.Lon != 127 {
		t.Fatalf("unexpected point %v", p)
	}
}

func TestPredictionString(t *testing.T) {
	p := Prediction{Lat: 37.56651, Lon: 126.97801, RadiusM: 200}
	if got := p.String(); got != "(37.56651, 126.97801) ± 200m" {
		t.Fatalf("unexpected format %q", got)
	}
}
