package utils

import (
	"math"
	"testing"
)

func TestHaversineMeters(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{name: "same point", lat1: 52.52, lon1: 13.405, lat2: 52.52, lon2: 13.405, want: 0, tolerance: 0.001},
		// Berlin to Paris, roughly 878 km
		{name: "berlin to paris", lat1: 52.5200, lon1: 13.4050, lat2: 48.8566, lon2: 2.3522, want: 878000, tolerance: 2000},
		// one degree of latitude at the equator
		{name: "one degree latitude", lat1: 0, lon1: 0, lat2: 1, lon2: 0, want: 111195, tolerance: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineMeters(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("HaversineMeters = %.1f, want %.1f +/- %.1f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestHaversineIsSymmetric(t *testing.T) {
	a := HaversineMeters(10.5, 20.5, 11.5, 21.5)
	b := HaversineMeters(11.5, 21.5, 10.5, 20.5)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", a, b)
	}
}

func TestWithinTolerance(t *testing.T) {
	// ~0.00054 degrees of latitude is about 60 m, ~0.00036 about 40 m.
	const lat, lon = 1.3521, 103.8198

	if !WithinTolerance(lat, lon, lat, lon, 50) {
		t.Error("identical coordinates should always be within tolerance")
	}
	if !WithinTolerance(lat, lon, lat+0.00036, lon, 50) {
		t.Error("a point ~40 m away should be within a 50 m tolerance")
	}
	if WithinTolerance(lat, lon, lat+0.00054, lon, 50) {
		t.Error("a point ~60 m away should be outside a 50 m tolerance")
	}
}

func TestWithinToleranceBoundaryIsInclusive(t *testing.T) {
	const lat, lon = 48.1351, 11.5820
	other := lat + 0.0004

	exact := HaversineMeters(lat, lon, other, lon)
	if !WithinTolerance(lat, lon, other, lon, exact) {
		t.Errorf("a point exactly %.3f m away should pass a %.3f m tolerance", exact, exact)
	}
	if WithinTolerance(lat, lon, other, lon, exact-0.01) {
		t.Error("a point just past the tolerance should fail")
	}
}
