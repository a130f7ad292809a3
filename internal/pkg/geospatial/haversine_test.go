package geospatial_test

import (
	"math"
	"testing"

	"github.com/lalit-0106/gps-attendance-app/internal/pkg/geospatial"
)

const (
	officeLat = 17.436923
	officeLon = 78.373906
)

func TestHaversine_SamePoint(t *testing.T) {
	d := geospatial.Haversine(officeLat, officeLon, officeLat, officeLon)
	if d != 0 {
		t.Errorf("expected 0 for identical points, got %f", d)
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// 0.002 degrees of latitude is roughly 222m on the ground.
	d := geospatial.Haversine(officeLat, officeLon, officeLat+0.002, officeLon)
	if math.Abs(d-222.39) > 0.5 {
		t.Errorf("expected ~222.39m, got %f", d)
	}
}

func TestHaversine_Symmetry(t *testing.T) {
	points := [][4]float64{
		{17.436923, 78.373906, 17.437391, 78.374825},
		{43.263, -2.935, 43.264, -2.934},
		{-33.8688, 151.2093, 51.5074, -0.1278},
	}
	for _, p := range points {
		ab := geospatial.Haversine(p[0], p[1], p[2], p[3])
		ba := geospatial.Haversine(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("distance not symmetric: %f vs %f", ab, ba)
		}
	}
}

func TestHaversine_NonNegative(t *testing.T) {
	points := [][4]float64{
		{0, 0, 0, 0},
		{90, 0, -90, 0},
		{17.4, 78.3, 17.4, 78.3001},
		{-45, -170, 45, 170},
	}
	for _, p := range points {
		if d := geospatial.Haversine(p[0], p[1], p[2], p[3]); d < 0 {
			t.Errorf("negative distance %f for %v", d, p)
		}
	}
}

func TestHaversine_Antipodal(t *testing.T) {
	d := geospatial.Haversine(0, 0, 0, 180)
	want := math.Pi * geospatial.EarthRadiusMeters
	if math.Abs(d-want) > 1 {
		t.Errorf("expected ~%f for antipodal points, got %f", want, d)
	}
}

func TestDestination_RoundTrip(t *testing.T) {
	bearings := []float64{0, 45, 90, 135, 180, 225, 270, 315}
	for _, b := range bearings {
		lat, lon := geospatial.Destination(officeLat, officeLon, b, 150)
		d := geospatial.Haversine(officeLat, officeLon, lat, lon)
		if math.Abs(d-150) > 0.01 {
			t.Errorf("bearing %.0f: expected 150m back, got %f", b, d)
		}
	}
}

func TestDestination_NormalizesLongitude(t *testing.T) {
	// Heading east across the antimeridian must wrap into [-180, 180).
	_, lon := geospatial.Destination(0, 179.999, 90, 50000)
	if lon < -180 || lon >= 180 {
		t.Errorf("longitude not normalized: %f", lon)
	}
}

func TestBoundingBox_ContainsCircle(t *testing.T) {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(officeLat, officeLon, 150)
	bearings := []float64{0, 90, 180, 270}
	for _, b := range bearings {
		lat, lon := geospatial.Destination(officeLat, officeLon, b, 150)
		if lat < minLat-1e-6 || lat > maxLat+1e-6 || lon < minLon-1e-6 || lon > maxLon+1e-6 {
			t.Errorf("bearing %.0f: point (%f, %f) outside box (%f, %f, %f, %f)",
				b, lat, lon, minLat, minLon, maxLat, maxLon)
		}
	}
}
