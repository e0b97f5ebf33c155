package geo

import (
	"math"
	"testing"

	"github.com/rescuegrid/backend/internal/models"
)

func TestHaversineKm_KnownDistance(t *testing.T) {
	// Astana to Almaty, roughly 970 km.
	d := HaversineKm(51.1694, 71.4491, 43.2389, 76.8897)
	if d < 950 || d > 990 {
		t.Fatalf("expected ~970 km, got %f", d)
	}
}

func TestHaversineKm_ZeroForSamePoint(t *testing.T) {
	if d := HaversineKm(51.1694, 71.4491, 51.1694, 71.4491); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestPathLengthKm_SumsSegments(t *testing.T) {
	points := []models.Point{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 1},
		{Latitude: 0, Longitude: 2},
	}
	total := PathLengthKm(points)
	direct := HaversineKm(0, 0, 0, 2)
	if math.Abs(total-direct) > 0.001 {
		t.Fatalf("collinear path length %f should match direct distance %f", total, direct)
	}
	if PathLengthKm(points[:1]) != 0 {
		t.Fatalf("single point path should have zero length")
	}
}

func TestPointAlong_Midpoint(t *testing.T) {
	points := []models.Point{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 2},
	}
	mid := PointAlong(points, 0.5)
	if math.Abs(mid.Longitude-1) > 0.001 || math.Abs(mid.Latitude) > 0.001 {
		t.Fatalf("expected midpoint near (0, 1), got (%f, %f)", mid.Latitude, mid.Longitude)
	}
}

func TestPointAlong_FollowsWaypoints(t *testing.T) {
	// Right-angle path: half the length ends at the corner, not on the chord.
	points := []models.Point{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 1},
		{Latitude: 1, Longitude: 1},
	}
	corner := PointAlong(points, 0.5)
	if math.Abs(corner.Latitude) > 0.01 || math.Abs(corner.Longitude-1) > 0.01 {
		t.Fatalf("expected corner near (0, 1), got (%f, %f)", corner.Latitude, corner.Longitude)
	}
}

func TestPointAlong_Clamps(t *testing.T) {
	points := []models.Point{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 2},
	}
	if p := PointAlong(points, -0.5); p != points[0] {
		t.Fatalf("negative fraction should clamp to start, got %+v", p)
	}
	if p := PointAlong(points, 1.5); p != points[1] {
		t.Fatalf("fraction over 1 should clamp to end, got %+v", p)
	}
	if p := PointAlong(nil, 0.5); p != (models.Point{}) {
		t.Fatalf("empty path should return zero point, got %+v", p)
	}
}
