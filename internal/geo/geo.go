package geo

import (
	"math"

	"github.com/rescuegrid/backend/internal/models"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two coordinates in
// kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	lat1R := degreesToRadians(lat1)
	lat2R := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1R)*math.Cos(lat2R)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}

// PathLengthKm sums the haversine lengths of consecutive waypoint segments.
func PathLengthKm(points []models.Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += HaversineKm(points[i-1].Latitude, points[i-1].Longitude,
			points[i].Latitude, points[i].Longitude)
	}
	return total
}

// PointAlong locates the coordinate at the given fraction of the path's total
// length, interpolating within the segment the fraction falls into so that the
// result follows the waypoint geometry rather than a start/end chord.
// The fraction is clamped to [0, 1].
func PointAlong(points []models.Point, frac float64) models.Point {
	if len(points) == 0 {
		return models.Point{}
	}
	if len(points) == 1 || frac <= 0 {
		return points[0]
	}
	if frac >= 1 {
		return points[len(points)-1]
	}

	total := PathLengthKm(points)
	if total == 0 {
		return points[len(points)-1]
	}

	target := frac * total
	var walked float64
	for i := 1; i < len(points); i++ {
		seg := HaversineKm(points[i-1].Latitude, points[i-1].Longitude,
			points[i].Latitude, points[i].Longitude)
		if walked+seg >= target {
			if seg == 0 {
				return points[i]
			}
			t := (target - walked) / seg
			return models.Point{
				Latitude:  points[i-1].Latitude + (points[i].Latitude-points[i-1].Latitude)*t,
				Longitude: points[i-1].Longitude + (points[i].Longitude-points[i-1].Longitude)*t,
			}
		}
		walked += seg
	}
	return points[len(points)-1]
}
