package routing

import (
	"context"
	"errors"
	"time"

	"github.com/rescuegrid/backend/internal/geo"
	"github.com/rescuegrid/backend/internal/models"
)

var ErrNoRoute = errors.New("no route found")

// Result is a road route between two coordinates.
type Result struct {
	Points     []models.Point
	DistanceKm float64
	Duration   time.Duration
}

// Provider resolves a driving route between two points. Implementations may
// fail; callers are expected to degrade to StraightLine.
type Provider interface {
	Route(ctx context.Context, from, to models.Point) (Result, error)
}

// fallbackSpeedKmh is the nominal speed used to estimate travel time when no
// road route is available.
const fallbackSpeedKmh = 60.0

// StraightLine builds a two-point route with duration estimated from the
// great-circle distance at a nominal speed. It never fails, so simulation can
// always proceed when the road routing provider is unavailable.
func StraightLine(from, to models.Point) Result {
	distKm := geo.HaversineKm(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
	return Result{
		Points:     []models.Point{from, to},
		DistanceKm: distKm,
		Duration:   time.Duration(distKm / fallbackSpeedKmh * float64(time.Hour)),
	}
}

// StraightLineProvider satisfies Provider without any external dependency.
// It is used when no OSRM endpoint is configured.
type StraightLineProvider struct{}

func (StraightLineProvider) Route(_ context.Context, from, to models.Point) (Result, error) {
	return StraightLine(from, to), nil
}
