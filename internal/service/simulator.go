package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/rescuegrid/backend/internal/cache"
	"github.com/rescuegrid/backend/internal/geo"
	"github.com/rescuegrid/backend/internal/models"
	"github.com/rescuegrid/backend/internal/routing"
)

// RouteSimulator advances dispatched vehicles along a routed path on a fixed
// tick. Positions land in the hot cache only; the flusher persists them.
type RouteSimulator struct {
	Provider    routing.Provider
	Routes      cache.RouteStore
	Positions   cache.PositionStore
	Store       Store
	Assignments *AssignmentService
	Clock       Clock
	Logger      zerolog.Logger

	SpeedMultiplier    float64
	ArrivalThresholdKm float64
	ServiceTime        time.Duration
}

// StartRoute computes a route from the vehicle's current position to dest and
// registers it for ticking. A routing provider failure degrades to a
// straight-line route rather than leaving the vehicle parked.
func (s *RouteSimulator) StartRoute(ctx context.Context, vehicleID int64, dest models.Point) error {
	from, err := s.currentPosition(ctx, vehicleID)
	if err != nil {
		return err
	}

	result, err := s.Provider.Route(ctx, from, dest)
	if err != nil {
		s.Logger.Warn().Err(err).Int64("vehicle_id", vehicleID).Msg("routing provider failed, using straight line")
		result = routing.StraightLine(from, dest)
	}

	duration := result.Duration
	if mult := s.SpeedMultiplier; mult > 0 {
		duration = time.Duration(float64(duration) / mult)
	}

	route := models.Route{
		VehicleID: vehicleID,
		Points:    result.Points,
		Duration:  duration,
		StartedAt: s.Clock.Now(),
	}
	return s.Routes.Set(ctx, route)
}

// StopRoute drops the active route for a vehicle, if any.
func (s *RouteSimulator) StopRoute(ctx context.Context, vehicleID int64) error {
	return s.Routes.Delete(ctx, vehicleID)
}

// Tick moves every active route forward to the current instant. A failure on
// one vehicle is logged and the tick continues with the rest.
func (s *RouteSimulator) Tick(ctx context.Context) error {
	routes, err := s.Routes.All(ctx)
	if err != nil {
		return err
	}

	now := s.Clock.Now()
	for _, route := range routes {
		if err := s.advance(ctx, route, now); err != nil {
			s.Logger.Warn().Err(err).Int64("vehicle_id", route.VehicleID).Msg("route tick failed")
		}
	}

	return s.completeServiced(ctx, now)
}

func (s *RouteSimulator) advance(ctx context.Context, route models.Route, now time.Time) error {
	progress := 1.0
	if route.Duration > 0 {
		progress = float64(now.Sub(route.StartedAt)) / float64(route.Duration)
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	pos := geo.PointAlong(route.Points, progress)
	if err := s.Positions.Set(ctx, route.VehicleID, pos.Latitude, pos.Longitude, now); err != nil {
		return err
	}

	if progress < 1 && !s.withinArrival(pos, route) {
		return nil
	}
	return s.arrive(ctx, route)
}

// withinArrival treats a vehicle inside the threshold radius of its
// destination as arrived, so float drift in interpolation cannot strand it.
func (s *RouteSimulator) withinArrival(pos models.Point, route models.Route) bool {
	if len(route.Points) == 0 || s.ArrivalThresholdKm <= 0 {
		return false
	}
	dest := route.Points[len(route.Points)-1]
	return geo.HaversineKm(pos.Latitude, pos.Longitude, dest.Latitude, dest.Longitude) <= s.ArrivalThresholdKm
}

func (s *RouteSimulator) arrive(ctx context.Context, route models.Route) error {
	if err := s.Routes.Delete(ctx, route.VehicleID); err != nil {
		return err
	}

	assignments, err := s.Store.ListActiveAssignmentsByVehicle(ctx, route.VehicleID)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		if a.Status != models.AssignmentAssigned && a.Status != models.AssignmentEnroute {
			continue
		}
		if _, err := s.Assignments.Arrive(ctx, a.ID); err != nil && !errors.Is(err, ErrInvalidState) {
			return err
		}
	}
	return nil
}

// completeServiced completes arrived assignments whose on-scene service time
// has elapsed.
func (s *RouteSimulator) completeServiced(ctx context.Context, now time.Time) error {
	if s.ServiceTime <= 0 {
		return nil
	}
	arrived, err := s.Store.ListAssignmentsByStatus(ctx, models.AssignmentArrived)
	if err != nil {
		return err
	}
	for _, a := range arrived {
		if a.ArrivedAt == nil || now.Sub(*a.ArrivedAt) < s.ServiceTime {
			continue
		}
		if _, err := s.Assignments.Complete(ctx, a.ID); err != nil {
			s.Logger.Warn().Err(err).Int64("assignment_id", a.ID).Msg("auto-complete failed")
		}
	}
	return nil
}

func (s *RouteSimulator) currentPosition(ctx context.Context, vehicleID int64) (models.Point, error) {
	if pos, ok, err := s.Positions.Get(ctx, vehicleID); err == nil && ok {
		return models.Point{Latitude: pos.Latitude, Longitude: pos.Longitude}, nil
	}
	v, err := s.Store.GetVehicle(ctx, vehicleID)
	if err != nil {
		return models.Point{}, err
	}
	return models.Point{Latitude: v.Latitude, Longitude: v.Longitude}, nil
}
