package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/rescuegrid/backend/internal/geo"
	"github.com/rescuegrid/backend/internal/models"
)

// Dispatcher matches unassigned REPORTED incidents to AVAILABLE,
// type-compatible vehicles within a radius. One pass claims each vehicle at
// most once; a failed incident never aborts the pass.
type Dispatcher struct {
	Store       Store
	Assignments *AssignmentService
	Simulator   *RouteSimulator
	Clock       Clock
	Logger      zerolog.Logger

	MaxRadiusKm    float64
	SeverityWeight float64
	AssignedBy     string

	enabled atomic.Bool
	mu      sync.Mutex
}

// SetEnabled flips the automation toggle. A disabled dispatcher keeps its
// schedule but every pass is a no-op.
func (d *Dispatcher) SetEnabled(v bool) { d.enabled.Store(v) }

func (d *Dispatcher) Enabled() bool { return d.enabled.Load() }

// RunPass executes one dispatch pass. Passes never overlap: if a previous
// pass is still in flight this invocation is skipped.
func (d *Dispatcher) RunPass(ctx context.Context) error {
	if !d.mu.TryLock() {
		d.Logger.Debug().Msg("dispatch pass skipped, previous pass still running")
		return nil
	}
	defer d.mu.Unlock()

	if !d.Enabled() {
		return nil
	}

	now := d.Clock.Now()
	incidents, err := d.Store.ListReportedIncidentsByPriority(ctx, d.SeverityWeight, now)
	if err != nil {
		return err
	}
	if len(incidents) == 0 {
		return nil
	}

	// Available fleet snapshot per vehicle type, fetched once per pass.
	fleet := map[models.VehicleType][]models.Vehicle{}
	for _, vtype := range []models.VehicleType{models.VehicleAmbulance, models.VehicleFireTruck, models.VehiclePoliceCar} {
		vehicles, err := d.Store.ListAvailableVehiclesByType(ctx, vtype)
		if err != nil {
			return err
		}
		fleet[vtype] = vehicles
	}

	claimed := map[int64]bool{}
	var assigned, unmatched, failed int

	for _, inc := range incidents {
		vehicle, ok := d.pickVehicle(inc, fleet, claimed)
		if !ok {
			unmatched++
			continue
		}

		// Each incident's match-and-commit is its own atomic unit; a failure
		// here leaves the vehicle unclaimed and the pass moves on.
		if _, err := d.Assignments.Create(ctx, inc.ID, vehicle.ID, d.AssignedBy); err != nil {
			failed++
			d.Logger.Warn().Err(err).
				Int64("incident_id", inc.ID).
				Int64("vehicle_id", vehicle.ID).
				Msg("dispatch failed for incident")
			continue
		}

		claimed[vehicle.ID] = true
		assigned++

		if d.Simulator != nil {
			dest := models.Point{Latitude: inc.Latitude, Longitude: inc.Longitude}
			if err := d.Simulator.StartRoute(ctx, vehicle.ID, dest); err != nil {
				d.Logger.Warn().Err(err).Int64("vehicle_id", vehicle.ID).Msg("route start failed")
			}
		}
	}

	d.Logger.Info().
		Int("incidents", len(incidents)).
		Int("assigned", assigned).
		Int("unmatched", unmatched).
		Int("failed", failed).
		Msg("dispatch pass complete")
	return nil
}

// pickVehicle returns the closest unclaimed compatible vehicle within the max
// radius. Ties keep the first candidate in stable fleet order.
func (d *Dispatcher) pickVehicle(inc models.Incident, fleet map[models.VehicleType][]models.Vehicle, claimed map[int64]bool) (models.Vehicle, bool) {
	vtype, ok := models.VehicleTypeFor(inc.ServiceType)
	if !ok {
		return models.Vehicle{}, false
	}

	var best models.Vehicle
	bestDist := -1.0
	for _, v := range fleet[vtype] {
		if claimed[v.ID] {
			continue
		}
		dist := geo.HaversineKm(inc.Latitude, inc.Longitude, v.Latitude, v.Longitude)
		if dist > d.MaxRadiusKm {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best = v
			bestDist = dist
		}
	}
	return best, bestDist >= 0
}
