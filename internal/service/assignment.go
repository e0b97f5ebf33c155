package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rescuegrid/backend/internal/cache"
	"github.com/rescuegrid/backend/internal/db"
	"github.com/rescuegrid/backend/internal/models"
)

// AssignmentService owns the assignment state machine:
// ASSIGNED -> ENROUTE -> ARRIVED -> COMPLETED, with CANCELLED reachable from
// ASSIGNED or ENROUTE. A status transition and its dependent vehicle-status
// write always commit in the same transaction.
type AssignmentService struct {
	Store     Store
	Incidents *IncidentService
	Notifier  cache.Notifier
	Routes    cache.RouteStore
	Clock     Clock
	Logger    zerolog.Logger
}

// Create binds an AVAILABLE, type-compatible vehicle to the incident. The
// vehicle claim, the assignment row, and the incident's ASSIGNED transition
// commit together.
func (s *AssignmentService) Create(ctx context.Context, incidentID, vehicleID int64, assignedBy string) (models.Assignment, error) {
	inc, err := s.Store.GetIncident(ctx, incidentID)
	if err != nil {
		return models.Assignment{}, fmt.Errorf("incident %d: %w", incidentID, err)
	}
	if inc.Status == models.IncidentResolved {
		return models.Assignment{}, fmt.Errorf("%w: incident %d is already resolved", ErrInvalidState, incidentID)
	}

	vehicle, err := s.Store.GetVehicle(ctx, vehicleID)
	if err != nil {
		return models.Assignment{}, fmt.Errorf("vehicle %d: %w", vehicleID, err)
	}
	if vehicle.Status != models.VehicleAvailable {
		return models.Assignment{}, fmt.Errorf("%w: vehicle %d is %s", ErrInvalidState, vehicleID, vehicle.Status)
	}

	created, err := s.Store.CreateAssignment(ctx, models.Assignment{
		IncidentID: incidentID,
		VehicleID:  vehicleID,
		AssignedBy: assignedBy,
		Status:     models.AssignmentAssigned,
		AssignedAt: s.Clock.Now(),
	})
	if err != nil {
		if errors.Is(err, db.ErrVehicleUnavailable) {
			return models.Assignment{}, fmt.Errorf("%w: vehicle %d was claimed concurrently", ErrInvalidState, vehicleID)
		}
		return models.Assignment{}, err
	}

	s.notify(ctx, cache.TopicReportedIncidents)
	s.notify(ctx, cache.TopicAcceptedIncidents)
	return created, nil
}

func (s *AssignmentService) Get(ctx context.Context, id int64) (models.Assignment, error) {
	return s.Store.GetAssignment(ctx, id)
}

func (s *AssignmentService) List(ctx context.Context) ([]models.Assignment, error) {
	return s.Store.ListAssignments(ctx)
}

func (s *AssignmentService) ListByStatus(ctx context.Context, status models.AssignmentStatus) ([]models.Assignment, error) {
	return s.Store.ListAssignmentsByStatus(ctx, status)
}

// Accept records the responder taking the assignment: ENROUTE, acceptedAt set
// once, vehicle ON_ROUTE.
func (s *AssignmentService) Accept(ctx context.Context, id int64, responder string) (models.Assignment, error) {
	a, err := s.Store.GetAssignment(ctx, id)
	if err != nil {
		return models.Assignment{}, err
	}
	if a.Status != models.AssignmentAssigned && a.Status != models.AssignmentEnroute {
		return models.Assignment{}, fmt.Errorf("%w: cannot accept assignment in status %s", ErrInvalidState, a.Status)
	}

	now := s.Clock.Now()
	if a.AcceptedAt == nil {
		a.AcceptedAt = &now
	}
	a.Status = models.AssignmentEnroute

	onRoute := models.VehicleOnRoute
	if err := s.Store.SaveAssignment(ctx, a, &onRoute); err != nil {
		return models.Assignment{}, err
	}
	s.Logger.Info().Int64("assignment_id", a.ID).Str("responder", responder).Msg("assignment accepted")
	return a, nil
}

// Arrive marks the vehicle on scene. Invoked by the route simulator when the
// simulated position reaches the destination, or manually.
func (s *AssignmentService) Arrive(ctx context.Context, id int64) (models.Assignment, error) {
	a, err := s.Store.GetAssignment(ctx, id)
	if err != nil {
		return models.Assignment{}, err
	}
	if a.Status == models.AssignmentArrived {
		return a, nil
	}
	if a.Status != models.AssignmentAssigned && a.Status != models.AssignmentEnroute {
		return models.Assignment{}, fmt.Errorf("%w: cannot arrive from status %s", ErrInvalidState, a.Status)
	}

	now := s.Clock.Now()
	if a.AcceptedAt == nil {
		a.AcceptedAt = &now
	}
	if a.ArrivedAt == nil {
		a.ArrivedAt = &now
	}
	a.Status = models.AssignmentArrived

	if err := s.Store.SaveAssignment(ctx, a, nil); err != nil {
		return models.Assignment{}, err
	}

	s.notify(ctx, cache.TopicAcceptedIncidents)
	return a, nil
}

// Complete finishes the assignment. The vehicle is released to AVAILABLE in
// the same transaction iff it has no other active assignment, then the
// incident's completion is checked.
func (s *AssignmentService) Complete(ctx context.Context, id int64) (models.Assignment, error) {
	a, err := s.Store.GetAssignment(ctx, id)
	if err != nil {
		return models.Assignment{}, err
	}
	if a.Status != models.AssignmentArrived {
		return models.Assignment{}, fmt.Errorf("%w: cannot complete assignment in status %s", ErrInvalidState, a.Status)
	}

	now := s.Clock.Now()
	a.CompletedAt = &now
	a.Status = models.AssignmentCompleted

	vehicleStatus, err := s.releaseStatus(ctx, a)
	if err != nil {
		return models.Assignment{}, err
	}
	if err := s.Store.SaveAssignment(ctx, a, vehicleStatus); err != nil {
		return models.Assignment{}, err
	}
	if vehicleStatus != nil {
		s.dropRoute(ctx, a.VehicleID)
	}

	if s.Incidents != nil {
		if _, err := s.Incidents.CheckCompletion(ctx, a.IncidentID); err != nil {
			s.Logger.Warn().Err(err).Int64("incident_id", a.IncidentID).Msg("completion check failed")
		}
	}

	s.notify(ctx, cache.TopicAcceptedIncidents)
	s.notify(ctx, cache.TopicVehicles)
	return a, nil
}

// Cancel aborts an assignment that has not arrived yet and releases the
// vehicle when nothing else holds it.
func (s *AssignmentService) Cancel(ctx context.Context, id int64) (models.Assignment, error) {
	a, err := s.Store.GetAssignment(ctx, id)
	if err != nil {
		return models.Assignment{}, err
	}
	if a.Status != models.AssignmentAssigned && a.Status != models.AssignmentEnroute {
		return models.Assignment{}, fmt.Errorf("%w: cannot cancel assignment in status %s", ErrInvalidState, a.Status)
	}

	a.Status = models.AssignmentCancelled

	vehicleStatus, err := s.releaseStatus(ctx, a)
	if err != nil {
		return models.Assignment{}, err
	}
	if err := s.Store.SaveAssignment(ctx, a, vehicleStatus); err != nil {
		return models.Assignment{}, err
	}
	if vehicleStatus != nil {
		s.dropRoute(ctx, a.VehicleID)
	}

	s.notify(ctx, cache.TopicAcceptedIncidents)
	return a, nil
}

// UpdateStatus is the operator-facing transition entry point; it routes to the
// specific lifecycle operation for the requested status.
func (s *AssignmentService) UpdateStatus(ctx context.Context, id int64, status models.AssignmentStatus) (models.Assignment, error) {
	switch status {
	case models.AssignmentEnroute:
		return s.Accept(ctx, id, "")
	case models.AssignmentArrived:
		return s.Arrive(ctx, id)
	case models.AssignmentCompleted:
		return s.Complete(ctx, id)
	case models.AssignmentCancelled:
		return s.Cancel(ctx, id)
	default:
		return models.Assignment{}, fmt.Errorf("%w: cannot transition to %s", ErrInvalidState, status)
	}
}

// Reassign moves the assignment to a new AVAILABLE vehicle, releasing the old
// one and restarting the lifecycle from ASSIGNED: assignedAt is reset and
// acceptedAt/arrivedAt are cleared so the timestamps stay ordered. Legal until
// the assignment completes.
func (s *AssignmentService) Reassign(ctx context.Context, id, newVehicleID int64) (models.Assignment, error) {
	a, err := s.Store.GetAssignment(ctx, id)
	if err != nil {
		return models.Assignment{}, err
	}
	if a.Status == models.AssignmentCompleted {
		return models.Assignment{}, fmt.Errorf("%w: assignment %d is completed", ErrInvalidState, id)
	}

	newVehicle, err := s.Store.GetVehicle(ctx, newVehicleID)
	if err != nil {
		return models.Assignment{}, fmt.Errorf("vehicle %d: %w", newVehicleID, err)
	}
	if newVehicle.Status != models.VehicleAvailable {
		return models.Assignment{}, fmt.Errorf("%w: vehicle %d is %s", ErrInvalidState, newVehicleID, newVehicle.Status)
	}

	now := s.Clock.Now()
	if err := s.Store.ReassignVehicle(ctx, id, a.VehicleID, newVehicleID, now); err != nil {
		if errors.Is(err, db.ErrVehicleUnavailable) {
			return models.Assignment{}, fmt.Errorf("%w: vehicle %d was claimed concurrently", ErrInvalidState, newVehicleID)
		}
		return models.Assignment{}, err
	}

	s.dropRoute(ctx, a.VehicleID)

	a.VehicleID = newVehicleID
	a.AssignedAt = now
	a.AcceptedAt = nil
	a.ArrivedAt = nil
	a.Status = models.AssignmentAssigned

	s.notify(ctx, cache.TopicAcceptedIncidents)
	s.notify(ctx, cache.TopicVehicles)
	return a, nil
}

// dropRoute stops the simulated route of a vehicle that no longer serves this
// assignment. A released vehicle must not keep moving toward the incident.
func (s *AssignmentService) dropRoute(ctx context.Context, vehicleID int64) {
	if s.Routes == nil {
		return
	}
	if err := s.Routes.Delete(ctx, vehicleID); err != nil {
		s.Logger.Warn().Err(err).Int64("vehicle_id", vehicleID).Msg("failed to drop route")
	}
}

// releaseStatus decides whether closing the given assignment frees its
// vehicle: AVAILABLE iff no other non-terminal assignment references it.
func (s *AssignmentService) releaseStatus(ctx context.Context, closing models.Assignment) (*models.VehicleStatus, error) {
	active, err := s.Store.ListActiveAssignmentsByVehicle(ctx, closing.VehicleID)
	if err != nil {
		return nil, err
	}
	for _, other := range active {
		if other.ID != closing.ID {
			return nil, nil
		}
	}
	available := models.VehicleAvailable
	return &available, nil
}

func (s *AssignmentService) notify(ctx context.Context, topic string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(ctx, topic, map[string]any{"changed": topic}); err != nil {
		s.Logger.Warn().Err(err).Str("topic", topic).Msg("notify failed")
	}
}
