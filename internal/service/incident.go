package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rescuegrid/backend/internal/cache"
	"github.com/rescuegrid/backend/internal/models"
)

// IncidentService owns incident lifecycle transitions. Statuses only move
// forward: REPORTED, ACCEPTED, ASSIGNED, RESOLVED; cancellation deletes the
// record.
type IncidentService struct {
	Store    Store
	Notifier cache.Notifier
	Routes   cache.RouteStore
	Clock    Clock
	Logger   zerolog.Logger
}

func (s *IncidentService) Report(ctx context.Context, inc models.Incident) (models.Incident, error) {
	if inc.Severity < 1 || inc.Severity > 5 {
		return models.Incident{}, fmt.Errorf("%w: severity must be between 1 and 5", ErrInvalidState)
	}
	if _, ok := models.VehicleTypeFor(inc.ServiceType); !ok {
		return models.Incident{}, fmt.Errorf("%w: unknown service type %q", ErrInvalidState, inc.ServiceType)
	}

	inc.Status = models.IncidentReported
	inc.ReportedAt = s.Clock.Now()

	created, err := s.Store.CreateIncident(ctx, inc)
	if err != nil {
		return models.Incident{}, err
	}

	s.notify(ctx, cache.TopicReportedIncidents)
	s.notify(ctx, cache.TopicNotifications)
	return created, nil
}

func (s *IncidentService) Get(ctx context.Context, id int64) (models.Incident, error) {
	return s.Store.GetIncident(ctx, id)
}

func (s *IncidentService) List(ctx context.Context) ([]models.Incident, error) {
	return s.Store.ListIncidents(ctx)
}

func (s *IncidentService) ListByStatus(ctx context.Context, status models.IncidentStatus) ([]models.Incident, error) {
	return s.Store.ListIncidentsByStatus(ctx, status)
}

// Accept is idempotent: accepting an already-ACCEPTED incident changes nothing
// and emits no notification.
func (s *IncidentService) Accept(ctx context.Context, id int64) (models.Incident, error) {
	inc, err := s.Store.GetIncident(ctx, id)
	if err != nil {
		return models.Incident{}, err
	}
	if inc.Status == models.IncidentAccepted {
		return inc, nil
	}
	if inc.Status != models.IncidentReported {
		return models.Incident{}, fmt.Errorf("%w: cannot accept incident in status %s", ErrInvalidState, inc.Status)
	}

	if err := s.Store.SetIncidentStatus(ctx, id, models.IncidentAccepted, nil, nil); err != nil {
		return models.Incident{}, err
	}
	inc.Status = models.IncidentAccepted

	s.notify(ctx, cache.TopicReportedIncidents)
	s.notify(ctx, cache.TopicAcceptedIncidents)
	return inc, nil
}

// Resolve forces the incident RESOLVED regardless of its assignments. The
// assignment-driven path is CheckCompletion.
func (s *IncidentService) Resolve(ctx context.Context, id int64) (models.Incident, error) {
	inc, err := s.Store.GetIncident(ctx, id)
	if err != nil {
		return models.Incident{}, err
	}
	if inc.Status == models.IncidentResolved {
		return inc, nil
	}

	now := s.Clock.Now()
	if err := s.Store.SetIncidentStatus(ctx, id, models.IncidentResolved, nil, &now); err != nil {
		return models.Incident{}, err
	}
	inc.Status = models.IncidentResolved
	inc.ResolvedAt = &now

	s.notify(ctx, cache.TopicAcceptedIncidents)
	s.notify(ctx, cache.TopicNotifications)
	return inc, nil
}

// Cancel deletes the incident record; assignments cascade with it. Vehicles
// held only by this incident's assignments are released first, and their
// simulated routes dropped, so nothing keeps driving toward a deleted incident.
func (s *IncidentService) Cancel(ctx context.Context, id int64) error {
	inc, err := s.Store.GetIncident(ctx, id)
	if err != nil {
		return err
	}
	if inc.Status == models.IncidentResolved {
		return fmt.Errorf("%w: cannot cancel a resolved incident", ErrInvalidState)
	}

	assignments, err := s.Store.ListAssignmentsByIncident(ctx, id)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		if a.Status.Terminal() {
			continue
		}
		heldElsewhere, err := s.vehicleHeldByOtherIncident(ctx, a.VehicleID, id)
		if err != nil {
			return err
		}
		if heldElsewhere {
			continue
		}
		if err := s.Store.SetVehicleStatus(ctx, a.VehicleID, models.VehicleAvailable); err != nil {
			return err
		}
		if s.Routes != nil {
			if err := s.Routes.Delete(ctx, a.VehicleID); err != nil {
				s.Logger.Warn().Err(err).Int64("vehicle_id", a.VehicleID).Msg("failed to drop route")
			}
		}
	}

	if err := s.Store.DeleteIncident(ctx, id); err != nil {
		return err
	}
	s.notify(ctx, cache.TopicReportedIncidents)
	s.notify(ctx, cache.TopicAcceptedIncidents)
	s.notify(ctx, cache.TopicVehicles)
	return nil
}

func (s *IncidentService) vehicleHeldByOtherIncident(ctx context.Context, vehicleID, incidentID int64) (bool, error) {
	active, err := s.Store.ListActiveAssignmentsByVehicle(ctx, vehicleID)
	if err != nil {
		return false, err
	}
	for _, other := range active {
		if other.IncidentID != incidentID {
			return true, nil
		}
	}
	return false, nil
}

func (s *IncidentService) SetSeverity(ctx context.Context, id int64, severity int) (models.Incident, error) {
	if severity < 1 || severity > 5 {
		return models.Incident{}, fmt.Errorf("%w: severity must be between 1 and 5", ErrInvalidState)
	}
	inc, err := s.Store.GetIncident(ctx, id)
	if err != nil {
		return models.Incident{}, err
	}
	if err := s.Store.SetIncidentSeverity(ctx, id, severity); err != nil {
		return models.Incident{}, err
	}
	inc.Severity = severity

	if inc.Status == models.IncidentAccepted {
		s.notify(ctx, cache.TopicAcceptedIncidents)
	} else {
		s.notify(ctx, cache.TopicReportedIncidents)
	}
	return inc, nil
}

// CheckCompletion resolves the incident iff it has at least one assignment and
// every assignment is COMPLETED. An incident with no assignments never
// auto-resolves. Returns whether the incident was resolved by this call.
func (s *IncidentService) CheckCompletion(ctx context.Context, incidentID int64) (bool, error) {
	inc, err := s.Store.GetIncident(ctx, incidentID)
	if err != nil {
		return false, err
	}
	if inc.Status == models.IncidentResolved {
		return false, nil
	}

	assignments, err := s.Store.ListAssignmentsByIncident(ctx, incidentID)
	if err != nil {
		return false, err
	}
	if len(assignments) == 0 {
		return false, nil
	}
	for _, a := range assignments {
		if a.Status != models.AssignmentCompleted {
			return false, nil
		}
	}

	now := s.Clock.Now()
	if err := s.Store.SetIncidentStatus(ctx, incidentID, models.IncidentResolved, nil, &now); err != nil {
		return false, err
	}

	s.notify(ctx, cache.TopicAcceptedIncidents)
	s.notify(ctx, cache.TopicNotifications)
	return true, nil
}

// notify is fire-and-forget; a failed broadcast is logged, never retried.
func (s *IncidentService) notify(ctx context.Context, topic string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(ctx, topic, map[string]any{"changed": topic}); err != nil {
		s.Logger.Warn().Err(err).Str("topic", topic).Msg("notify failed")
	}
}
