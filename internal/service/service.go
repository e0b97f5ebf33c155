package service

import (
	"context"
	"errors"
	"time"

	"github.com/rescuegrid/backend/internal/models"
)

// ErrInvalidState rejects an operation that contradicts the current lifecycle
// state; the caller must correct and retry.
var ErrInvalidState = errors.New("invalid state")

// Clock is injected so lifecycle timestamps are deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func SystemClock() Clock { return systemClock{} }

// Store is the durable persistence consumed by the engine. *db.Store satisfies
// it; tests use an in-memory fake.
type Store interface {
	CreateIncident(ctx context.Context, inc models.Incident) (models.Incident, error)
	GetIncident(ctx context.Context, id int64) (models.Incident, error)
	ListIncidents(ctx context.Context) ([]models.Incident, error)
	ListIncidentsByStatus(ctx context.Context, status models.IncidentStatus) ([]models.Incident, error)
	ListReportedIncidentsByPriority(ctx context.Context, severityWeight float64, now time.Time) ([]models.Incident, error)
	SetIncidentStatus(ctx context.Context, id int64, status models.IncidentStatus, assignedAt, resolvedAt *time.Time) error
	SetIncidentSeverity(ctx context.Context, id int64, severity int) error
	DeleteIncident(ctx context.Context, id int64) error

	CreateVehicle(ctx context.Context, v models.Vehicle) (models.Vehicle, error)
	GetVehicle(ctx context.Context, id int64) (models.Vehicle, error)
	ListVehicles(ctx context.Context) ([]models.Vehicle, error)
	ListAvailableVehiclesByType(ctx context.Context, vtype models.VehicleType) ([]models.Vehicle, error)
	SetVehiclePosition(ctx context.Context, id int64, lat, lon float64, at time.Time) error
	SetVehicleStatus(ctx context.Context, id int64, status models.VehicleStatus) error

	GetAssignment(ctx context.Context, id int64) (models.Assignment, error)
	ListAssignments(ctx context.Context) ([]models.Assignment, error)
	ListAssignmentsByStatus(ctx context.Context, status models.AssignmentStatus) ([]models.Assignment, error)
	ListActiveAssignmentsByVehicle(ctx context.Context, vehicleID int64) ([]models.Assignment, error)
	ListAssignmentsByIncident(ctx context.Context, incidentID int64) ([]models.Assignment, error)
	CreateAssignment(ctx context.Context, a models.Assignment) (models.Assignment, error)
	SaveAssignment(ctx context.Context, a models.Assignment, vehicleStatus *models.VehicleStatus) error
	ReassignVehicle(ctx context.Context, assignmentID, oldVehicleID, newVehicleID int64, at time.Time) error
}
