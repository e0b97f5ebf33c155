package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rescuegrid/backend/internal/models"
)

// ErrVehicleUnavailable is returned when a transactional claim finds the
// vehicle no longer AVAILABLE.
var ErrVehicleUnavailable = errors.New("vehicle not available")

const assignmentColumns = `assignment_id, incident_id, vehicle_id, assigned_by, status,
	assigned_at, accepted_at, arrived_at, completed_at`

func scanAssignment(row pgx.Row) (models.Assignment, error) {
	var a models.Assignment
	err := row.Scan(&a.ID, &a.IncidentID, &a.VehicleID, &a.AssignedBy, &a.Status,
		&a.AssignedAt, &a.AcceptedAt, &a.ArrivedAt, &a.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Assignment{}, ErrNotFound
	}
	return a, err
}

func (s *Store) GetAssignment(ctx context.Context, id int64) (models.Assignment, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE assignment_id = $1`, id)
	return scanAssignment(row)
}

func (s *Store) ListAssignments(ctx context.Context) ([]models.Assignment, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+assignmentColumns+` FROM assignments ORDER BY assignment_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func (s *Store) ListAssignmentsByStatus(ctx context.Context, status models.AssignmentStatus) ([]models.Assignment, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+assignmentColumns+` FROM assignments
		WHERE status = $1 ORDER BY assignment_id ASC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssignments(rows)
}

// ListActiveAssignmentsByVehicle returns the vehicle's assignments that are
// not COMPLETED or CANCELLED.
func (s *Store) ListActiveAssignmentsByVehicle(ctx context.Context, vehicleID int64) ([]models.Assignment, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+assignmentColumns+` FROM assignments
		WHERE vehicle_id = $1 AND status NOT IN ('COMPLETED', 'CANCELLED')
		ORDER BY assignment_id ASC`, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func (s *Store) ListAssignmentsByIncident(ctx context.Context, incidentID int64) ([]models.Assignment, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+assignmentColumns+` FROM assignments
		WHERE incident_id = $1 ORDER BY assignment_id ASC`, incidentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func collectAssignments(rows pgx.Rows) ([]models.Assignment, error) {
	var out []models.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateAssignment inserts the assignment, claims the vehicle, and marks the
// incident ASSIGNED in one transaction. The vehicle claim is conditional on it
// still being AVAILABLE, which is what prevents double assignment across
// concurrent passes and manual dispatches.
func (s *Store) CreateAssignment(ctx context.Context, a models.Assignment) (models.Assignment, error) {
	var created models.Assignment
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE vehicles SET status = 'ON_ROUTE'
			WHERE vehicle_id = $1 AND status = 'AVAILABLE'`, a.VehicleID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrVehicleUnavailable
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO assignments (incident_id, vehicle_id, assigned_by, status, assigned_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+assignmentColumns,
			a.IncidentID, a.VehicleID, a.AssignedBy, a.Status, a.AssignedAt)
		created, err = scanAssignment(row)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE incidents SET status = 'ASSIGNED', assigned_at = $1
			WHERE incident_id = $2`, a.AssignedAt, a.IncidentID)
		return err
	})
	if err != nil {
		return models.Assignment{}, err
	}
	return created, nil
}

// SaveAssignment writes the assignment row and, when vehicleStatus is set, the
// vehicle's status in the same transaction, so an observer never sees one
// without the other.
func (s *Store) SaveAssignment(ctx context.Context, a models.Assignment, vehicleStatus *models.VehicleStatus) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE assignments
			SET status = $1, accepted_at = $2, arrived_at = $3, completed_at = $4
			WHERE assignment_id = $5`,
			a.Status, a.AcceptedAt, a.ArrivedAt, a.CompletedAt, a.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if vehicleStatus != nil {
			if _, err := tx.Exec(ctx, `UPDATE vehicles SET status = $1 WHERE vehicle_id = $2`,
				*vehicleStatus, a.VehicleID); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReassignVehicle releases the old vehicle, claims the new one, and repoints
// the assignment in one transaction. The lifecycle restarts from ASSIGNED, so
// accepted_at and arrived_at are cleared along with the new assigned_at.
func (s *Store) ReassignVehicle(ctx context.Context, assignmentID, oldVehicleID, newVehicleID int64, at time.Time) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE vehicles SET status = 'ON_ROUTE'
			WHERE vehicle_id = $1 AND status = 'AVAILABLE'`, newVehicleID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrVehicleUnavailable
		}

		if _, err := tx.Exec(ctx, `
			UPDATE vehicles SET status = 'AVAILABLE' WHERE vehicle_id = $1`, oldVehicleID); err != nil {
			return err
		}

		tag, err = tx.Exec(ctx, `
			UPDATE assignments
			SET vehicle_id = $1, assigned_at = $2, status = 'ASSIGNED',
				accepted_at = NULL, arrived_at = NULL
			WHERE assignment_id = $3`, newVehicleID, at, assignmentID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
