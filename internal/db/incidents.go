package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rescuegrid/backend/internal/models"
)

var ErrNotFound = errors.New("not found")

const incidentColumns = `incident_id, service_type, latitude, longitude, address, severity, status,
	reported_at, assigned_at, resolved_at, reported_by, description`

func scanIncident(row pgx.Row) (models.Incident, error) {
	var inc models.Incident
	err := row.Scan(&inc.ID, &inc.ServiceType, &inc.Latitude, &inc.Longitude, &inc.Address, &inc.Severity,
		&inc.Status, &inc.ReportedAt, &inc.AssignedAt, &inc.ResolvedAt, &inc.ReportedBy, &inc.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Incident{}, ErrNotFound
	}
	return inc, err
}

func (s *Store) CreateIncident(ctx context.Context, inc models.Incident) (models.Incident, error) {
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO incidents (service_type, latitude, longitude, address, severity, status, reported_at, reported_by, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+incidentColumns,
		inc.ServiceType, inc.Latitude, inc.Longitude, inc.Address, inc.Severity, inc.Status,
		inc.ReportedAt, inc.ReportedBy, inc.Description)
	return scanIncident(row)
}

func (s *Store) GetIncident(ctx context.Context, id int64) (models.Incident, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+incidentColumns+` FROM incidents WHERE incident_id = $1`, id)
	return scanIncident(row)
}

func (s *Store) ListIncidents(ctx context.Context) ([]models.Incident, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+incidentColumns+`
		FROM incidents
		ORDER BY reported_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIncidents(rows)
}

func (s *Store) ListIncidentsByStatus(ctx context.Context, status models.IncidentStatus) ([]models.Incident, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+incidentColumns+`
		FROM incidents
		WHERE status = $1
		ORDER BY severity DESC, reported_at ASC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIncidents(rows)
}

// ListReportedIncidentsByPriority returns REPORTED incidents ordered by
// severity*weight + minutes waiting, most urgent first.
func (s *Store) ListReportedIncidentsByPriority(ctx context.Context, severityWeight float64, now time.Time) ([]models.Incident, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+incidentColumns+`
		FROM incidents
		WHERE status = 'REPORTED'
		ORDER BY severity * $1 + EXTRACT(EPOCH FROM ($2::timestamptz - reported_at)) / 60 DESC,
			incident_id ASC`, severityWeight, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIncidents(rows)
}

func collectIncidents(rows pgx.Rows) ([]models.Incident, error) {
	var out []models.Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inc)
	}
	return out, rows.Err()
}

func (s *Store) SetIncidentStatus(ctx context.Context, id int64, status models.IncidentStatus, assignedAt, resolvedAt *time.Time) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE incidents
		SET status = $1,
			assigned_at = COALESCE($2, assigned_at),
			resolved_at = COALESCE($3, resolved_at)
		WHERE incident_id = $4`, status, assignedAt, resolvedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetIncidentSeverity(ctx context.Context, id int64, severity int) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE incidents SET severity = $1 WHERE incident_id = $2`, severity, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteIncident removes the incident; its assignments cascade.
func (s *Store) DeleteIncident(ctx context.Context, id int64) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM incidents WHERE incident_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
