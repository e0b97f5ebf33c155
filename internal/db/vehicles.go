package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rescuegrid/backend/internal/models"
)

const vehicleColumns = `vehicle_id, registration_number, vehicle_type, capacity, status,
	latitude, longitude, last_updated`

func scanVehicle(row pgx.Row) (models.Vehicle, error) {
	var v models.Vehicle
	err := row.Scan(&v.ID, &v.RegistrationNumber, &v.Type, &v.Capacity, &v.Status,
		&v.Latitude, &v.Longitude, &v.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Vehicle{}, ErrNotFound
	}
	return v, err
}

func (s *Store) CreateVehicle(ctx context.Context, v models.Vehicle) (models.Vehicle, error) {
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO vehicles (registration_number, vehicle_type, capacity, status, latitude, longitude, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+vehicleColumns,
		v.RegistrationNumber, v.Type, v.Capacity, v.Status, v.Latitude, v.Longitude, v.LastUpdated)
	return scanVehicle(row)
}

func (s *Store) GetVehicle(ctx context.Context, id int64) (models.Vehicle, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE vehicle_id = $1`, id)
	return scanVehicle(row)
}

func (s *Store) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY vehicle_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVehicles(rows)
}

func (s *Store) ListVehiclesByStatus(ctx context.Context, status models.VehicleStatus) ([]models.Vehicle, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles
		WHERE status = $1
		ORDER BY vehicle_id ASC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVehicles(rows)
}

func (s *Store) ListAvailableVehiclesByType(ctx context.Context, vtype models.VehicleType) ([]models.Vehicle, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles
		WHERE status = 'AVAILABLE' AND vehicle_type = $1
		ORDER BY vehicle_id ASC`, vtype)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVehicles(rows)
}

func collectVehicles(rows pgx.Rows) ([]models.Vehicle, error) {
	var out []models.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// SetVehiclePosition writes the durable copy of a vehicle's coordinates. The
// hot path goes through the position cache; this is the flush target.
func (s *Store) SetVehiclePosition(ctx context.Context, id int64, lat, lon float64, at time.Time) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE vehicles SET latitude = $1, longitude = $2, last_updated = $3
		WHERE vehicle_id = $4`, lat, lon, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetVehicleStatus(ctx context.Context, id int64, status models.VehicleStatus) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE vehicles SET status = $1 WHERE vehicle_id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
