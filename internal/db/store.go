package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// InitSchema creates the tables if they do not exist yet. Routes and live
// positions are cache-only and have no table.
func (s *Store) InitSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS incidents (
			incident_id   BIGSERIAL PRIMARY KEY,
			service_type  TEXT NOT NULL,
			latitude      DOUBLE PRECISION NOT NULL,
			longitude     DOUBLE PRECISION NOT NULL,
			address       TEXT NOT NULL DEFAULT '',
			severity      INT NOT NULL DEFAULT 1,
			status        TEXT NOT NULL DEFAULT 'REPORTED',
			reported_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			assigned_at   TIMESTAMPTZ,
			resolved_at   TIMESTAMPTZ,
			reported_by   TEXT NOT NULL DEFAULT '',
			description   TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS vehicles (
			vehicle_id          BIGSERIAL PRIMARY KEY,
			registration_number TEXT NOT NULL UNIQUE,
			vehicle_type        TEXT NOT NULL,
			capacity            INT NOT NULL DEFAULT 0,
			status              TEXT NOT NULL DEFAULT 'AVAILABLE',
			latitude            DOUBLE PRECISION NOT NULL DEFAULT 0,
			longitude           DOUBLE PRECISION NOT NULL DEFAULT 0,
			last_updated        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS assignments (
			assignment_id BIGSERIAL PRIMARY KEY,
			incident_id   BIGINT NOT NULL REFERENCES incidents(incident_id) ON DELETE CASCADE,
			vehicle_id    BIGINT NOT NULL REFERENCES vehicles(vehicle_id),
			assigned_by   TEXT NOT NULL DEFAULT '',
			status        TEXT NOT NULL DEFAULT 'ASSIGNED',
			assigned_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			accepted_at   TIMESTAMPTZ,
			arrived_at    TIMESTAMPTZ,
			completed_at  TIMESTAMPTZ
		);

		CREATE INDEX IF NOT EXISTS idx_incidents_status ON incidents(status);
		CREATE INDEX IF NOT EXISTS idx_vehicles_status_type ON vehicles(status, vehicle_type);
		CREATE INDEX IF NOT EXISTS idx_assignments_vehicle ON assignments(vehicle_id);
		CREATE INDEX IF NOT EXISTS idx_assignments_incident ON assignments(incident_id);
	`)
	return err
}
