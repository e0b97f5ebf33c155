package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rescuegrid/backend/internal/cache"
)

// PositionFlusher periodically persists cached vehicle positions to the
// database so the hot cache stays authoritative between flushes.
type PositionFlusher struct {
	Positions cache.PositionStore
	Store     Store
	Logger    zerolog.Logger
}

// FlushAll writes every cached position through to the vehicles table.
// Per-vehicle failures are logged and skipped; the cache retains the entry
// for the next flush.
func (f *PositionFlusher) FlushAll(ctx context.Context) error {
	positions, err := f.Positions.All(ctx)
	if err != nil {
		return err
	}
	var flushed int
	for vehicleID, pos := range positions {
		if err := f.Store.SetVehiclePosition(ctx, vehicleID, pos.Latitude, pos.Longitude, pos.Timestamp); err != nil {
			f.Logger.Warn().Err(err).Int64("vehicle_id", vehicleID).Msg("position flush failed")
			continue
		}
		flushed++
	}
	f.Logger.Debug().Int("flushed", flushed).Msg("position flush complete")
	return nil
}
