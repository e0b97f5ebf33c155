package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rescuegrid/backend/internal/cache"
	"github.com/rescuegrid/backend/internal/models"
)

func TestPositionFlusherFlushAll(t *testing.T) {
	store := newFakeStore()
	positions := cache.NewMemoryPositionStore()
	f := &PositionFlusher{Positions: positions, Store: store, Logger: zerolog.Nop()}
	ctx := context.Background()

	v1, _ := store.CreateVehicle(ctx, models.Vehicle{Type: models.VehicleAmbulance, Status: models.VehicleAvailable})
	v2, _ := store.CreateVehicle(ctx, models.Vehicle{Type: models.VehicleFireTruck, Status: models.VehicleAvailable})

	at := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	positions.Set(ctx, v1.ID, 51.2, 71.5, at)
	positions.Set(ctx, v2.ID, 43.2, 76.8, at)
	// A cached position for a vehicle that no longer exists is skipped.
	positions.Set(ctx, 999, 1, 1, at)

	if err := f.FlushAll(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	got1, _ := store.GetVehicle(ctx, v1.ID)
	if got1.Latitude != 51.2 || got1.Longitude != 71.5 || !got1.LastUpdated.Equal(at) {
		t.Fatalf("vehicle 1 not flushed: %+v", got1)
	}
	got2, _ := store.GetVehicle(ctx, v2.ID)
	if got2.Latitude != 43.2 {
		t.Fatalf("vehicle 2 not flushed: %+v", got2)
	}
}
