package cache

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rescuegrid/backend/internal/models"
)

// PositionStore is the hot cache of each vehicle's current coordinates. Writes
// are cache-only; durable storage catches up on the flush interval.
type PositionStore interface {
	Set(ctx context.Context, vehicleID int64, lat, lon float64, at time.Time) error
	Get(ctx context.Context, vehicleID int64) (models.Position, bool, error)
	All(ctx context.Context) (map[int64]models.Position, error)
}

// RouteStore keeps the ephemeral route a vehicle is being simulated along.
type RouteStore interface {
	Set(ctx context.Context, route models.Route) error
	Get(ctx context.Context, vehicleID int64) (models.Route, bool, error)
	All(ctx context.Context) ([]models.Route, error)
	Delete(ctx context.Context, vehicleID int64) error
}

// Notifier broadcasts fire-and-forget change events. Failures are the
// caller's to log, never to retry.
type Notifier interface {
	Notify(ctx context.Context, topic string, payload any) error
}

// Notification topics.
const (
	TopicReportedIncidents = "incidents:reported"
	TopicAcceptedIncidents = "incidents:accepted"
	TopicVehicles          = "vehicles"
	TopicNotifications     = "notifications"
)

// NewRedis connects a go-redis client and verifies the connection.
func NewRedis(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}
