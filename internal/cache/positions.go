package cache

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rescuegrid/backend/internal/models"
)

const locationKeyPrefix = "vehicle:location:"

// RedisPositionStore keeps one hash per vehicle under vehicle:location:<id>.
type RedisPositionStore struct {
	client *goredis.Client
}

func NewRedisPositionStore(client *goredis.Client) *RedisPositionStore {
	return &RedisPositionStore{client: client}
}

func (s *RedisPositionStore) Set(ctx context.Context, vehicleID int64, lat, lon float64, at time.Time) error {
	key := locationKeyPrefix + strconv.FormatInt(vehicleID, 10)
	return s.client.HSet(ctx, key, map[string]any{
		"latitude":  strconv.FormatFloat(lat, 'f', -1, 64),
		"longitude": strconv.FormatFloat(lon, 'f', -1, 64),
		"timestamp": at.UTC().Format(time.RFC3339Nano),
	}).Err()
}

func (s *RedisPositionStore) Get(ctx context.Context, vehicleID int64) (models.Position, bool, error) {
	key := locationKeyPrefix + strconv.FormatInt(vehicleID, 10)
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return models.Position{}, false, err
	}
	if len(fields) == 0 {
		return models.Position{}, false, nil
	}
	pos, err := parsePosition(fields)
	if err != nil {
		return models.Position{}, false, err
	}
	return pos, true, nil
}

func (s *RedisPositionStore) All(ctx context.Context) (map[int64]models.Position, error) {
	out := map[int64]models.Position{}
	iter := s.client.Scan(ctx, 0, locationKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id, err := strconv.ParseInt(strings.TrimPrefix(key, locationKeyPrefix), 10, 64)
		if err != nil {
			continue
		}
		fields, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		pos, err := parsePosition(fields)
		if err != nil {
			continue
		}
		out[id] = pos
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parsePosition(fields map[string]string) (models.Position, error) {
	lat, err := strconv.ParseFloat(fields["latitude"], 64)
	if err != nil {
		return models.Position{}, err
	}
	lon, err := strconv.ParseFloat(fields["longitude"], 64)
	if err != nil {
		return models.Position{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, fields["timestamp"])
	if err != nil {
		return models.Position{}, err
	}
	return models.Position{Latitude: lat, Longitude: lon, Timestamp: ts}, nil
}

// MemoryPositionStore is the in-process fallback used when no redis is
// configured. Same contract as the redis store, map under a RWMutex.
type MemoryPositionStore struct {
	mu        sync.RWMutex
	positions map[int64]models.Position
}

func NewMemoryPositionStore() *MemoryPositionStore {
	return &MemoryPositionStore{positions: map[int64]models.Position{}}
}

func (s *MemoryPositionStore) Set(_ context.Context, vehicleID int64, lat, lon float64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[vehicleID] = models.Position{Latitude: lat, Longitude: lon, Timestamp: at}
	return nil
}

func (s *MemoryPositionStore) Get(_ context.Context, vehicleID int64) (models.Position, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.positions[vehicleID]
	return pos, ok, nil
}

func (s *MemoryPositionStore) All(_ context.Context) (map[int64]models.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]models.Position, len(s.positions))
	for id, pos := range s.positions {
		out[id] = pos
	}
	return out, nil
}
