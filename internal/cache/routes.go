package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rescuegrid/backend/internal/models"
)

const routeKeyPrefix = "vehicle:route:"

// RedisRouteStore stores each active route as a JSON value under
// vehicle:route:<id>.
type RedisRouteStore struct {
	client *goredis.Client
}

func NewRedisRouteStore(client *goredis.Client) *RedisRouteStore {
	return &RedisRouteStore{client: client}
}

func (s *RedisRouteStore) Set(ctx context.Context, route models.Route) error {
	b, err := json.Marshal(route)
	if err != nil {
		return err
	}
	key := routeKeyPrefix + strconv.FormatInt(route.VehicleID, 10)
	return s.client.Set(ctx, key, b, 0).Err()
}

func (s *RedisRouteStore) Get(ctx context.Context, vehicleID int64) (models.Route, bool, error) {
	key := routeKeyPrefix + strconv.FormatInt(vehicleID, 10)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return models.Route{}, false, nil
		}
		return models.Route{}, false, err
	}
	var route models.Route
	if err := json.Unmarshal(data, &route); err != nil {
		return models.Route{}, false, err
	}
	return route, true, nil
}

func (s *RedisRouteStore) All(ctx context.Context) ([]models.Route, error) {
	var out []models.Route
	iter := s.client.Scan(ctx, 0, routeKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		id, err := strconv.ParseInt(strings.TrimPrefix(iter.Val(), routeKeyPrefix), 10, 64)
		if err != nil {
			continue
		}
		route, ok, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, route)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RedisRouteStore) Delete(ctx context.Context, vehicleID int64) error {
	key := routeKeyPrefix + strconv.FormatInt(vehicleID, 10)
	return s.client.Del(ctx, key).Err()
}

// MemoryRouteStore is the in-process fallback used when no redis is configured.
type MemoryRouteStore struct {
	mu     sync.RWMutex
	routes map[int64]models.Route
}

func NewMemoryRouteStore() *MemoryRouteStore {
	return &MemoryRouteStore{routes: map[int64]models.Route{}}
}

func (s *MemoryRouteStore) Set(_ context.Context, route models.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[route.VehicleID] = route
	return nil
}

func (s *MemoryRouteStore) Get(_ context.Context, vehicleID int64) (models.Route, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	route, ok := s.routes[vehicleID]
	return route, ok, nil
}

func (s *MemoryRouteStore) All(_ context.Context) ([]models.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Route, 0, len(s.routes))
	for _, route := range s.routes {
		out = append(out, route)
	}
	return out, nil
}

func (s *MemoryRouteStore) Delete(_ context.Context, vehicleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.routes, vehicleID)
	return nil
}
