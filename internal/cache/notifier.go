package cache

import (
	"context"
	"encoding/json"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisNotifier publishes change events on redis pub/sub channels. Consumers
// (the API layer's websocket bridge) fan them out to clients.
type RedisNotifier struct {
	client *goredis.Client
}

func NewRedisNotifier(client *goredis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) Notify(ctx context.Context, topic string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, topic, b).Err()
}

// LogNotifier is the fallback when no redis is configured: events are only
// logged.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (n LogNotifier) Notify(_ context.Context, topic string, payload any) error {
	n.Logger.Debug().Str("topic", topic).Interface("payload", payload).Msg("notify")
	return nil
}
