package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes notification events on a Redis pub/sub channel
// consumed by the external broadcast service.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

// NewRedisNotifier builds a notifier over an existing client.
func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

// Notify publishes one notification event. The caller treats any error as
// log-and-continue; a lost notification must never fail the order.
func (n *RedisNotifier) Notify(ev Notification) error {
	env := wrap(TypePaymentStatusChanged, ev)
	if ev.Type != "" {
		env.EventType = ev.Type
	}

	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return n.client.Publish(ctx, n.channel, value).Err()
}

// Close is a no-op; the shared Redis client is closed by its owner.
func (n *RedisNotifier) Close() error { return nil }

var _ Notifier = (*RedisNotifier)(nil)
