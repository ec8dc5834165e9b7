package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"shopsync-core/internal/domain"
	"shopsync-core/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisEventBus carries realtime events over Redis pub/sub so
// subscribers on other processes see them too. Channel naming keys
// the broadcast by tenant.
type RedisEventBus struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisClient parses the URL, connects, and pings once.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func NewRedisEventBus(client *redis.Client, logger zerolog.Logger) *RedisEventBus {
	return &RedisEventBus{client: client, logger: logger}
}

func channelFor(shopID string) string {
	return "shopsync:events:" + shopID
}

func (b *RedisEventBus) Publish(ctx context.Context, event *domain.RealtimeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := b.client.Publish(ctx, channelFor(event.ShopID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (b *RedisEventBus) Subscribe(ctx context.Context, shopID string) (<-chan *domain.RealtimeEvent, func(), error) {
	sub := b.client.Subscribe(ctx, channelFor(shopID))

	// Force the subscription onto the wire before returning so the
	// caller does not miss events published right after Subscribe.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan *domain.RealtimeEvent, subscriberBuffer)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var event domain.RealtimeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warn().Err(err).Str("shopId", shopID).Msg("Dropping undecodable event")
				continue
			}
			select {
			case out <- &event:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		_ = sub.Close()
	}
	return out, cancel, nil
}

var _ ports.EventBus = (*RedisEventBus)(nil)
