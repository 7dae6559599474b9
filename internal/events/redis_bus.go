package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis channel used when none is configured.
const DefaultChannel = "finance_dashboard:events"

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisBus fans events out to every replica through Redis Pub/Sub. Each
// replica delivers received events to its own local subscribers, so a refresh
// failure detected on one instance reaches the controller of that client
// wherever it lives.
type RedisBus struct {
	publisher redisPublisher
	pubsub    *redis.PubSub
	channel   string
	local     *MemBus
	logger    *slog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewRedisBus subscribes to channel and starts dispatching received events.
func NewRedisBus(ctx context.Context, client *redis.Client, channel string, logger *slog.Logger) (*RedisBus, error) {
	if channel == "" {
		channel = DefaultChannel
	}

	pubsub := client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to redis channel %s: %w", channel, err)
	}

	b := &RedisBus{
		publisher: client,
		pubsub:    pubsub,
		channel:   channel,
		local:     NewMemBus(),
		logger:    logger,
		done:      make(chan struct{}),
	}

	go b.run(ctx)

	return b, nil
}

func (b *RedisBus) run(ctx context.Context) {
	defer close(b.done)

	for msg := range b.pubsub.Channel() {
		b.dispatch(ctx, msg.Payload)
	}
}

func (b *RedisBus) dispatch(ctx context.Context, payload string) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		b.logger.Error("failed to decode event from redis", "channel", b.channel, "error", err)
		return
	}

	if err := b.local.Publish(ctx, event); err != nil {
		b.logger.Debug("failed to deliver event locally", "event", event.Name, "error", err)
	}
}

func (b *RedisBus) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err := b.publisher.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event to redis: %w", err)
	}

	return nil
}

func (b *RedisBus) Subscribe(name, clientID string, h Handler) (func(), error) {
	return b.local.Subscribe(name, clientID, h)
}

func (b *RedisBus) Close() error {
	var err error
	b.closeOnce.Do(func() {
		if b.pubsub != nil {
			err = b.pubsub.Close()
			<-b.done
		}
		_ = b.local.Close()
	})

	return err
}
