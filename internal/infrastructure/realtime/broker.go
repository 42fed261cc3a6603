package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"barberq.backend/pkg/logger"
	"barberq.backend/pkg/redis"
	"go.uber.org/zap"
)

// ChannelPrefix namespaces broadcast topics on the Redis bus
const ChannelPrefix = "barberq:"

// LocalBroker publishes straight into the in-process hub
type LocalBroker struct {
	hub *Hub
}

// NewLocalBroker creates a single-instance broker
func NewLocalBroker(hub *Hub) *LocalBroker {
	return &LocalBroker{hub: hub}
}

// Publish encodes payload as JSON and delivers it to topic
func (b *LocalBroker) Publish(ctx context.Context, topic string, payload interface{}) error {
	frame, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode broadcast: %w", err)
	}
	b.hub.Deliver(topic, frame)
	return nil
}

// RedisBroker publishes through Redis pub/sub so that sockets held by every
// instance receive the frame. Run must be active for local delivery.
type RedisBroker struct {
	hub *Hub
}

// NewRedisBroker creates a broker on the shared Redis client
func NewRedisBroker(hub *Hub) *RedisBroker {
	return &RedisBroker{hub: hub}
}

// Publish encodes payload as JSON and publishes it on the topic channel
func (b *RedisBroker) Publish(ctx context.Context, topic string, payload interface{}) error {
	frame, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode broadcast: %w", err)
	}
	if err := redis.Publish(ctx, ChannelPrefix+topic, frame); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Run relays every prefixed channel into the local hub until ctx ends. ready,
// when not nil, is closed once the subscription is confirmed.
func (b *RedisBroker) Run(ctx context.Context, ready chan<- struct{}) error {
	pubsub := redis.PSubscribe(ctx, ChannelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe broadcast bus: %w", err)
	}
	if ready != nil {
		close(ready)
	}
	logger.Info(ctx, "Broadcast relay subscribed", zap.String("pattern", ChannelPrefix+"*"))

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			topic := strings.TrimPrefix(msg.Channel, ChannelPrefix)
			b.hub.Deliver(topic, []byte(msg.Payload))
		}
	}
}
