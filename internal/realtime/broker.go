package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Broker abstracts the pub/sub transport. Payloads are opaque notification
// hints; subscribers never apply them directly, they refetch instead.
type Broker interface {
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

type Subscription interface {
	// Events yields raw notification payloads. The channel is closed when the
	// subscription is closed or the connection drops.
	Events() <-chan []byte
	Close() error
}

// ChannelFor names the pub/sub channel carrying insert notifications for a
// complaint's message thread. Publishers and subscribers must agree on this.
func ChannelFor(complaintID uuid.UUID) string {
	return fmt.Sprintf("complaint_messages:%s", complaintID.String())
}

type redisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) Broker {
	return &redisBroker{client: client}
}

func (b *redisBroker) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	if b.client == nil {
		return nil, fmt.Errorf("redis client is not configured")
	}

	pubsub := b.client.Subscribe(ctx, channel)

	// Wait for the subscription confirmation so callers never miss events
	// published right after Subscribe returns.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to channel %s: %w", channel, err)
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		events: make(chan []byte),
		done:   make(chan struct{}),
	}
	go sub.forward()
	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	events chan []byte
	done   chan struct{}
	once   sync.Once
}

func (s *redisSubscription) forward() {
	defer close(s.events)
	for msg := range s.pubsub.Channel() {
		if !s.deliver([]byte(msg.Payload)) {
			return
		}
	}
}

// deliver hands one payload to the consumer. It returns false once the
// subscription is closed, so forward never stays parked on a send the
// consumer will no longer drain.
func (s *redisSubscription) deliver(payload []byte) bool {
	select {
	case s.events <- payload:
		return true
	case <-s.done:
		return false
	}
}

func (s *redisSubscription) Events() <-chan []byte {
	return s.events
}

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}
