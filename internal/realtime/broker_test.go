package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelFor(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "complaint_messages:"+id.String(), ChannelFor(id))
}

func TestSubscriptionDeliver_HandsPayloadToConsumer(t *testing.T) {
	sub := &redisSubscription{
		events: make(chan []byte),
		done:   make(chan struct{}),
	}

	received := make(chan []byte, 1)
	go func() {
		received <- <-sub.events
	}()

	require.True(t, sub.deliver([]byte("hint")))

	select {
	case payload := <-received:
		assert.Equal(t, []byte("hint"), payload)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer never received the payload")
	}
}

// A payload can arrive just as the consumer shuts down. With nobody left
// draining events, the pending send must unpark when the subscription closes
// instead of holding the forwarding goroutine forever.
func TestSubscriptionDeliver_UnblocksWhenClosedWithoutConsumer(t *testing.T) {
	sub := &redisSubscription{
		events: make(chan []byte),
		done:   make(chan struct{}),
	}

	result := make(chan bool, 1)
	go func() {
		result <- sub.deliver([]byte("in flight"))
	}()

	// Let the send park on the unbuffered channel first.
	time.Sleep(50 * time.Millisecond)
	close(sub.done)

	select {
	case delivered := <-result:
		assert.False(t, delivered)
	case <-time.After(2 * time.Second):
		t.Fatal("deliver stayed blocked after the subscription was closed")
	}
}
