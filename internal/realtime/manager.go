package realtime

import (
	"context"
	"fmt"
	"log"
	"sync"

	"brototype.com/complaintdesk/internal/dto"
	"github.com/google/uuid"
)

// SnapshotFunc refetches the full, authorization-scoped message thread. The
// manager never trusts notification payloads as data; every notification
// triggers a refetch through this function so delivered state always went
// through the same policy checks as a plain read.
type SnapshotFunc func(ctx context.Context) ([]dto.MessageResponse, error)

// UpdateFunc receives each reconciled snapshot. It is never called
// concurrently with itself and never after Handle.Close returns.
type UpdateFunc func(messages []dto.MessageResponse)

type Manager struct {
	broker Broker
}

func NewManager(broker Broker) *Manager {
	return &Manager{broker: broker}
}

// Subscribe attaches a live view to a complaint's message thread. An initial
// snapshot is delivered immediately, then one per notification burst.
// Notifications that arrive while a refetch is in flight coalesce into a
// single trailing refetch.
func (m *Manager) Subscribe(ctx context.Context, complaintID uuid.UUID, snapshot SnapshotFunc, onUpdate UpdateFunc) (*Handle, error) {
	sub, err := m.broker.Subscribe(ctx, ChannelFor(complaintID))
	if err != nil {
		return nil, fmt.Errorf("failed to open realtime subscription: %w", err)
	}

	h := &Handle{
		complaintID: complaintID,
		sub:         sub,
		pending:     make(chan struct{}, 1),
		quit:        make(chan struct{}),
	}

	// Seed the queue so subscribers get the current thread without waiting
	// for the first notification.
	h.pending <- struct{}{}

	h.wg.Add(2)
	go h.pump()
	go h.reconcile(ctx, snapshot, onUpdate)

	return h, nil
}

// Handle is a cancellable subscription. Close is idempotent and blocks until
// both internal goroutines have stopped, so no callback runs after it returns.
type Handle struct {
	complaintID uuid.UUID
	sub         Subscription
	pending     chan struct{}
	quit        chan struct{}
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

// pump drains broker events into the coalescing queue. The payload content is
// discarded on purpose.
func (h *Handle) pump() {
	defer h.wg.Done()
	for {
		select {
		case <-h.quit:
			return
		case _, ok := <-h.sub.Events():
			if !ok {
				return
			}
			select {
			case h.pending <- struct{}{}:
			default:
				// A refetch is already queued; this notification rides along.
			}
		}
	}
}

func (h *Handle) reconcile(ctx context.Context, snapshot SnapshotFunc, onUpdate UpdateFunc) {
	defer h.wg.Done()
	for {
		select {
		case <-h.quit:
			return
		default:
		}

		select {
		case <-h.quit:
			return
		case <-h.pending:
			messages, err := snapshot(ctx)
			if err != nil {
				log.Printf("ERROR: realtime refetch failed for complaint %s: %v", h.complaintID, err)
				continue
			}
			onUpdate(messages)
		}
	}
}

func (h *Handle) Close() error {
	var err error
	h.closeOnce.Do(func() {
		close(h.quit)
		err = h.sub.Close()
		h.wg.Wait()
	})
	return err
}
