package pubsub

import (
	"context"
	"sync"

	"shopsync-core/internal/domain"
	"shopsync-core/internal/ports"

	"github.com/rs/zerolog"
)

// EventPubSub is the in-process event bus: one writer (the emitter),
// N dashboard subscribers per shop. Delivery is fire-and-forget; a
// subscriber whose buffer is full drops the event and recovers via
// the backlog fetch on reconnect.
type EventPubSub struct {
	mu     sync.RWMutex
	subs   map[string]map[int64]chan *domain.RealtimeEvent
	nextID int64
	logger zerolog.Logger
}

const subscriberBuffer = 16

func NewEventPubSub(logger zerolog.Logger) *EventPubSub {
	return &EventPubSub{
		subs:   make(map[string]map[int64]chan *domain.RealtimeEvent),
		logger: logger,
	}
}

// Publish broadcasts the event to all subscribers of its shop.
// Non-blocking: insertion order is preserved per subscriber because
// there is a single publisher path per request.
func (ps *EventPubSub) Publish(ctx context.Context, event *domain.RealtimeEvent) error {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for id, ch := range ps.subs[event.ShopID] {
		select {
		case ch <- event:
		default:
			ps.logger.Warn().
				Str("shopId", event.ShopID).
				Int64("subscriberId", id).
				Msg("Subscriber buffer full, dropping event")
		}
	}
	return nil
}

// Subscribe registers a new subscriber channel for one shop. The
// returned cancel func is idempotent and closes the channel.
func (ps *EventPubSub) Subscribe(ctx context.Context, shopID string) (<-chan *domain.RealtimeEvent, func(), error) {
	ch := make(chan *domain.RealtimeEvent, subscriberBuffer)

	ps.mu.Lock()
	ps.nextID++
	id := ps.nextID
	if ps.subs[shopID] == nil {
		ps.subs[shopID] = make(map[int64]chan *domain.RealtimeEvent)
	}
	ps.subs[shopID][id] = ch
	ps.mu.Unlock()

	ps.logger.Debug().
		Str("shopId", shopID).
		Int64("subscriberId", id).
		Msg("Event subscription created")

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			ps.mu.Lock()
			delete(ps.subs[shopID], id)
			if len(ps.subs[shopID]) == 0 {
				delete(ps.subs, shopID)
			}
			ps.mu.Unlock()
			close(ch)
		})
	}

	// Release the subscription when the caller's context ends.
	go func() {
		<-ctx.Done()
		cancel()
	}()

	return ch, cancel, nil
}

var _ ports.EventBus = (*EventPubSub)(nil)
