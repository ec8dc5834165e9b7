package ports

import (
	"context"

	"shopsync-core/internal/domain"
)

// EventBus is the tenant-keyed broadcast channel for realtime events.
// Single writer (the emitter), many readers (dashboard viewers).
// Delivery is fire-and-forget: there is no acknowledgement and no
// replay of events published before Subscribe returned; reconnecting
// viewers fetch their backlog from the EventRepository instead.
type EventBus interface {
	Publish(ctx context.Context, event *domain.RealtimeEvent) error

	// Subscribe returns a channel of events for one shop and a cancel
	// function that releases the subscription and closes the channel.
	Subscribe(ctx context.Context, shopID string) (<-chan *domain.RealtimeEvent, func(), error)
}
