package application

import (
	"context"
	"fmt"
	"time"

	"shopsync-core/internal/domain"
	"shopsync-core/internal/infrastructure/metrics"
	"shopsync-core/internal/ports"

	"github.com/rs/zerolog"
)

// BacklogLimit is how many historical events a reconnecting viewer
// fetches before tailing the live stream.
const BacklogLimit = 50

// EventService appends realtime events and broadcasts them to
// connected viewers. Emit must only be called after the resource
// upsert it describes has committed.
type EventService struct {
	events ports.EventRepository
	bus    ports.EventBus
	logger zerolog.Logger
}

func NewEventService(events ports.EventRepository, bus ports.EventBus, logger zerolog.Logger) *EventService {
	return &EventService{
		events: events,
		bus:    bus,
		logger: logger,
	}
}

// Emit writes the event record, then publishes it. The write is a
// single insert with no batching; a failed insert propagates so the
// webhook is retried, a failed broadcast is only logged (viewers
// recover from the backlog).
func (s *EventService) Emit(ctx context.Context, shop *domain.Shop, eventType string, resource domain.ResourceKind, localID string, shopifyID int64, snapshot map[string]any) error {
	event := &domain.RealtimeEvent{
		ShopID:    shop.ID,
		EventType: eventType,
		Resource:  resource,
		LocalID:   localID,
		ShopifyID: shopifyID,
		Payload:   snapshot,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.events.Insert(ctx, event); err != nil {
		return fmt.Errorf("failed to emit event: %w", err)
	}

	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn().
			Err(err).
			Str("shopId", shop.ID).
			Str("eventType", eventType).
			Msg("Failed to broadcast event")
	}
	metrics.EventsPublished.Inc()

	s.logger.Debug().
		Str("shopId", shop.ID).
		Str("eventType", eventType).
		Int64("shopifyId", shopifyID).
		Msg("Emitted realtime event")
	return nil
}

// Backlog returns the recent events a reconnecting subscriber replays
// before tailing the live channel.
func (s *EventService) Backlog(ctx context.Context, shopID string) ([]*domain.RealtimeEvent, error) {
	return s.events.Recent(ctx, shopID, BacklogLimit)
}
