package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"shopsync-core/internal/application"
	"shopsync-core/internal/application/mapping"
	"shopsync-core/internal/domain"
	"shopsync-core/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// InventoryHandler handles inventory level webhook events. Levels are
// keyed by (inventory item, location), so both update and connect
// resolve to the same upsert.
type InventoryHandler struct {
	logger    zerolog.Logger
	resources ports.ResourceRepository
	events    *application.EventService
}

// NewInventoryHandler creates a new inventory webhook handler
func NewInventoryHandler(logger zerolog.Logger, resources ports.ResourceRepository, events *application.EventService) *InventoryHandler {
	return &InventoryHandler{
		logger:    logger,
		resources: resources,
		events:    events,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *InventoryHandler) CanHandle(topic string) bool {
	return strings.HasPrefix(topic, "inventory_levels/")
}

// Handle processes an inventory level webhook event
func (h *InventoryHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	if event.Shop == nil {
		h.logger.Warn().
			Str("topic", event.Topic).
			Str("shop", event.ShopDomain).
			Msg("Inventory webhook for unknown shop, ignoring")
		return nil
	}

	var payload goshopify.InventoryLevel
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse inventory webhook payload: %w (%v)", domain.ErrMalformedPayload, err)
	}

	level, err := mapping.InventoryLevel(event.Shop.ID, &payload)
	if err != nil {
		return err
	}

	id, err := h.resources.UpsertInventoryLevel(ctx, level)
	if err != nil {
		return fmt.Errorf("failed to upsert inventory level: %w", err)
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.Shop.Domain).
		Int64("inventoryItemId", level.InventoryItemID).
		Int64("locationId", level.LocationID).
		Int("available", level.Available).
		Msg("Processed inventory webhook")

	eventType, resource, ok := domain.EventTypeForTopic(event.Topic)
	if !ok {
		return nil
	}
	return h.events.Emit(ctx, event.Shop, eventType, resource, id, level.InventoryItemID, map[string]any{
		"inventory_item_id": level.InventoryItemID,
		"location_id":       level.LocationID,
		"available":         level.Available,
	})
}

var _ application.WebhookHandler = (*InventoryHandler)(nil)
