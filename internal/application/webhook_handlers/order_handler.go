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

// OrderHandler handles order-related webhook events: it upserts the
// order into the local store and emits the matching realtime event.
type OrderHandler struct {
	logger    zerolog.Logger
	resources ports.ResourceRepository
	events    *application.EventService
}

// NewOrderHandler creates a new order webhook handler
func NewOrderHandler(logger zerolog.Logger, resources ports.ResourceRepository, events *application.EventService) *OrderHandler {
	return &OrderHandler{
		logger:    logger,
		resources: resources,
		events:    events,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *OrderHandler) CanHandle(topic string) bool {
	return strings.HasPrefix(topic, "orders/")
}

// Handle processes an order webhook event
func (h *OrderHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	if event.Shop == nil {
		h.logger.Warn().
			Str("topic", event.Topic).
			Str("shop", event.ShopDomain).
			Msg("Order webhook for unknown shop, ignoring")
		return nil
	}

	var payload goshopify.Order
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse order webhook payload: %w (%v)", domain.ErrMalformedPayload, err)
	}

	order, err := mapping.Order(event.Shop.ID, &payload)
	if err != nil {
		return err
	}

	// Attach the local customer reference when the customer has
	// already been synced; order webhooks can arrive before the
	// customer does, so a miss is not an error.
	if order.CustomerShopifyID != nil {
		customer, err := h.resources.CustomerByShopifyID(ctx, event.Shop.ID, *order.CustomerShopifyID)
		if err != nil {
			return fmt.Errorf("failed to resolve order customer: %w", err)
		}
		if customer != nil {
			order.CustomerID = &customer.ID
		}
	}

	id, err := h.resources.UpsertOrder(ctx, order)
	if err != nil {
		return fmt.Errorf("failed to upsert order: %w", err)
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.Shop.Domain).
		Int64("orderId", order.ShopifyID).
		Msg("Processed order webhook")

	eventType, resource, ok := domain.EventTypeForTopic(event.Topic)
	if !ok {
		return nil
	}
	return h.events.Emit(ctx, event.Shop, eventType, resource, id, order.ShopifyID, map[string]any{
		"order_number":     order.Number,
		"name":             order.Name,
		"total_price":      order.TotalPrice,
		"currency":         order.Currency,
		"financial_status": order.FinancialStatus,
		"email":            order.Email,
	})
}

var _ application.WebhookHandler = (*OrderHandler)(nil)
