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

// ProductHandler handles product-related webhook events
type ProductHandler struct {
	logger    zerolog.Logger
	resources ports.ResourceRepository
	events    *application.EventService
}

// NewProductHandler creates a new product webhook handler
func NewProductHandler(logger zerolog.Logger, resources ports.ResourceRepository, events *application.EventService) *ProductHandler {
	return &ProductHandler{
		logger:    logger,
		resources: resources,
		events:    events,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *ProductHandler) CanHandle(topic string) bool {
	return strings.HasPrefix(topic, "products/")
}

// Handle processes a product webhook event
func (h *ProductHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	if event.Shop == nil {
		h.logger.Warn().
			Str("topic", event.Topic).
			Str("shop", event.ShopDomain).
			Msg("Product webhook for unknown shop, ignoring")
		return nil
	}

	if event.Topic == "products/delete" {
		return h.handleDelete(ctx, event)
	}

	var payload goshopify.Product
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse product webhook payload: %w (%v)", domain.ErrMalformedPayload, err)
	}

	product, err := mapping.Product(event.Shop.ID, &payload)
	if err != nil {
		return err
	}

	id, err := h.resources.UpsertProduct(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.Shop.Domain).
		Int64("productId", product.ShopifyID).
		Msg("Processed product webhook")

	eventType, resource, ok := domain.EventTypeForTopic(event.Topic)
	if !ok {
		return nil
	}
	return h.events.Emit(ctx, event.Shop, eventType, resource, id, product.ShopifyID, map[string]any{
		"title":  product.Title,
		"handle": product.Handle,
		"status": product.Status,
		"price":  product.Price,
	})
}

// Delete payloads carry only the upstream id; deleting something
// already gone is a no-op so redeliveries stay idempotent.
func (h *ProductHandler) handleDelete(ctx context.Context, event *domain.WebhookEvent) error {
	var payload struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse product delete payload: %w (%v)", domain.ErrMalformedPayload, err)
	}
	if payload.ID == 0 {
		return fmt.Errorf("product delete payload without id: %w", domain.ErrMalformedPayload)
	}

	deleted, err := h.resources.DeleteProduct(ctx, event.Shop.ID, payload.ID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	h.logger.Info().
		Str("shop", event.Shop.Domain).
		Int64("productId", payload.ID).
		Bool("existed", deleted).
		Msg("Processed product delete webhook")

	eventType, resource, ok := domain.EventTypeForTopic(event.Topic)
	if !ok {
		return nil
	}
	return h.events.Emit(ctx, event.Shop, eventType, resource, "", payload.ID, map[string]any{
		"existed": deleted,
	})
}

var _ application.WebhookHandler = (*ProductHandler)(nil)
