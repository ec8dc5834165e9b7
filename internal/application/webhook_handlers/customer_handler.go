package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"shopsync-core/internal/application"
	"shopsync-core/internal/application/mapping"
	"shopsync-core/internal/domain"
	"shopsync-core/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// CustomerHandler handles customer-related webhook events
type CustomerHandler struct {
	logger    zerolog.Logger
	resources ports.ResourceRepository
	events    *application.EventService
}

// NewCustomerHandler creates a new customer webhook handler
func NewCustomerHandler(logger zerolog.Logger, resources ports.ResourceRepository, events *application.EventService) *CustomerHandler {
	return &CustomerHandler{
		logger:    logger,
		resources: resources,
		events:    events,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *CustomerHandler) CanHandle(topic string) bool {
	// Compliance topics (customers/data_request, customers/redact)
	// share the prefix but are served by the compliance endpoint,
	// not here.
	switch topic {
	case "customers/create", "customers/update", "customers/delete":
		return true
	}
	return false
}

// Handle processes a customer webhook event
func (h *CustomerHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	if event.Shop == nil {
		h.logger.Warn().
			Str("topic", event.Topic).
			Str("shop", event.ShopDomain).
			Msg("Customer webhook for unknown shop, ignoring")
		return nil
	}

	if event.Topic == "customers/delete" {
		return h.handleDelete(ctx, event)
	}

	var payload goshopify.Customer
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse customer webhook payload: %w (%v)", domain.ErrMalformedPayload, err)
	}

	customer, err := mapping.Customer(event.Shop.ID, &payload)
	if err != nil {
		return err
	}

	id, err := h.resources.UpsertCustomer(ctx, customer)
	if err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.Shop.Domain).
		Int64("customerId", customer.ShopifyID).
		Msg("Processed customer webhook")

	eventType, resource, ok := domain.EventTypeForTopic(event.Topic)
	if !ok {
		return nil
	}
	return h.events.Emit(ctx, event.Shop, eventType, resource, id, customer.ShopifyID, map[string]any{
		"email":      customer.Email,
		"first_name": customer.FirstName,
		"last_name":  customer.LastName,
	})
}

func (h *CustomerHandler) handleDelete(ctx context.Context, event *domain.WebhookEvent) error {
	var payload struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse customer delete payload: %w (%v)", domain.ErrMalformedPayload, err)
	}
	if payload.ID == 0 {
		return fmt.Errorf("customer delete payload without id: %w", domain.ErrMalformedPayload)
	}

	deleted, err := h.resources.DeleteCustomer(ctx, event.Shop.ID, payload.ID)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	h.logger.Info().
		Str("shop", event.Shop.Domain).
		Int64("customerId", payload.ID).
		Bool("existed", deleted).
		Msg("Processed customer delete webhook")

	eventType, resource, ok := domain.EventTypeForTopic(event.Topic)
	if !ok {
		return nil
	}
	return h.events.Emit(ctx, event.Shop, eventType, resource, "", payload.ID, map[string]any{
		"existed": deleted,
	})
}

var _ application.WebhookHandler = (*CustomerHandler)(nil)
