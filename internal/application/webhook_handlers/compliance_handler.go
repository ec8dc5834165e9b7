package webhook_handlers

import (
	"context"
	"encoding/json"

	"shopsync-core/internal/application"
	"shopsync-core/internal/domain"
	"shopsync-core/internal/ports"

	"github.com/rs/zerolog"
)

// ComplianceHandler handles the mandatory privacy webhooks. Requests
// are acknowledged and logged; customers/redact additionally erases
// the customer record. Once a compliance request is verified and
// logged it is always acknowledged: internal failures are logged and
// swallowed, never surfaced as a response error.
type ComplianceHandler struct {
	logger    zerolog.Logger
	resources ports.ResourceRepository
}

// NewComplianceHandler creates a new compliance webhook handler
func NewComplianceHandler(logger zerolog.Logger, resources ports.ResourceRepository) *ComplianceHandler {
	return &ComplianceHandler{
		logger:    logger,
		resources: resources,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *ComplianceHandler) CanHandle(topic string) bool {
	switch topic {
	case "customers/data_request", "customers/redact", "shop/redact":
		return true
	}
	return false
}

// Handle processes a compliance webhook event
func (h *ComplianceHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.ShopDomain).
		Msg("Received compliance webhook")

	if event.Topic != "customers/redact" || event.Shop == nil {
		return nil
	}

	var payload struct {
		Customer struct {
			ID int64 `json:"id"`
		} `json:"customer"`
	}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		h.logger.Warn().
			Err(err).
			Str("shop", event.ShopDomain).
			Msg("Unparseable customer redact payload, acknowledging anyway")
		return nil
	}
	if payload.Customer.ID == 0 {
		return nil
	}

	deleted, err := h.resources.DeleteCustomer(ctx, event.Shop.ID, payload.Customer.ID)
	if err != nil {
		// A failed erasure is an operational problem to chase from the
		// logs, not a reason to make upstream redeliver.
		h.logger.Error().
			Err(err).
			Str("shop", event.Shop.Domain).
			Int64("customerId", payload.Customer.ID).
			Msg("Failed to redact customer")
		return nil
	}
	h.logger.Info().
		Str("shop", event.Shop.Domain).
		Int64("customerId", payload.Customer.ID).
		Bool("existed", deleted).
		Msg("Redacted customer")
	return nil
}

var _ application.WebhookHandler = (*ComplianceHandler)(nil)
