package webhook_handlers

import (
	"context"
	"errors"

	"shopsync-core/internal/application"
	"shopsync-core/internal/domain"

	"github.com/rs/zerolog"
)

// AppUninstalledHandler handles app uninstalled webhook events by
// soft-deactivating the shop. Synced data is retained.
type AppUninstalledHandler struct {
	logger   zerolog.Logger
	sessions *application.SessionService
}

// NewAppUninstalledHandler creates a new app uninstalled webhook handler
func NewAppUninstalledHandler(logger zerolog.Logger, sessions *application.SessionService) *AppUninstalledHandler {
	return &AppUninstalledHandler{
		logger:   logger,
		sessions: sessions,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *AppUninstalledHandler) CanHandle(topic string) bool {
	return topic == "app/uninstalled"
}

// Handle processes an app uninstalled webhook event
func (h *AppUninstalledHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	err := h.sessions.MarkUninstalled(ctx, event.ShopDomain)
	if errors.Is(err, domain.ErrShopNotFound) {
		// Already deactivated, or never installed. Redeliveries land
		// here; acknowledge so upstream stops retrying.
		h.logger.Info().
			Str("shop", event.ShopDomain).
			Msg("Uninstall webhook for unknown or inactive shop, ignoring")
		return nil
	}
	return err
}

var _ application.WebhookHandler = (*AppUninstalledHandler)(nil)
