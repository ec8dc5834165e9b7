package application

import (
	"context"
	"fmt"

	"shopsync-core/internal/domain"

	"github.com/rs/zerolog"
)

// WebhookHandler processes webhooks for the topics it claims via
// CanHandle. Handle must be idempotent: upstream redelivers on any
// non-2xx response.
type WebhookHandler interface {
	CanHandle(topic string) bool
	Handle(ctx context.Context, event *domain.WebhookEvent) error
}

// WebhookDispatcher routes a verified webhook to the first registered
// handler claiming its topic.
type WebhookDispatcher struct {
	handlers []WebhookHandler
	logger   zerolog.Logger
}

func NewWebhookDispatcher(logger zerolog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{logger: logger}
}

func (d *WebhookDispatcher) RegisterHandler(handler WebhookHandler) {
	d.handlers = append(d.handlers, handler)
}

// Handles reports whether any registered handler claims the topic.
func (d *WebhookDispatcher) Handles(topic string) bool {
	for _, handler := range d.handlers {
		if handler.CanHandle(topic) {
			return true
		}
	}
	return false
}

// Dispatch routes the event. A topic no handler claims is acknowledged
// and ignored, never an error: failing it would only make upstream
// redeliver something we will never process.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) error {
	for _, handler := range d.handlers {
		if !handler.CanHandle(event.Topic) {
			continue
		}
		if err := handler.Handle(ctx, event); err != nil {
			return fmt.Errorf("failed to handle %s webhook: %w", event.Topic, err)
		}
		return nil
	}

	d.logger.Debug().
		Str("topic", event.Topic).
		Str("shop", event.ShopDomain).
		Msg("No handler registered for topic, ignoring")
	return nil
}
