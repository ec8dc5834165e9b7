package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shopsync-core/internal/application"
	"shopsync-core/internal/config"
	"shopsync-core/internal/domain"
	"shopsync-core/internal/infrastructure/metrics"
	shopifyinfra "shopsync-core/internal/infrastructure/shopify"
	"shopsync-core/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

// webhookTopics is what a fresh install subscribes to.
var webhookTopics = []string{
	"app/uninstalled",
	"orders/create",
	"orders/updated",
	"orders/paid",
	"orders/cancelled",
	"orders/fulfilled",
	"products/create",
	"products/update",
	"products/delete",
	"customers/create",
	"customers/update",
	"customers/delete",
	"inventory_levels/update",
	"inventory_levels/connect",
}

func healthHandler(client *mongo.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx, nil); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "degraded"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// webhookHandler receives Shopify webhook requests: verify, audit-log,
// resolve the tenant, dispatch. The response code drives upstream
// redelivery, so only transient failures return 5xx.
func webhookHandler(
	verifier *shopifyinfra.WebhookVerifier,
	webhookLogs ports.WebhookLogRepository,
	sessions *application.SessionService,
	dispatcher *application.WebhookDispatcher,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		topic := r.Header.Get("X-Shopify-Topic")
		shopDomain := r.Header.Get("X-Shopify-Shop-Domain")

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to read webhook payload")
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		// Verification comes before anything else: an unsigned body is
		// never parsed, logged, or dispatched.
		hmacHeader := r.Header.Get("X-Shopify-Hmac-SHA256")
		if err := verifier.Verify(payload, hmacHeader); err != nil {
			logger.Warn().Err(err).Str("shop", shopDomain).Msg("Webhook signature verification failed")
			metrics.WebhooksReceived.WithLabelValues(topic, "unauthorized").Inc()
			http.Error(w, "Invalid signature", http.StatusUnauthorized)
			return
		}

		if topic == "" {
			logger.Warn().Msg("Missing X-Shopify-Topic header")
			metrics.WebhooksReceived.WithLabelValues("", "malformed").Inc()
			http.Error(w, "Missing X-Shopify-Topic header", http.StatusBadRequest)
			return
		}
		if !json.Valid(payload) {
			logger.Warn().Str("topic", topic).Msg("Webhook payload is not valid JSON")
			metrics.WebhooksReceived.WithLabelValues(topic, "malformed").Inc()
			http.Error(w, "Malformed payload", http.StatusBadRequest)
			return
		}

		// Audit log before dispatch; a logging failure never blocks
		// processing.
		logID, err := webhookLogs.Insert(ctx, &domain.WebhookLogEntry{
			Topic:      topic,
			ShopDomain: shopDomain,
			Payload:    payload,
		})
		if err != nil {
			logger.Error().Err(err).Str("topic", topic).Msg("Failed to write webhook audit log")
		}

		// Resolve the tenant. Webhooks for unknown or uninstalled shops
		// still reach handlers (uninstall cleanup needs them); handlers
		// decide what a nil shop means.
		shop, err := sessions.ByDomain(ctx, shopDomain)
		if err != nil && !errors.Is(err, domain.ErrShopNotFound) {
			logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to resolve shop")
			metrics.WebhooksReceived.WithLabelValues(topic, "failed").Inc()
			http.Error(w, "Failed to process webhook event", http.StatusInternalServerError)
			return
		}

		event := &domain.WebhookEvent{
			Topic:      topic,
			ShopDomain: shopDomain,
			Payload:    payload,
			Shop:       shop,
			LogID:      logID,
		}

		if err := dispatcher.Dispatch(ctx, event); err != nil {
			logger.Error().
				Err(err).
				Str("topic", topic).
				Str("shop", shopDomain).
				Msg("Failed to dispatch webhook event")
			if logID != "" {
				if markErr := webhookLogs.MarkProcessed(ctx, logID, err.Error()); markErr != nil {
					logger.Error().Err(markErr).Str("topic", topic).Msg("Failed to close webhook audit log")
				}
			}

			if errors.Is(err, domain.ErrMalformedPayload) {
				metrics.WebhooksReceived.WithLabelValues(topic, "malformed").Inc()
				http.Error(w, "Malformed payload", http.StatusBadRequest)
				return
			}
			metrics.WebhooksReceived.WithLabelValues(topic, "failed").Inc()
			// 500 triggers Shopify redelivery
			http.Error(w, "Failed to process webhook event", http.StatusInternalServerError)
			return
		}

		if logID != "" {
			if err := webhookLogs.MarkProcessed(ctx, logID, ""); err != nil {
				logger.Error().Err(err).Str("topic", topic).Msg("Failed to close webhook audit log")
			}
		}
		if dispatcher.Handles(topic) {
			metrics.WebhooksReceived.WithLabelValues(topic, "processed").Inc()
		} else {
			metrics.WebhooksReceived.WithLabelValues(topic, "ignored").Inc()
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"received": "true",
		})
	}
}

// oauthInitHandler initiates the OAuth install flow
func oauthInitHandler(
	oauthSessions ports.OAuthSessionRepository,
	client ports.ShopifyClient,
	cfg *config.Config,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		shop := r.URL.Query().Get("shop")
		if shop == "" {
			http.Error(w, "shop parameter is required", http.StatusBadRequest)
			return
		}
		if !strings.HasSuffix(shop, ".myshopify.com") {
			http.Error(w, "shop must be a myshopify.com domain", http.StatusBadRequest)
			return
		}

		// Random state for CSRF protection
		stateBytes := make([]byte, 16)
		if _, err := rand.Read(stateBytes); err != nil {
			logger.Error().Err(err).Msg("Failed to generate state")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		state := hex.EncodeToString(stateBytes)

		returnURL := r.URL.Query().Get("return_url")
		if returnURL == "" {
			returnURL = cfg.AppURL
		}

		session := &domain.OAuthSession{
			State:     state,
			Shop:      shop,
			Scopes:    cfg.Scopes,
			ReturnURL: returnURL,
			ExpiresAt: time.Now().Add(10 * time.Minute),
		}
		if err := oauthSessions.Create(ctx, session); err != nil {
			logger.Error().Err(err).Msg("Failed to create OAuth session")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		authURL := client.AuthorizeURL(shop, cfg.Scopes, cfg.AppURL+"/auth/callback", state)
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// oauthCallbackHandler completes the install: state check, token
// exchange, shop persistence, webhook registration, initial sync.
func oauthCallbackHandler(
	oauthSessions ports.OAuthSessionRepository,
	client ports.ShopifyClient,
	sessions *application.SessionService,
	syncService *application.SyncService,
	cfg *config.Config,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		shop := r.URL.Query().Get("shop")
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")
		if shop == "" || code == "" || state == "" {
			http.Error(w, "Missing required parameters", http.StatusBadRequest)
			return
		}

		session, err := oauthSessions.Get(ctx, state)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to get OAuth session")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if session == nil || session.Shop != shop {
			http.Error(w, "Invalid session", http.StatusUnauthorized)
			return
		}
		oauthSessions.Delete(ctx, state)

		token, err := client.ExchangeToken(ctx, shop, code)
		if err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("Failed to exchange token")
			http.Error(w, "Failed to complete installation", http.StatusInternalServerError)
			return
		}

		shopInfo, err := client.GetShop(ctx, shop, token)
		if err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("Failed to fetch shop details")
			http.Error(w, "Failed to complete installation", http.StatusInternalServerError)
			return
		}

		stored, err := sessions.Store(ctx, application.StoreShopInput{
			Domain:      shop,
			AccessToken: token,
			Scopes:      session.Scopes,
			ShopifyID:   int64(shopInfo.Id),
			Currency:    shopInfo.Currency,
			Timezone:    shopInfo.IanaTimezone,
		})
		if err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("Failed to store shop")
			http.Error(w, "Failed to complete installation", http.StatusInternalServerError)
			return
		}

		// Webhook registration is best-effort per topic; a topic that
		// fails can be registered again on re-auth.
		address := cfg.AppURL + "/webhooks/shopify"
		for _, topic := range webhookTopics {
			if _, err := client.CreateWebhook(ctx, shop, token, topic, address); err != nil {
				logger.Warn().Err(err).Str("shop", shop).Str("topic", topic).Msg("Failed to register webhook")
			}
		}

		// Kick off the initial backfill detached from the request.
		go func() {
			if err := syncService.Run(context.Background(), stored.ID); err != nil {
				logger.Error().Err(err).Str("shop", shop).Msg("Initial sync failed")
			}
		}()

		redirectURL := fmt.Sprintf("%s?installed=true&shop=%s",
			session.ReturnURL,
			url.QueryEscape(shop),
		)
		http.Redirect(w, r, redirectURL, http.StatusFound)
	}
}

// syncTriggerHandler starts a bulk sync in the background and returns
// immediately; progress is read from the ledger.
func syncTriggerHandler(
	sessions *application.SessionService,
	syncService *application.SyncService,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID := chi.URLParam(r, "shopID")

		shop, err := sessions.ByID(r.Context(), shopID)
		if err != nil {
			if errors.Is(err, domain.ErrShopNotFound) {
				http.Error(w, "Shop not found", http.StatusNotFound)
				return
			}
			logger.Error().Err(err).Str("shopId", shopID).Msg("Failed to load shop")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		go func() {
			if err := syncService.Run(context.Background(), shop.ID); err != nil {
				logger.Error().Err(err).Str("shop", shop.Domain).Msg("Sync failed")
			}
		}()

		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "accepted",
			"shop":   shop.Domain,
		})
	}
}

// syncStatusHandler returns the sync ledger for a shop, newest first.
func syncStatusHandler(
	sessions *application.SessionService,
	syncLogs ports.SyncLogRepository,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID := chi.URLParam(r, "shopID")

		if _, err := sessions.ByID(r.Context(), shopID); err != nil {
			if errors.Is(err, domain.ErrShopNotFound) {
				http.Error(w, "Shop not found", http.StatusNotFound)
				return
			}
			logger.Error().Err(err).Str("shopId", shopID).Msg("Failed to load shop")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		entries, err := syncLogs.ListByShop(r.Context(), shopID)
		if err != nil {
			logger.Error().Err(err).Str("shopId", shopID).Msg("Failed to list sync ledger")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"shop_id": shopID,
			"entries": entries,
		})
	}
}

// eventsHandler streams realtime events over SSE: the stored backlog
// first, then the live feed until the client disconnects.
func eventsHandler(
	sessions *application.SessionService,
	events *application.EventService,
	bus ports.EventBus,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID := chi.URLParam(r, "shopID")
		ctx := r.Context()

		if _, err := sessions.ByID(ctx, shopID); err != nil {
			if errors.Is(err, domain.ErrShopNotFound) {
				http.Error(w, "Shop not found", http.StatusNotFound)
				return
			}
			logger.Error().Err(err).Str("shopId", shopID).Msg("Failed to load shop")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}

		// Subscribe before replaying the backlog so events arriving
		// during the replay are not lost.
		ch, cancel, err := bus.Subscribe(ctx, shopID)
		if err != nil {
			logger.Error().Err(err).Str("shopId", shopID).Msg("Failed to subscribe")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		backlog, err := events.Backlog(ctx, shopID)
		if err != nil {
			logger.Error().Err(err).Str("shopId", shopID).Msg("Failed to load event backlog")
		}
		for _, event := range backlog {
			writeSSE(w, event)
		}
		flusher.Flush()

		for {
			select {
			case <-ctx.Done():
				return
			case event, open := <-ch:
				if !open {
					return
				}
				writeSSE(w, event)
				flusher.Flush()
			}
		}
	}
}

func writeSSE(w io.Writer, event *domain.RealtimeEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.EventType, data)
}
