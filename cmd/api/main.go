package main

import (
	"context"
	"net/http"
	"os"

	"shopsync-core/internal/application"
	"shopsync-core/internal/application/webhook_handlers"
	"shopsync-core/internal/config"
	"shopsync-core/internal/infrastructure/pubsub"
	"shopsync-core/internal/infrastructure/repository"
	shopifyinfra "shopsync-core/internal/infrastructure/shopify"
	"shopsync-core/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	securitymiddleware "shopsync-core/internal/infrastructure/middleware"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Connect to MongoDB
	ctx := context.Background()
	mongoClient, err := repository.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(ctx)

	db := mongoClient.Database(cfg.MongoDatabase)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ensure indexes")
	}

	// Initialize repositories
	shopRepo := repository.NewShopRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	syncLogRepo := repository.NewSyncLogRepository(db)
	eventRepo := repository.NewEventRepository(db)
	webhookLogRepo := repository.NewWebhookLogRepository(db)
	oauthSessionRepo := repository.NewOAuthSessionRepository(db)

	// Event bus: Redis when configured so other processes see the
	// broadcasts, in-process otherwise.
	var eventBus ports.EventBus
	if cfg.RedisURL != "" {
		redisClient, err := pubsub.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		eventBus = pubsub.NewRedisEventBus(redisClient, logger)
		logger.Info().Msg("Using Redis event bus")
	} else {
		eventBus = pubsub.NewEventPubSub(logger)
		logger.Info().Msg("Using in-process event bus")
	}

	// Initialize upstream client and webhook verifier
	shopifyClient := shopifyinfra.NewClient(cfg.ShopifyAPIKey, cfg.ShopifyAPISecret, logger)
	webhookVerifier := shopifyinfra.NewWebhookVerifier(cfg.WebhookSecret)

	// Initialize application services
	sessionService := application.NewSessionService(shopRepo, logger)
	eventService := application.NewEventService(eventRepo, eventBus, logger)
	syncService := application.NewSyncService(shopRepo, resourceRepo, syncLogRepo, shopifyClient, application.SyncConfig{
		BackfillDays: cfg.SyncBackfillDays,
		PageSize:     cfg.SyncPageSize,
		PageDelay:    cfg.SyncPageDelay,
		MaxPages:     cfg.SyncMaxPages,
	}, logger)

	// Initialize webhook dispatcher and register handlers
	webhookDispatcher := application.NewWebhookDispatcher(logger)
	webhookDispatcher.RegisterHandler(webhook_handlers.NewOrderHandler(logger, resourceRepo, eventService))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewProductHandler(logger, resourceRepo, eventService))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewCustomerHandler(logger, resourceRepo, eventService))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewInventoryHandler(logger, resourceRepo, eventService))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewAppUninstalledHandler(logger, sessionService))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewComplianceHandler(logger, resourceRepo))

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(securitymiddleware.SecurityHeadersMiddleware())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Health check - must be public for monitoring
	r.Get("/health", healthHandler(mongoClient))

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// OAuth routes
	r.Get("/auth/shopify", oauthInitHandler(oauthSessionRepo, shopifyClient, cfg, logger))
	r.Get("/auth/callback", oauthCallbackHandler(oauthSessionRepo, shopifyClient, sessionService, syncService, cfg, logger))

	// Webhook endpoints. Compliance topics arrive on their own path
	// but share verification, audit logging, and dispatch.
	webhooks := webhookHandler(webhookVerifier, webhookLogRepo, sessionService, webhookDispatcher, logger)
	r.Post("/webhooks/shopify", webhooks)
	r.Post("/webhooks/compliance", webhooks)

	// Sync trigger and ledger
	r.Post("/sync/{shopID}", syncTriggerHandler(sessionService, syncService, logger))
	r.Get("/sync/{shopID}", syncStatusHandler(sessionService, syncLogRepo, logger))

	// Realtime event stream
	r.Get("/events/{shopID}", eventsHandler(sessionService, eventService, eventBus, logger))

	logger.Info().Str("port", cfg.Port).Msg("Starting API server")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
