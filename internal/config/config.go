package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is built once at process start and injected into the
// verifier, router glue, and synchronizer. Nothing else reads the
// environment.
type Config struct {
	Port          string
	AppURL        string
	MongoURI      string
	MongoDatabase string
	RedisURL      string

	ShopifyAPIKey    string
	ShopifyAPISecret string
	// WebhookSecret signs inbound webhooks. Shopify uses the API
	// secret for apps; it is kept separate so tests and custom
	// webhook sources can override it.
	WebhookSecret string
	Scopes        []string

	SyncBackfillDays int
	SyncPageSize     int
	SyncPageDelay    time.Duration
	SyncMaxPages     int
}

// Load reads the environment into a Config. Only the Shopify
// credentials and the Mongo URI are hard requirements; everything
// else has a workable default.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		AppURL:           getEnv("APP_URL", "http://localhost:8080"),
		MongoURI:         getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:    getEnv("MONGODB_DATABASE", "shopsync"),
		RedisURL:         os.Getenv("REDIS_URL"),
		ShopifyAPIKey:    os.Getenv("SHOPIFY_API_KEY"),
		ShopifyAPISecret: os.Getenv("SHOPIFY_API_SECRET"),
		SyncBackfillDays: 60,
		SyncPageSize:     250,
		SyncPageDelay:    500 * time.Millisecond,
		SyncMaxPages:     1000,
	}

	cfg.WebhookSecret = getEnv("SHOPIFY_WEBHOOK_SECRET", cfg.ShopifyAPISecret)

	scopes := getEnv("SHOPIFY_SCOPES", "read_products,read_orders,read_customers,read_inventory,read_locations")
	for _, s := range strings.Split(scopes, ",") {
		if s = strings.TrimSpace(s); s != "" {
			cfg.Scopes = append(cfg.Scopes, s)
		}
	}

	var err error
	if cfg.SyncBackfillDays, err = getEnvInt("SYNC_BACKFILL_DAYS", cfg.SyncBackfillDays); err != nil {
		return nil, err
	}
	if cfg.SyncPageSize, err = getEnvInt("SYNC_PAGE_SIZE", cfg.SyncPageSize); err != nil {
		return nil, err
	}
	if cfg.SyncMaxPages, err = getEnvInt("SYNC_MAX_PAGES", cfg.SyncMaxPages); err != nil {
		return nil, err
	}
	if raw := os.Getenv("SYNC_PAGE_DELAY"); raw != "" {
		if cfg.SyncPageDelay, err = time.ParseDuration(raw); err != nil {
			return nil, errors.New("invalid SYNC_PAGE_DELAY duration")
		}
	}

	if cfg.ShopifyAPIKey == "" || cfg.ShopifyAPISecret == "" {
		return nil, errors.New("SHOPIFY_API_KEY and SHOPIFY_API_SECRET are required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid " + key + ": must be an integer")
	}
	return n, nil
}
