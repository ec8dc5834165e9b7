package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SHOPIFY_API_KEY", "key")
	t.Setenv("SHOPIFY_API_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "shopsync", cfg.MongoDatabase)
	assert.Equal(t, 60, cfg.SyncBackfillDays)
	assert.Equal(t, 250, cfg.SyncPageSize)
	assert.Equal(t, 500*time.Millisecond, cfg.SyncPageDelay)
	assert.Equal(t, 1000, cfg.SyncMaxPages)
	// The webhook secret falls back to the API secret.
	assert.Equal(t, "secret", cfg.WebhookSecret)
	assert.Contains(t, cfg.Scopes, "read_products")
}

func TestLoad_RequiresCredentials(t *testing.T) {
	t.Setenv("SHOPIFY_API_KEY", "")
	t.Setenv("SHOPIFY_API_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SHOPIFY_WEBHOOK_SECRET", "other")
	t.Setenv("SYNC_BACKFILL_DAYS", "7")
	t.Setenv("SYNC_PAGE_DELAY", "2s")
	t.Setenv("SHOPIFY_SCOPES", "read_products, read_orders")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "other", cfg.WebhookSecret)
	assert.Equal(t, 7, cfg.SyncBackfillDays)
	assert.Equal(t, 2*time.Second, cfg.SyncPageDelay)
	assert.Equal(t, []string{"read_products", "read_orders"}, cfg.Scopes)
}

func TestLoad_RejectsBadNumbers(t *testing.T) {
	setRequired(t)
	t.Setenv("SYNC_PAGE_SIZE", "lots")

	_, err := Load()
	assert.Error(t, err)
}
