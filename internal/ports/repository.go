package ports

import (
	"context"
	"time"

	"shopsync-core/internal/domain"
)

// ShopRepository persists connected shops. Upsert is keyed by domain;
// lookups return only active shops (domain.ErrShopNotFound otherwise).
type ShopRepository interface {
	Upsert(ctx context.Context, shop *domain.Shop) (*domain.Shop, error)
	MarkUninstalled(ctx context.Context, shopDomain string) error
	UpdateLastSync(ctx context.Context, shopID string, at time.Time) error
	ByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error)
	ByID(ctx context.Context, id string) (*domain.Shop, error)
}

// ResourceRepository is the idempotent upsert-by-key store for synced
// resources. Every upsert is keyed by (shop, upstream id), returns
// the local id, and replaces the full record on conflict.
type ResourceRepository interface {
	UpsertProduct(ctx context.Context, p *domain.Product) (string, error)
	DeleteProduct(ctx context.Context, shopID string, shopifyID int64) (bool, error)

	UpsertCustomer(ctx context.Context, c *domain.Customer) (string, error)
	DeleteCustomer(ctx context.Context, shopID string, shopifyID int64) (bool, error)
	CustomerByShopifyID(ctx context.Context, shopID string, shopifyID int64) (*domain.Customer, error)

	UpsertOrder(ctx context.Context, o *domain.Order) (string, error)

	UpsertLocation(ctx context.Context, l *domain.Location) (string, error)
	LocationsByShop(ctx context.Context, shopID string) ([]*domain.Location, error)

	UpsertInventoryItem(ctx context.Context, it *domain.InventoryItem) (string, error)
	UpsertInventoryLevel(ctx context.Context, lv *domain.InventoryLevel) (string, error)
}

// SyncLogRepository persists the sync ledger. Entries transition from
// running to exactly one terminal status.
type SyncLogRepository interface {
	Create(ctx context.Context, entry *domain.SyncLogEntry) error
	MarkCompleted(ctx context.Context, id string, recordCount int) error
	MarkFailed(ctx context.Context, id string, recordCount int, message string) error
	ListByShop(ctx context.Context, shopID string) ([]*domain.SyncLogEntry, error)
}

// EventRepository persists realtime events and serves the reconnect
// backlog.
type EventRepository interface {
	Insert(ctx context.Context, event *domain.RealtimeEvent) error
	Recent(ctx context.Context, shopID string, limit int) ([]*domain.RealtimeEvent, error)
}

// WebhookLogRepository is the write-once webhook audit log.
type WebhookLogRepository interface {
	Insert(ctx context.Context, entry *domain.WebhookLogEntry) (string, error)
	MarkProcessed(ctx context.Context, id string, processingErr string) error
}

// OAuthSessionRepository stores install-flow state nonces.
type OAuthSessionRepository interface {
	Create(ctx context.Context, session *domain.OAuthSession) error
	Get(ctx context.Context, state string) (*domain.OAuthSession, error)
	Delete(ctx context.Context, state string) error
}
