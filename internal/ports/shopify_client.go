package ports

import (
	"context"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

// ShopifyClient is the read/paginate surface of the upstream Admin
// API used by the synchronizer and the install flow. Paginated calls
// return the cursor for the next page; a nil pagination (or nil
// NextPageOptions) terminates the loop. A 403 from any call surfaces
// as domain.ErrScopeDenied.
type ShopifyClient interface {
	// Install flow
	AuthorizeURL(shop string, scopes []string, redirectURI string, state string) string
	ExchangeToken(ctx context.Context, shop string, code string) (string, error)
	GetShop(ctx context.Context, shop string, accessToken string) (*goshopify.Shop, error)
	CreateWebhook(ctx context.Context, shop string, accessToken string, topic string, address string) (*goshopify.Webhook, error)

	// Bulk sync
	ListLocations(ctx context.Context, shop string, accessToken string) ([]goshopify.Location, error)
	ListProducts(ctx context.Context, shop string, accessToken string, opts goshopify.ListOptions) ([]goshopify.Product, *goshopify.Pagination, error)
	ListCustomers(ctx context.Context, shop string, accessToken string, opts goshopify.ListOptions) ([]goshopify.Customer, *goshopify.Pagination, error)
	ListOrders(ctx context.Context, shop string, accessToken string, opts goshopify.OrderListOptions) ([]goshopify.Order, *goshopify.Pagination, error)
	ListInventoryLevels(ctx context.Context, shop string, accessToken string, locationID int64, limit int) ([]goshopify.InventoryLevel, error)
	ListInventoryItems(ctx context.Context, shop string, accessToken string, itemIDs []int64) ([]goshopify.InventoryItem, error)
}
