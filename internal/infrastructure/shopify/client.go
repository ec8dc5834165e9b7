package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"shopsync-core/internal/domain"
	"shopsync-core/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

type client struct {
	apiKey    string
	apiSecret string
	app       goshopify.App
	logger    zerolog.Logger
}

// NewClient creates the upstream Admin API adapter.
func NewClient(apiKey, apiSecret string, logger zerolog.Logger) ports.ShopifyClient {
	return &client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		app: goshopify.App{
			ApiKey:    apiKey,
			ApiSecret: apiSecret,
		},
		logger: logger,
	}
}

// forShop is a helper to create a goshopify client bound to one shop.
func (c *client) forShop(shopDomain string, accessToken string) (*goshopify.Client, error) {
	sc, err := goshopify.NewClient(c.app, shopDomain, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return sc, nil
}

// apiErr maps upstream failures to the error taxonomy. A 403 is the
// authorization-denied signal the synchronizer degrades on; everything
// else stays a transient upstream failure.
func apiErr(err error, what string) error {
	var respErr goshopify.ResponseError
	if errors.As(err, &respErr) && respErr.Status == http.StatusForbidden {
		return fmt.Errorf("%s: %w", what, domain.ErrScopeDenied)
	}
	return fmt.Errorf("failed to %s: %w", what, err)
}

// Install flow

func (c *client) AuthorizeURL(shop string, scopes []string, redirectURI string, state string) string {
	// Shopify expects scopes comma-separated without spaces. The URL
	// is built by hand because the library's AuthorizeUrl does not
	// carry redirect_uri and state.
	return fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		shop,
		c.apiKey,
		url.QueryEscape(strings.Join(scopes, ",")),
		url.QueryEscape(redirectURI),
		url.QueryEscape(state),
	)
}

func (c *client) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	token, err := c.app.GetAccessToken(ctx, shop, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}
	return token, nil
}

func (c *client) GetShop(ctx context.Context, shopDomain string, accessToken string) (*goshopify.Shop, error) {
	sc, err := c.forShop(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	shop, err := sc.Shop.Get(ctx, nil)
	if err != nil {
		return nil, apiErr(err, "get shop")
	}
	return shop, nil
}

func (c *client) CreateWebhook(ctx context.Context, shopDomain string, accessToken string, topic string, address string) (*goshopify.Webhook, error) {
	sc, err := c.forShop(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	created, err := sc.Webhook.Create(ctx, goshopify.Webhook{
		Topic:   topic,
		Address: address,
		Format:  "json",
	})
	if err != nil {
		return nil, apiErr(err, "create webhook")
	}
	return created, nil
}

// Bulk sync

func (c *client) ListLocations(ctx context.Context, shopDomain string, accessToken string) ([]goshopify.Location, error) {
	sc, err := c.forShop(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	locations, err := sc.Location.List(ctx, nil)
	if err != nil {
		return nil, apiErr(err, "list locations")
	}
	return locations, nil
}

func (c *client) ListProducts(ctx context.Context, shopDomain string, accessToken string, opts goshopify.ListOptions) ([]goshopify.Product, *goshopify.Pagination, error) {
	sc, err := c.forShop(shopDomain, accessToken)
	if err != nil {
		return nil, nil, err
	}
	products, pagination, err := sc.Product.ListWithPagination(ctx, opts)
	if err != nil {
		return nil, nil, apiErr(err, "list products")
	}
	return products, pagination, nil
}

func (c *client) ListCustomers(ctx context.Context, shopDomain string, accessToken string, opts goshopify.ListOptions) ([]goshopify.Customer, *goshopify.Pagination, error) {
	sc, err := c.forShop(shopDomain, accessToken)
	if err != nil {
		return nil, nil, err
	}
	customers, pagination, err := sc.Customer.ListWithPagination(ctx, opts)
	if err != nil {
		return nil, nil, apiErr(err, "list customers")
	}
	return customers, pagination, nil
}

func (c *client) ListOrders(ctx context.Context, shopDomain string, accessToken string, opts goshopify.OrderListOptions) ([]goshopify.Order, *goshopify.Pagination, error) {
	sc, err := c.forShop(shopDomain, accessToken)
	if err != nil {
		return nil, nil, err
	}
	orders, pagination, err := sc.Order.ListWithPagination(ctx, opts)
	if err != nil {
		return nil, nil, apiErr(err, "list orders")
	}
	return orders, pagination, nil
}

// inventoryLevelListOptions is local rather than the library's struct
// so the location filter stays a plain int64 at this boundary.
type inventoryLevelListOptions struct {
	LocationIDs []int64 `url:"location_ids,omitempty,comma"`
	Limit       int     `url:"limit,omitempty"`
}

func (c *client) ListInventoryLevels(ctx context.Context, shopDomain string, accessToken string, locationID int64, limit int) ([]goshopify.InventoryLevel, error) {
	sc, err := c.forShop(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	levels, err := sc.InventoryLevel.List(ctx, inventoryLevelListOptions{
		LocationIDs: []int64{locationID},
		Limit:       limit,
	})
	if err != nil {
		return nil, apiErr(err, "list inventory levels")
	}
	return levels, nil
}

type inventoryItemListOptions struct {
	IDs   []int64 `url:"ids,omitempty,comma"`
	Limit int     `url:"limit,omitempty"`
}

func (c *client) ListInventoryItems(ctx context.Context, shopDomain string, accessToken string, itemIDs []int64) ([]goshopify.InventoryItem, error) {
	sc, err := c.forShop(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	items, err := sc.InventoryItem.List(ctx, inventoryItemListOptions{
		IDs:   itemIDs,
		Limit: len(itemIDs),
	})
	if err != nil {
		return nil, apiErr(err, "list inventory items")
	}
	return items, nil
}
