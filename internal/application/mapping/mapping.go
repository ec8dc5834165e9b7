// Package mapping is the single source of truth for converting
// upstream Shopify shapes into the local schema. Both the webhook
// path and the bulk synchronizer go through these functions, so the
// two sync paths can never diverge in shape.
package mapping

import (
	"fmt"
	"time"

	"shopsync-core/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/shopspring/decimal"
)

// Every transform validates the upstream id and fails fast on
// absence instead of letting zero keys reach the store.

func Product(shopID string, p *goshopify.Product) (*domain.Product, error) {
	if p.Id == 0 {
		return nil, fmt.Errorf("product payload without id: %w", domain.ErrMalformedPayload)
	}

	out := &domain.Product{
		ShopID:      shopID,
		ShopifyID:   int64(p.Id),
		Title:       p.Title,
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
		Handle:      p.Handle,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		SyncedAt:    time.Now().UTC(),
	}

	// Display price and SKU come from the first variant; products
	// without variants keep empty strings.
	if len(p.Variants) > 0 {
		out.Price = money(p.Variants[0].Price)
		out.SKU = p.Variants[0].Sku
	}

	return out, nil
}

func Customer(shopID string, c *goshopify.Customer) (*domain.Customer, error) {
	if c.Id == 0 {
		return nil, fmt.Errorf("customer payload without id: %w", domain.ErrMalformedPayload)
	}

	return &domain.Customer{
		ShopID:    shopID,
		ShopifyID: int64(c.Id),
		Email:     optString(c.Email),
		FirstName: optString(c.FirstName),
		LastName:  optString(c.LastName),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		SyncedAt:  time.Now().UTC(),
	}, nil
}

// Order maps the upstream order without resolving the customer
// reference; callers attach the local customer id best-effort after
// the transform.
func Order(shopID string, o *goshopify.Order) (*domain.Order, error) {
	if o.Id == 0 {
		return nil, fmt.Errorf("order payload without id: %w", domain.ErrMalformedPayload)
	}

	out := &domain.Order{
		ShopID:            shopID,
		ShopifyID:         int64(o.Id),
		Number:            int(o.OrderNumber),
		Name:              o.Name,
		Email:             o.Email,
		TotalPrice:        money(o.TotalPrice),
		Currency:          o.Currency,
		FinancialStatus:   string(o.FinancialStatus),
		FulfillmentStatus: string(o.FulfillmentStatus),
		ProcessedAt:       o.ProcessedAt,
		CancelledAt:       o.CancelledAt,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		SyncedAt:          time.Now().UTC(),
	}

	if o.Customer != nil && o.Customer.Id != 0 {
		id := int64(o.Customer.Id)
		out.CustomerShopifyID = &id
	}

	return out, nil
}

func Location(shopID string, l *goshopify.Location) (*domain.Location, error) {
	if l.Id == 0 {
		return nil, fmt.Errorf("location payload without id: %w", domain.ErrMalformedPayload)
	}

	return &domain.Location{
		ShopID:      shopID,
		ShopifyID:   int64(l.Id),
		Name:        l.Name,
		City:        l.City,
		CountryCode: l.CountryCode,
		Active:      l.Active,
		SyncedAt:    time.Now().UTC(),
	}, nil
}

func InventoryItem(shopID string, it *goshopify.InventoryItem) (*domain.InventoryItem, error) {
	if it.Id == 0 {
		return nil, fmt.Errorf("inventory item payload without id: %w", domain.ErrMalformedPayload)
	}

	return &domain.InventoryItem{
		ShopID:    shopID,
		ShopifyID: int64(it.Id),
		SKU:       it.SKU,
		Tracked:   optBool(it.Tracked),
		Cost:      money(it.Cost),
		SyncedAt:  time.Now().UTC(),
	}, nil
}

func InventoryLevel(shopID string, lv *goshopify.InventoryLevel) (*domain.InventoryLevel, error) {
	if lv.InventoryItemId == 0 || lv.LocationId == 0 {
		return nil, fmt.Errorf("inventory level payload without item/location ids: %w", domain.ErrMalformedPayload)
	}

	return &domain.InventoryLevel{
		ShopID:          shopID,
		InventoryItemID: int64(lv.InventoryItemId),
		LocationID:      int64(lv.LocationId),
		Available:       int(lv.Available),
		SyncedAt:        time.Now().UTC(),
	}, nil
}

// Optional fields on upstream structs arrive as pointers; these
// accessors tolerate both forms.

func optString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case *string:
		if s != nil {
			return *s
		}
	}
	return ""
}

func optBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case *bool:
		if b != nil {
			return *b
		}
	}
	return false
}

func money(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
