package domain

import "time"

// Synced resources mirror the upstream Shopify shapes, reduced to the
// fields the dashboard displays. Each is uniquely keyed by
// (ShopID, ShopifyID); upserts on that key are idempotent and replace
// the full record (last write wins, no merging).

type Product struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	ShopID      string     `json:"shop_id" bson:"shop_id"`
	ShopifyID   int64      `json:"shopify_id" bson:"shopify_id"`
	Title       string     `json:"title" bson:"title"`
	Vendor      string     `json:"vendor" bson:"vendor"`
	ProductType string     `json:"product_type" bson:"product_type"`
	Handle      string     `json:"handle" bson:"handle"`
	Status      string     `json:"status" bson:"status"`
	Price       string     `json:"price" bson:"price"`
	SKU         string     `json:"sku" bson:"sku"`
	CreatedAt   *time.Time `json:"created_at,omitempty" bson:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" bson:"updated_at"`
	SyncedAt    time.Time  `json:"synced_at" bson:"synced_at"`
}

type Customer struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	ShopID    string     `json:"shop_id" bson:"shop_id"`
	ShopifyID int64      `json:"shopify_id" bson:"shopify_id"`
	Email     string     `json:"email" bson:"email"`
	FirstName string     `json:"first_name" bson:"first_name"`
	LastName  string     `json:"last_name" bson:"last_name"`
	CreatedAt *time.Time `json:"created_at,omitempty" bson:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" bson:"updated_at"`
	SyncedAt  time.Time  `json:"synced_at" bson:"synced_at"`
}

// Order carries a best-effort reference to a locally known customer.
// CustomerID stays nil when the customer has not been synced yet;
// that is not an error.
type Order struct {
	ID                string     `json:"id" bson:"_id,omitempty"`
	ShopID            string     `json:"shop_id" bson:"shop_id"`
	ShopifyID         int64      `json:"shopify_id" bson:"shopify_id"`
	Number            int        `json:"number" bson:"number"`
	Name              string     `json:"name" bson:"name"`
	Email             string     `json:"email" bson:"email"`
	TotalPrice        string     `json:"total_price" bson:"total_price"`
	Currency          string     `json:"currency" bson:"currency"`
	FinancialStatus   string     `json:"financial_status" bson:"financial_status"`
	FulfillmentStatus string     `json:"fulfillment_status" bson:"fulfillment_status"`
	CustomerID        *string    `json:"customer_id,omitempty" bson:"customer_id"`
	CustomerShopifyID *int64     `json:"customer_shopify_id,omitempty" bson:"customer_shopify_id"`
	ProcessedAt       *time.Time `json:"processed_at,omitempty" bson:"processed_at"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at"`
	CreatedAt         *time.Time `json:"created_at,omitempty" bson:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty" bson:"updated_at"`
	SyncedAt          time.Time  `json:"synced_at" bson:"synced_at"`
}

type Location struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	ShopID      string    `json:"shop_id" bson:"shop_id"`
	ShopifyID   int64     `json:"shopify_id" bson:"shopify_id"`
	Name        string    `json:"name" bson:"name"`
	City        string    `json:"city" bson:"city"`
	CountryCode string    `json:"country_code" bson:"country_code"`
	Active      bool      `json:"active" bson:"active"`
	SyncedAt    time.Time `json:"synced_at" bson:"synced_at"`
}

type InventoryItem struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	ShopID    string    `json:"shop_id" bson:"shop_id"`
	ShopifyID int64     `json:"shopify_id" bson:"shopify_id"`
	SKU       string    `json:"sku" bson:"sku"`
	Tracked   bool      `json:"tracked" bson:"tracked"`
	Cost      string    `json:"cost" bson:"cost"`
	SyncedAt  time.Time `json:"synced_at" bson:"synced_at"`
}

// InventoryLevel has no single upstream ID; its upstream key is the
// (inventory item, location) pair.
type InventoryLevel struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	ShopID          string    `json:"shop_id" bson:"shop_id"`
	InventoryItemID int64     `json:"inventory_item_id" bson:"inventory_item_id"`
	LocationID      int64     `json:"location_id" bson:"location_id"`
	Available       int       `json:"available" bson:"available"`
	SyncedAt        time.Time `json:"synced_at" bson:"synced_at"`
}
