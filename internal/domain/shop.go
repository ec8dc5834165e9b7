package domain

import "time"

// Shop represents one connected Shopify store. It is the unit of data
// isolation: every synced resource and every realtime event is keyed
// by the shop's local ID.
type Shop struct {
	ID            string     `json:"id" bson:"_id,omitempty"`
	Domain        string     `json:"domain" bson:"domain"`
	ShopifyID     int64      `json:"shopify_id" bson:"shopify_id"`
	AccessToken   string     `json:"-" bson:"access_token"`
	Scopes        []string   `json:"scopes" bson:"scopes"`
	Currency      string     `json:"currency" bson:"currency"`
	Timezone      string     `json:"timezone" bson:"timezone"`
	IsActive      bool       `json:"is_active" bson:"is_active"`
	InstalledAt   time.Time  `json:"installed_at" bson:"installed_at"`
	UninstalledAt *time.Time `json:"uninstalled_at,omitempty" bson:"uninstalled_at,omitempty"`
	LastSyncAt    *time.Time `json:"last_sync_at,omitempty" bson:"last_sync_at,omitempty"`
}
