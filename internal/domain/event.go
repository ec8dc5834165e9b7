package domain

import "time"

// RealtimeEvent is an immutable, denormalized notification derived
// from a resource change. It is written once and broadcast to
// connected dashboard viewers; it carries a small display snapshot,
// never the full upstream payload.
type RealtimeEvent struct {
	ID        string         `json:"id" bson:"_id,omitempty"`
	ShopID    string         `json:"shop_id" bson:"shop_id"`
	EventType string         `json:"event_type" bson:"event_type"`
	Resource  ResourceKind   `json:"resource" bson:"resource"`
	LocalID   string         `json:"local_id" bson:"local_id"`
	ShopifyID int64          `json:"shopify_id" bson:"shopify_id"`
	Payload   map[string]any `json:"payload" bson:"payload"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
}

type topicEvent struct {
	EventType string
	Resource  ResourceKind
}

// topicEvents is the closed set of webhook topics this system turns
// into realtime events, mapped to the "{resource}_{action}" naming
// used by the dashboard. Topics outside this set are acknowledged and
// ignored.
var topicEvents = map[string]topicEvent{
	"orders/create":            {"order_created", KindOrder},
	"orders/updated":           {"order_updated", KindOrder},
	"orders/paid":              {"order_paid", KindOrder},
	"orders/cancelled":         {"order_cancelled", KindOrder},
	"orders/fulfilled":         {"order_fulfilled", KindOrder},
	"products/create":          {"product_created", KindProduct},
	"products/update":          {"product_updated", KindProduct},
	"products/delete":          {"product_deleted", KindProduct},
	"customers/create":         {"customer_created", KindCustomer},
	"customers/update":         {"customer_updated", KindCustomer},
	"customers/delete":         {"customer_deleted", KindCustomer},
	"inventory_levels/update":  {"inventory_level_updated", KindInventory},
	"inventory_levels/connect": {"inventory_level_connected", KindInventory},
}

// EventTypeForTopic maps a webhook topic like "orders/paid" to the
// event type "order_paid" and its resource kind. ok is false for
// topics outside the handled set.
func EventTypeForTopic(topic string) (eventType string, resource ResourceKind, ok bool) {
	te, ok := topicEvents[topic]
	if !ok {
		return "", "", false
	}
	return te.EventType, te.Resource, true
}
