package domain

import "time"

// WebhookEvent is an in-flight, verified webhook being routed to a
// handler. Shop is the resolved tenant and may be nil when no active
// shop matches the domain header.
type WebhookEvent struct {
	Topic      string
	ShopDomain string
	Payload    []byte
	Shop       *Shop
	LogID      string
}

// WebhookLogEntry is the audit record of one inbound webhook request.
// It is written before dispatch and updated once with the processing
// outcome; it is never consulted by business logic.
type WebhookLogEntry struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	Topic      string    `json:"topic" bson:"topic"`
	ShopDomain string    `json:"shop_domain" bson:"shop_domain"`
	Payload    []byte    `json:"payload" bson:"payload"`
	ReceivedAt time.Time `json:"received_at" bson:"received_at"`
	Processed  bool      `json:"processed" bson:"processed"`
	Error      string    `json:"error,omitempty" bson:"error,omitempty"`
}
