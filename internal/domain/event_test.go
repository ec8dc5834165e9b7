package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventTypeForTopic(t *testing.T) {
	cases := []struct {
		topic     string
		eventType string
		resource  ResourceKind
	}{
		{"orders/create", "order_created", KindOrder},
		{"orders/paid", "order_paid", KindOrder},
		{"orders/cancelled", "order_cancelled", KindOrder},
		{"products/update", "product_updated", KindProduct},
		{"products/delete", "product_deleted", KindProduct},
		{"customers/delete", "customer_deleted", KindCustomer},
		{"inventory_levels/update", "inventory_level_updated", KindInventory},
		{"inventory_levels/connect", "inventory_level_connected", KindInventory},
	}

	for _, tc := range cases {
		eventType, resource, ok := EventTypeForTopic(tc.topic)
		assert.True(t, ok, tc.topic)
		assert.Equal(t, tc.eventType, eventType)
		assert.Equal(t, tc.resource, resource)
	}
}

func TestEventTypeForTopic_OutsideTheClosedSet(t *testing.T) {
	for _, topic := range []string{"themes/publish", "app/uninstalled", "customers/redact", ""} {
		_, _, ok := EventTypeForTopic(topic)
		assert.False(t, ok, topic)
	}
}
