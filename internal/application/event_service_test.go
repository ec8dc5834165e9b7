package application

import (
	"context"
	"fmt"
	"testing"

	"shopsync-core/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_EmitPersistsThenBroadcasts(t *testing.T) {
	events := newFakeEventRepo()
	bus := newFakeEventBus()
	svc := NewEventService(events, bus, zerolog.Nop())

	shop := &domain.Shop{ID: "shop-1", Domain: "acme.myshopify.com"}
	err := svc.Emit(context.Background(), shop, "order_paid", domain.KindOrder, "order-1", 1000, map[string]any{
		"total_price": "42.50",
	})

	require.NoError(t, err)
	require.Len(t, events.events, 1)
	require.Len(t, bus.published, 1)

	stored := events.events[0]
	assert.Equal(t, "shop-1", stored.ShopID)
	assert.Equal(t, "order_paid", stored.EventType)
	assert.Equal(t, domain.KindOrder, stored.Resource)
	assert.Equal(t, int64(1000), stored.ShopifyID)
	assert.False(t, stored.CreatedAt.IsZero())
	assert.Same(t, stored, bus.published[0])
}

type failingEventRepo struct{}

func (failingEventRepo) Insert(context.Context, *domain.RealtimeEvent) error {
	return fmt.Errorf("write failed")
}

func (failingEventRepo) Recent(context.Context, string, int) ([]*domain.RealtimeEvent, error) {
	return nil, nil
}

// A failed insert must propagate so the webhook retries; nothing is
// broadcast in that case.
func TestEventService_InsertFailureSkipsBroadcast(t *testing.T) {
	bus := newFakeEventBus()
	svc := NewEventService(failingEventRepo{}, bus, zerolog.Nop())

	err := svc.Emit(context.Background(), &domain.Shop{ID: "shop-1"}, "order_created", domain.KindOrder, "", 1, nil)

	require.Error(t, err)
	assert.Empty(t, bus.published)
}

func TestEventService_BacklogIsBounded(t *testing.T) {
	events := newFakeEventRepo()
	svc := NewEventService(events, newFakeEventBus(), zerolog.Nop())

	shop := &domain.Shop{ID: "shop-1"}
	for i := 0; i < BacklogLimit+10; i++ {
		require.NoError(t, svc.Emit(context.Background(), shop, "product_updated", domain.KindProduct, "", int64(i), nil))
	}

	backlog, err := svc.Backlog(context.Background(), "shop-1")
	require.NoError(t, err)
	assert.Len(t, backlog, BacklogLimit)
	// The bound keeps the newest events.
	assert.Equal(t, int64(BacklogLimit+9), backlog[len(backlog)-1].ShopifyID)
}
