package webhook_handlers

import (
	"context"
	"fmt"
	"time"

	"shopsync-core/internal/domain"
)

// Minimal in-memory doubles for handler tests.

type memKey struct {
	shopID    string
	shopifyID int64
}

type memResources struct {
	seq       int
	products  map[memKey]*domain.Product
	customers map[memKey]*domain.Customer
	orders    map[memKey]*domain.Order
	locations map[memKey]*domain.Location
	items     map[memKey]*domain.InventoryItem
	levels    map[string]*domain.InventoryLevel
}

func newMemResources() *memResources {
	return &memResources{
		products:  make(map[memKey]*domain.Product),
		customers: make(map[memKey]*domain.Customer),
		orders:    make(map[memKey]*domain.Order),
		locations: make(map[memKey]*domain.Location),
		items:     make(map[memKey]*domain.InventoryItem),
		levels:    make(map[string]*domain.InventoryLevel),
	}
}

func (r *memResources) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

func (r *memResources) UpsertProduct(_ context.Context, p *domain.Product) (string, error) {
	key := memKey{p.ShopID, p.ShopifyID}
	if existing, ok := r.products[key]; ok {
		p.ID = existing.ID
	} else {
		p.ID = r.nextID("prod")
	}
	r.products[key] = p
	return p.ID, nil
}

func (r *memResources) DeleteProduct(_ context.Context, shopID string, shopifyID int64) (bool, error) {
	key := memKey{shopID, shopifyID}
	_, ok := r.products[key]
	delete(r.products, key)
	return ok, nil
}

func (r *memResources) UpsertCustomer(_ context.Context, c *domain.Customer) (string, error) {
	key := memKey{c.ShopID, c.ShopifyID}
	if existing, ok := r.customers[key]; ok {
		c.ID = existing.ID
	} else {
		c.ID = r.nextID("cust")
	}
	r.customers[key] = c
	return c.ID, nil
}

func (r *memResources) DeleteCustomer(_ context.Context, shopID string, shopifyID int64) (bool, error) {
	key := memKey{shopID, shopifyID}
	_, ok := r.customers[key]
	delete(r.customers, key)
	return ok, nil
}

func (r *memResources) CustomerByShopifyID(_ context.Context, shopID string, shopifyID int64) (*domain.Customer, error) {
	if c, ok := r.customers[memKey{shopID, shopifyID}]; ok {
		return c, nil
	}
	return nil, nil
}

func (r *memResources) UpsertOrder(_ context.Context, o *domain.Order) (string, error) {
	key := memKey{o.ShopID, o.ShopifyID}
	if existing, ok := r.orders[key]; ok {
		o.ID = existing.ID
	} else {
		o.ID = r.nextID("order")
	}
	r.orders[key] = o
	return o.ID, nil
}

func (r *memResources) UpsertLocation(_ context.Context, l *domain.Location) (string, error) {
	key := memKey{l.ShopID, l.ShopifyID}
	if existing, ok := r.locations[key]; ok {
		l.ID = existing.ID
	} else {
		l.ID = r.nextID("loc")
	}
	r.locations[key] = l
	return l.ID, nil
}

func (r *memResources) LocationsByShop(_ context.Context, shopID string) ([]*domain.Location, error) {
	var out []*domain.Location
	for key, l := range r.locations {
		if key.shopID == shopID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memResources) UpsertInventoryItem(_ context.Context, it *domain.InventoryItem) (string, error) {
	key := memKey{it.ShopID, it.ShopifyID}
	if existing, ok := r.items[key]; ok {
		it.ID = existing.ID
	} else {
		it.ID = r.nextID("item")
	}
	r.items[key] = it
	return it.ID, nil
}

func (r *memResources) UpsertInventoryLevel(_ context.Context, lv *domain.InventoryLevel) (string, error) {
	key := fmt.Sprintf("%s/%d/%d", lv.ShopID, lv.InventoryItemID, lv.LocationID)
	if existing, ok := r.levels[key]; ok {
		lv.ID = existing.ID
	} else {
		lv.ID = r.nextID("lvl")
	}
	r.levels[key] = lv
	return lv.ID, nil
}

type memEventRepo struct {
	seq    int
	events []*domain.RealtimeEvent
}

func (r *memEventRepo) Insert(_ context.Context, event *domain.RealtimeEvent) error {
	r.seq++
	event.ID = fmt.Sprintf("evt-%d", r.seq)
	r.events = append(r.events, event)
	return nil
}

func (r *memEventRepo) Recent(_ context.Context, shopID string, limit int) ([]*domain.RealtimeEvent, error) {
	var out []*domain.RealtimeEvent
	for _, event := range r.events {
		if event.ShopID == shopID {
			out = append(out, event)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type memEventBus struct {
	published []*domain.RealtimeEvent
}

func (b *memEventBus) Publish(_ context.Context, event *domain.RealtimeEvent) error {
	b.published = append(b.published, event)
	return nil
}

func (b *memEventBus) Subscribe(context.Context, string) (<-chan *domain.RealtimeEvent, func(), error) {
	ch := make(chan *domain.RealtimeEvent)
	return ch, func() { close(ch) }, nil
}

type memShopRepo struct {
	seq   int
	shops map[string]*domain.Shop
}

func newMemShopRepo() *memShopRepo {
	return &memShopRepo{shops: make(map[string]*domain.Shop)}
}

func (r *memShopRepo) Upsert(_ context.Context, shop *domain.Shop) (*domain.Shop, error) {
	for _, existing := range r.shops {
		if existing.Domain == shop.Domain {
			existing.AccessToken = shop.AccessToken
			existing.IsActive = true
			existing.UninstalledAt = nil
			return existing, nil
		}
	}
	r.seq++
	stored := *shop
	stored.ID = fmt.Sprintf("shop-%d", r.seq)
	stored.IsActive = true
	stored.InstalledAt = time.Now()
	r.shops[stored.ID] = &stored
	return &stored, nil
}

func (r *memShopRepo) MarkUninstalled(_ context.Context, shopDomain string) error {
	for _, shop := range r.shops {
		if shop.Domain == shopDomain && shop.IsActive {
			now := time.Now()
			shop.IsActive = false
			shop.UninstalledAt = &now
			return nil
		}
	}
	return domain.ErrShopNotFound
}

func (r *memShopRepo) UpdateLastSync(_ context.Context, shopID string, at time.Time) error {
	if shop, ok := r.shops[shopID]; ok {
		shop.LastSyncAt = &at
		return nil
	}
	return domain.ErrShopNotFound
}

func (r *memShopRepo) ByDomain(_ context.Context, shopDomain string) (*domain.Shop, error) {
	for _, shop := range r.shops {
		if shop.Domain == shopDomain && shop.IsActive {
			return shop, nil
		}
	}
	return nil, domain.ErrShopNotFound
}

func (r *memShopRepo) ByID(_ context.Context, id string) (*domain.Shop, error) {
	if shop, ok := r.shops[id]; ok && shop.IsActive {
		return shop, nil
	}
	return nil, domain.ErrShopNotFound
}
