package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shopsync-core/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

// In-memory test doubles for the persistence and upstream ports.

type fakeShopRepo struct {
	mu    sync.Mutex
	shops map[string]*domain.Shop
	seq   int
}

func newFakeShopRepo() *fakeShopRepo {
	return &fakeShopRepo{shops: make(map[string]*domain.Shop)}
}

func (r *fakeShopRepo) Upsert(_ context.Context, shop *domain.Shop) (*domain.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.shops {
		if existing.Domain == shop.Domain {
			existing.AccessToken = shop.AccessToken
			existing.Scopes = shop.Scopes
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

func (r *fakeShopRepo) MarkUninstalled(_ context.Context, shopDomain string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
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

func (r *fakeShopRepo) UpdateLastSync(_ context.Context, shopID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if shop, ok := r.shops[shopID]; ok {
		shop.LastSyncAt = &at
		return nil
	}
	return domain.ErrShopNotFound
}

func (r *fakeShopRepo) ByDomain(_ context.Context, shopDomain string) (*domain.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, shop := range r.shops {
		if shop.Domain == shopDomain && shop.IsActive {
			return shop, nil
		}
	}
	return nil, domain.ErrShopNotFound
}

func (r *fakeShopRepo) ByID(_ context.Context, id string) (*domain.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if shop, ok := r.shops[id]; ok && shop.IsActive {
		return shop, nil
	}
	return nil, domain.ErrShopNotFound
}

type resourceKey struct {
	shopID    string
	shopifyID int64
}

type fakeResourceRepo struct {
	mu        sync.Mutex
	seq       int
	products  map[resourceKey]*domain.Product
	customers map[resourceKey]*domain.Customer
	orders    map[resourceKey]*domain.Order
	locations map[resourceKey]*domain.Location
	items     map[resourceKey]*domain.InventoryItem
	levels    map[string]*domain.InventoryLevel
}

func newFakeResourceRepo() *fakeResourceRepo {
	return &fakeResourceRepo{
		products:  make(map[resourceKey]*domain.Product),
		customers: make(map[resourceKey]*domain.Customer),
		orders:    make(map[resourceKey]*domain.Order),
		locations: make(map[resourceKey]*domain.Location),
		items:     make(map[resourceKey]*domain.InventoryItem),
		levels:    make(map[string]*domain.InventoryLevel),
	}
}

func (r *fakeResourceRepo) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

func (r *fakeResourceRepo) UpsertProduct(_ context.Context, p *domain.Product) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := resourceKey{p.ShopID, p.ShopifyID}
	if existing, ok := r.products[key]; ok {
		p.ID = existing.ID
	} else {
		p.ID = r.nextID("prod")
	}
	r.products[key] = p
	return p.ID, nil
}

func (r *fakeResourceRepo) DeleteProduct(_ context.Context, shopID string, shopifyID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := resourceKey{shopID, shopifyID}
	_, ok := r.products[key]
	delete(r.products, key)
	return ok, nil
}

func (r *fakeResourceRepo) UpsertCustomer(_ context.Context, c *domain.Customer) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := resourceKey{c.ShopID, c.ShopifyID}
	if existing, ok := r.customers[key]; ok {
		c.ID = existing.ID
	} else {
		c.ID = r.nextID("cust")
	}
	r.customers[key] = c
	return c.ID, nil
}

func (r *fakeResourceRepo) DeleteCustomer(_ context.Context, shopID string, shopifyID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := resourceKey{shopID, shopifyID}
	_, ok := r.customers[key]
	delete(r.customers, key)
	return ok, nil
}

func (r *fakeResourceRepo) CustomerByShopifyID(_ context.Context, shopID string, shopifyID int64) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.customers[resourceKey{shopID, shopifyID}]; ok {
		return c, nil
	}
	return nil, nil
}

func (r *fakeResourceRepo) UpsertOrder(_ context.Context, o *domain.Order) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := resourceKey{o.ShopID, o.ShopifyID}
	if existing, ok := r.orders[key]; ok {
		o.ID = existing.ID
	} else {
		o.ID = r.nextID("order")
	}
	r.orders[key] = o
	return o.ID, nil
}

func (r *fakeResourceRepo) UpsertLocation(_ context.Context, l *domain.Location) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := resourceKey{l.ShopID, l.ShopifyID}
	if existing, ok := r.locations[key]; ok {
		l.ID = existing.ID
	} else {
		l.ID = r.nextID("loc")
	}
	r.locations[key] = l
	return l.ID, nil
}

func (r *fakeResourceRepo) LocationsByShop(_ context.Context, shopID string) ([]*domain.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Location
	for key, l := range r.locations {
		if key.shopID == shopID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeResourceRepo) UpsertInventoryItem(_ context.Context, it *domain.InventoryItem) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := resourceKey{it.ShopID, it.ShopifyID}
	if existing, ok := r.items[key]; ok {
		it.ID = existing.ID
	} else {
		it.ID = r.nextID("item")
	}
	r.items[key] = it
	return it.ID, nil
}

func (r *fakeResourceRepo) UpsertInventoryLevel(_ context.Context, lv *domain.InventoryLevel) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := fmt.Sprintf("%s/%d/%d", lv.ShopID, lv.InventoryItemID, lv.LocationID)
	if existing, ok := r.levels[key]; ok {
		lv.ID = existing.ID
	} else {
		lv.ID = r.nextID("lvl")
	}
	r.levels[key] = lv
	return lv.ID, nil
}

type fakeSyncLogRepo struct {
	mu      sync.Mutex
	seq     int
	entries []*domain.SyncLogEntry
}

func newFakeSyncLogRepo() *fakeSyncLogRepo {
	return &fakeSyncLogRepo{}
}

func (r *fakeSyncLogRepo) Create(_ context.Context, entry *domain.SyncLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	entry.ID = fmt.Sprintf("sync-%d", r.seq)
	entry.Status = domain.SyncStatusRunning
	entry.StartedAt = time.Now()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeSyncLogRepo) finish(id string, status domain.SyncStatus, count int, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		if entry.ID == id && entry.Status == domain.SyncStatusRunning {
			now := time.Now()
			entry.Status = status
			entry.RecordCount = count
			entry.Error = message
			entry.FinishedAt = &now
			return nil
		}
	}
	return fmt.Errorf("no running entry %s", id)
}

func (r *fakeSyncLogRepo) MarkCompleted(_ context.Context, id string, recordCount int) error {
	return r.finish(id, domain.SyncStatusCompleted, recordCount, "")
}

func (r *fakeSyncLogRepo) MarkFailed(_ context.Context, id string, recordCount int, message string) error {
	return r.finish(id, domain.SyncStatusFailed, recordCount, message)
}

func (r *fakeSyncLogRepo) ListByShop(_ context.Context, shopID string) ([]*domain.SyncLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.SyncLogEntry
	for _, entry := range r.entries {
		if entry.ShopID == shopID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *fakeSyncLogRepo) byResource(kind domain.ResourceKind) *domain.SyncLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		if entry.Resource == kind {
			return entry
		}
	}
	return nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	seq    int
	events []*domain.RealtimeEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{}
}

func (r *fakeEventRepo) Insert(_ context.Context, event *domain.RealtimeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	event.ID = fmt.Sprintf("evt-%d", r.seq)
	r.events = append(r.events, event)
	return nil
}

func (r *fakeEventRepo) Recent(_ context.Context, shopID string, limit int) ([]*domain.RealtimeEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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

type fakeEventBus struct {
	mu        sync.Mutex
	published []*domain.RealtimeEvent
}

func newFakeEventBus() *fakeEventBus {
	return &fakeEventBus{}
}

func (b *fakeEventBus) Publish(_ context.Context, event *domain.RealtimeEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, event)
	return nil
}

func (b *fakeEventBus) Subscribe(_ context.Context, _ string) (<-chan *domain.RealtimeEvent, func(), error) {
	ch := make(chan *domain.RealtimeEvent)
	return ch, func() { close(ch) }, nil
}

// fakeShopifyClient serves scripted pages and can deny scopes per
// resource kind.
type fakeShopifyClient struct {
	mu sync.Mutex

	locations    []goshopify.Location
	productPages [][]goshopify.Product
	customers    []goshopify.Customer
	orders       []goshopify.Order
	levels       map[int64][]goshopify.InventoryLevel
	items        []goshopify.InventoryItem

	deniedScopes map[string]bool

	productFetches  int
	customerFetches int
	orderFetches    int
}

func newFakeShopifyClient() *fakeShopifyClient {
	return &fakeShopifyClient{
		levels:       make(map[int64][]goshopify.InventoryLevel),
		deniedScopes: make(map[string]bool),
	}
}

func (c *fakeShopifyClient) AuthorizeURL(shop string, _ []string, _ string, state string) string {
	return "https://" + shop + "/admin/oauth/authorize?state=" + state
}

func (c *fakeShopifyClient) ExchangeToken(_ context.Context, _ string, _ string) (string, error) {
	return "token", nil
}

func (c *fakeShopifyClient) GetShop(_ context.Context, shop string, _ string) (*goshopify.Shop, error) {
	return &goshopify.Shop{}, nil
}

func (c *fakeShopifyClient) CreateWebhook(_ context.Context, _ string, _ string, topic string, _ string) (*goshopify.Webhook, error) {
	return &goshopify.Webhook{Topic: topic}, nil
}

func (c *fakeShopifyClient) ListLocations(_ context.Context, _ string, _ string) ([]goshopify.Location, error) {
	if c.deniedScopes["locations"] {
		return nil, fmt.Errorf("list locations: %w", domain.ErrScopeDenied)
	}
	return c.locations, nil
}

func (c *fakeShopifyClient) ListProducts(_ context.Context, _ string, _ string, _ goshopify.ListOptions) ([]goshopify.Product, *goshopify.Pagination, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deniedScopes["products"] {
		return nil, nil, fmt.Errorf("list products: %w", domain.ErrScopeDenied)
	}
	if c.productFetches >= len(c.productPages) {
		return nil, nil, nil
	}
	page := c.productPages[c.productFetches]
	c.productFetches++
	if c.productFetches < len(c.productPages) {
		return page, &goshopify.Pagination{NextPageOptions: &goshopify.ListOptions{PageInfo: fmt.Sprintf("cursor-%d", c.productFetches)}}, nil
	}
	return page, &goshopify.Pagination{}, nil
}

func (c *fakeShopifyClient) ListCustomers(_ context.Context, _ string, _ string, _ goshopify.ListOptions) ([]goshopify.Customer, *goshopify.Pagination, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deniedScopes["customers"] {
		return nil, nil, fmt.Errorf("list customers: %w", domain.ErrScopeDenied)
	}
	c.customerFetches++
	return c.customers, &goshopify.Pagination{}, nil
}

func (c *fakeShopifyClient) ListOrders(_ context.Context, _ string, _ string, _ goshopify.OrderListOptions) ([]goshopify.Order, *goshopify.Pagination, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deniedScopes["orders"] {
		return nil, nil, fmt.Errorf("list orders: %w", domain.ErrScopeDenied)
	}
	c.orderFetches++
	return c.orders, &goshopify.Pagination{}, nil
}

func (c *fakeShopifyClient) ListInventoryLevels(_ context.Context, _ string, _ string, locationID int64, _ int) ([]goshopify.InventoryLevel, error) {
	if c.deniedScopes["inventory"] {
		return nil, fmt.Errorf("list inventory levels: %w", domain.ErrScopeDenied)
	}
	return c.levels[locationID], nil
}

func (c *fakeShopifyClient) ListInventoryItems(_ context.Context, _ string, _ string, itemIDs []int64) ([]goshopify.InventoryItem, error) {
	var out []goshopify.InventoryItem
	for _, item := range c.items {
		for _, id := range itemIDs {
			if int64(item.Id) == id {
				out = append(out, item)
			}
		}
	}
	return out, nil
}
