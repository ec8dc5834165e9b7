package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"shopsync-core/internal/application/mapping"
	"shopsync-core/internal/domain"
	"shopsync-core/internal/infrastructure/metrics"
	"shopsync-core/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// SyncConfig bounds a bulk sync run. MaxPages caps the pagination loop
// so a non-terminating cursor cannot spin forever; PageDelay is the
// deliberate inter-page throttle against the upstream rate limit.
type SyncConfig struct {
	BackfillDays int
	PageSize     int
	PageDelay    time.Duration
	MaxPages     int
}

// SyncService runs the historical backfill for one shop: every
// resource kind in dependency order, each paginated sequentially with
// a ledger entry per kind.
type SyncService struct {
	shops     ports.ShopRepository
	resources ports.ResourceRepository
	syncLogs  ports.SyncLogRepository
	client    ports.ShopifyClient
	cfg       SyncConfig
	logger    zerolog.Logger
}

func NewSyncService(
	shops ports.ShopRepository,
	resources ports.ResourceRepository,
	syncLogs ports.SyncLogRepository,
	client ports.ShopifyClient,
	cfg SyncConfig,
	logger zerolog.Logger,
) *SyncService {
	return &SyncService{
		shops:     shops,
		resources: resources,
		syncLogs:  syncLogs,
		client:    client,
		cfg:       cfg,
		logger:    logger,
	}
}

type syncStage struct {
	run func(ctx context.Context, shop *domain.Shop) (int, error)
	// degradable stages skip on a 403 instead of aborting the run;
	// later stages do not depend on their data.
	degradable bool
}

// stages maps each resource kind to its sync routine. The execution
// order comes from domain.SyncOrder; this map only says how each kind
// runs, not when.
func (s *SyncService) stages() map[domain.ResourceKind]syncStage {
	return map[domain.ResourceKind]syncStage{
		domain.KindLocation:  {run: s.syncLocations},
		domain.KindProduct:   {run: s.syncProducts},
		domain.KindCustomer:  {run: s.syncCustomers, degradable: true},
		domain.KindOrder:     {run: s.syncOrders, degradable: true},
		domain.KindInventory: {run: s.syncInventory},
	}
}

// Run executes a full bulk sync for the shop. Resource kinds run in
// dependency order; a scope denial on a degradable kind records a
// failed ledger entry and continues, any other failure aborts.
func (s *SyncService) Run(ctx context.Context, shopID string) error {
	shop, err := s.shops.ByID(ctx, shopID)
	if err != nil {
		return fmt.Errorf("failed to load shop for sync: %w", err)
	}

	runID := newRunID()
	start := time.Now()
	logger := s.logger.With().Str("shop", shop.Domain).Str("runId", runID).Logger()
	logger.Info().Msg("Starting bulk sync")

	stages := s.stages()
	for _, kind := range domain.SyncOrder {
		if err := s.runStage(ctx, shop, runID, kind, stages[kind], logger); err != nil {
			metrics.SyncRuns.WithLabelValues(string(domain.SyncStatusFailed)).Inc()
			return err
		}
	}

	if err := s.shops.UpdateLastSync(ctx, shop.ID, time.Now().UTC()); err != nil {
		logger.Warn().Err(err).Msg("Failed to record last sync time")
	}

	metrics.SyncRuns.WithLabelValues(string(domain.SyncStatusCompleted)).Inc()
	metrics.SyncDuration.Observe(time.Since(start).Seconds())
	logger.Info().Dur("elapsed", time.Since(start)).Msg("Bulk sync completed")
	return nil
}

func (s *SyncService) runStage(ctx context.Context, shop *domain.Shop, runID string, kind domain.ResourceKind, stage syncStage, logger zerolog.Logger) error {
	entry := &domain.SyncLogEntry{
		ShopID:   shop.ID,
		RunID:    runID,
		Resource: kind,
	}
	if err := s.syncLogs.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to open sync ledger entry: %w", err)
	}

	count, err := stage.run(ctx, shop)
	if err != nil {
		if markErr := s.syncLogs.MarkFailed(ctx, entry.ID, count, err.Error()); markErr != nil {
			logger.Error().Err(markErr).Str("resource", string(kind)).Msg("Failed to close sync ledger entry")
		}

		if stage.degradable && errors.Is(err, domain.ErrScopeDenied) {
			logger.Warn().
				Str("resource", string(kind)).
				Msg("Access scope denied, skipping resource")
			return nil
		}
		return fmt.Errorf("failed to sync %s: %w", kind, err)
	}

	if err := s.syncLogs.MarkCompleted(ctx, entry.ID, count); err != nil {
		logger.Error().Err(err).Str("resource", string(kind)).Msg("Failed to close sync ledger entry")
	}
	metrics.SyncedRecords.WithLabelValues(string(kind)).Add(float64(count))
	logger.Info().
		Str("resource", string(kind)).
		Int("records", count).
		Msg("Synced resource")
	return nil
}

func (s *SyncService) syncLocations(ctx context.Context, shop *domain.Shop) (int, error) {
	locations, err := s.client.ListLocations(ctx, shop.Domain, shop.AccessToken)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range locations {
		location, err := mapping.Location(shop.ID, &locations[i])
		if err != nil {
			return count, err
		}
		if _, err := s.resources.UpsertLocation(ctx, location); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (s *SyncService) syncProducts(ctx context.Context, shop *domain.Shop) (int, error) {
	count := 0
	opts := s.listOptions()
	for page := 0; page < s.cfg.MaxPages; page++ {
		products, pagination, err := s.client.ListProducts(ctx, shop.Domain, shop.AccessToken, opts)
		if err != nil {
			return count, err
		}

		for i := range products {
			product, err := mapping.Product(shop.ID, &products[i])
			if err != nil {
				return count, err
			}
			if _, err := s.resources.UpsertProduct(ctx, product); err != nil {
				return count, err
			}
			count++
		}

		if pagination == nil || pagination.NextPageOptions == nil {
			return count, nil
		}
		opts = *pagination.NextPageOptions
		if err := s.pause(ctx); err != nil {
			return count, err
		}
	}
	return count, nil
}

func (s *SyncService) syncCustomers(ctx context.Context, shop *domain.Shop) (int, error) {
	count := 0
	opts := s.listOptions()
	for page := 0; page < s.cfg.MaxPages; page++ {
		customers, pagination, err := s.client.ListCustomers(ctx, shop.Domain, shop.AccessToken, opts)
		if err != nil {
			return count, err
		}

		for i := range customers {
			customer, err := mapping.Customer(shop.ID, &customers[i])
			if err != nil {
				return count, err
			}
			if _, err := s.resources.UpsertCustomer(ctx, customer); err != nil {
				return count, err
			}
			count++
		}

		if pagination == nil || pagination.NextPageOptions == nil {
			return count, nil
		}
		opts = *pagination.NextPageOptions
		if err := s.pause(ctx); err != nil {
			return count, err
		}
	}
	return count, nil
}

func (s *SyncService) syncOrders(ctx context.Context, shop *domain.Shop) (int, error) {
	count := 0
	opts := s.orderListOptions()
	for page := 0; page < s.cfg.MaxPages; page++ {
		orders, pagination, err := s.client.ListOrders(ctx, shop.Domain, shop.AccessToken, opts)
		if err != nil {
			return count, err
		}

		for i := range orders {
			order, err := mapping.Order(shop.ID, &orders[i])
			if err != nil {
				return count, err
			}
			if order.CustomerShopifyID != nil {
				customer, err := s.resources.CustomerByShopifyID(ctx, shop.ID, *order.CustomerShopifyID)
				if err != nil {
					return count, err
				}
				if customer != nil {
					order.CustomerID = &customer.ID
				}
			}
			if _, err := s.resources.UpsertOrder(ctx, order); err != nil {
				return count, err
			}
			count++
		}

		if pagination == nil || pagination.NextPageOptions == nil {
			return count, nil
		}
		opts = goshopify.OrderListOptions{ListOptions: *pagination.NextPageOptions}
		if err := s.pause(ctx); err != nil {
			return count, err
		}
	}
	return count, nil
}

// syncInventory runs after locations: levels are listed per known
// location, then the referenced items are fetched in batches.
func (s *SyncService) syncInventory(ctx context.Context, shop *domain.Shop) (int, error) {
	locations, err := s.resources.LocationsByShop(ctx, shop.ID)
	if err != nil {
		return 0, err
	}

	count := 0
	itemIDs := make(map[int64]struct{})
	for _, location := range locations {
		levels, err := s.client.ListInventoryLevels(ctx, shop.Domain, shop.AccessToken, location.ShopifyID, s.cfg.PageSize)
		if err != nil {
			return count, err
		}

		for i := range levels {
			level, err := mapping.InventoryLevel(shop.ID, &levels[i])
			if err != nil {
				return count, err
			}
			if _, err := s.resources.UpsertInventoryLevel(ctx, level); err != nil {
				return count, err
			}
			itemIDs[level.InventoryItemID] = struct{}{}
			count++
		}

		if err := s.pause(ctx); err != nil {
			return count, err
		}
	}

	for _, batch := range chunkIDs(itemIDs, s.cfg.PageSize) {
		items, err := s.client.ListInventoryItems(ctx, shop.Domain, shop.AccessToken, batch)
		if err != nil {
			return count, err
		}
		for i := range items {
			item, err := mapping.InventoryItem(shop.ID, &items[i])
			if err != nil {
				return count, err
			}
			if _, err := s.resources.UpsertInventoryItem(ctx, item); err != nil {
				return count, err
			}
			count++
		}
		if err := s.pause(ctx); err != nil {
			return count, err
		}
	}

	return count, nil
}

// listOptions is the first-page window for products and customers:
// anything touched inside the backfill window.
func (s *SyncService) listOptions() goshopify.ListOptions {
	opts := goshopify.ListOptions{Limit: s.cfg.PageSize}
	if s.cfg.BackfillDays > 0 {
		opts.UpdatedAtMin = s.backfillFloor()
	}
	return opts
}

// orderListOptions windows orders on creation time instead; an old
// order updated yesterday should not drag the whole history in.
func (s *SyncService) orderListOptions() goshopify.OrderListOptions {
	opts := goshopify.OrderListOptions{
		ListOptions: goshopify.ListOptions{Limit: s.cfg.PageSize},
		Status:      "any",
	}
	if s.cfg.BackfillDays > 0 {
		opts.CreatedAtMin = s.backfillFloor()
	}
	return opts
}

func (s *SyncService) backfillFloor() time.Time {
	return time.Now().UTC().AddDate(0, 0, -s.cfg.BackfillDays)
}

// pause sleeps the configured inter-page delay, honoring cancellation.
func (s *SyncService) pause(ctx context.Context) error {
	if s.cfg.PageDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.cfg.PageDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func chunkIDs(ids map[int64]struct{}, size int) [][]int64 {
	if size <= 0 {
		size = 250
	}
	var batches [][]int64
	batch := make([]int64, 0, size)
	for id := range ids {
		batch = append(batch, id)
		if len(batch) == size {
			batches = append(batches, batch)
			batch = make([]int64, 0, size)
		}
	}
	if len(batch) > 0 {
		batches = append(batches, batch)
	}
	return batches
}

func newRunID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
