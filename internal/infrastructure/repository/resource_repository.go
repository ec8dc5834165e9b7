package repository

import (
	"context"
	"fmt"

	"shopsync-core/internal/domain"
	"shopsync-core/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ResourceRepository implements the idempotent upsert-by-key store
// for all synced resource kinds.
type ResourceRepository struct {
	products        *mongo.Collection
	customers       *mongo.Collection
	orders          *mongo.Collection
	locations       *mongo.Collection
	inventoryItems  *mongo.Collection
	inventoryLevels *mongo.Collection
}

func NewResourceRepository(db *mongo.Database) *ResourceRepository {
	return &ResourceRepository{
		products:        db.Collection(collProducts),
		customers:       db.Collection(collCustomers),
		orders:          db.Collection(collOrders),
		locations:       db.Collection(collLocations),
		inventoryItems:  db.Collection(collInventoryItems),
		inventoryLevels: db.Collection(collInventoryLevels),
	}
}

func byShopifyID(shopID string, shopifyID int64) bson.M {
	return bson.M{"shop_id": shopID, "shopify_id": shopifyID}
}

func (r *ResourceRepository) UpsertProduct(ctx context.Context, p *domain.Product) (string, error) {
	return upsertReturningID(ctx, r.products, byShopifyID(p.ShopID, p.ShopifyID), p)
}

func (r *ResourceRepository) DeleteProduct(ctx context.Context, shopID string, shopifyID int64) (bool, error) {
	return r.deleteOne(ctx, r.products, byShopifyID(shopID, shopifyID))
}

func (r *ResourceRepository) UpsertCustomer(ctx context.Context, c *domain.Customer) (string, error) {
	return upsertReturningID(ctx, r.customers, byShopifyID(c.ShopID, c.ShopifyID), c)
}

func (r *ResourceRepository) DeleteCustomer(ctx context.Context, shopID string, shopifyID int64) (bool, error) {
	return r.deleteOne(ctx, r.customers, byShopifyID(shopID, shopifyID))
}

func (r *ResourceRepository) CustomerByShopifyID(ctx context.Context, shopID string, shopifyID int64) (*domain.Customer, error) {
	var c domain.Customer
	err := r.customers.FindOne(ctx, byShopifyID(shopID, shopifyID)).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

func (r *ResourceRepository) UpsertOrder(ctx context.Context, o *domain.Order) (string, error) {
	return upsertReturningID(ctx, r.orders, byShopifyID(o.ShopID, o.ShopifyID), o)
}

func (r *ResourceRepository) UpsertLocation(ctx context.Context, l *domain.Location) (string, error) {
	return upsertReturningID(ctx, r.locations, byShopifyID(l.ShopID, l.ShopifyID), l)
}

func (r *ResourceRepository) LocationsByShop(ctx context.Context, shopID string) ([]*domain.Location, error) {
	cursor, err := r.locations.Find(ctx, bson.M{"shop_id": shopID})
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer cursor.Close(ctx)

	var locations []*domain.Location
	for cursor.Next(ctx) {
		var l domain.Location
		if err := cursor.Decode(&l); err != nil {
			return nil, fmt.Errorf("failed to decode location: %w", err)
		}
		locations = append(locations, &l)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return locations, nil
}

func (r *ResourceRepository) UpsertInventoryItem(ctx context.Context, it *domain.InventoryItem) (string, error) {
	return upsertReturningID(ctx, r.inventoryItems, byShopifyID(it.ShopID, it.ShopifyID), it)
}

func (r *ResourceRepository) UpsertInventoryLevel(ctx context.Context, lv *domain.InventoryLevel) (string, error) {
	filter := bson.M{
		"shop_id":           lv.ShopID,
		"inventory_item_id": lv.InventoryItemID,
		"location_id":       lv.LocationID,
	}
	return upsertReturningID(ctx, r.inventoryLevels, filter, lv)
}

func (r *ResourceRepository) deleteOne(ctx context.Context, coll *mongo.Collection, filter bson.M) (bool, error) {
	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to delete from %s: %w", coll.Name(), err)
	}
	return res.DeletedCount > 0, nil
}

var _ ports.ResourceRepository = (*ResourceRepository)(nil)
