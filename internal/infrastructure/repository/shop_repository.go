package repository

import (
	"context"
	"fmt"
	"time"

	"shopsync-core/internal/domain"
	"shopsync-core/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ShopRepository implements ports.ShopRepository using MongoDB.
type ShopRepository struct {
	collection *mongo.Collection
}

func NewShopRepository(db *mongo.Database) *ShopRepository {
	return &ShopRepository{collection: db.Collection(collShops)}
}

// Upsert saves the shop keyed by domain. A re-install or re-auth of a
// previously uninstalled shop reactivates it and clears the uninstall
// timestamp; the last-sync timestamp is left untouched.
func (r *ShopRepository) Upsert(ctx context.Context, shop *domain.Shop) (*domain.Shop, error) {
	now := time.Now().UTC()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	update := bson.M{
		"$set": bson.M{
			"domain":         shop.Domain,
			"shopify_id":     shop.ShopifyID,
			"access_token":   shop.AccessToken,
			"scopes":         shop.Scopes,
			"currency":       shop.Currency,
			"timezone":       shop.Timezone,
			"is_active":      true,
			"uninstalled_at": nil,
		},
		"$setOnInsert": bson.M{
			"_id":          primitive.NewObjectID().Hex(),
			"installed_at": now,
		},
	}

	var stored domain.Shop
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"domain": shop.Domain}, update, opts).Decode(&stored)
	if err != nil {
		return nil, fmt.Errorf("failed to save shop: %w", err)
	}

	return &stored, nil
}

// MarkUninstalled soft-deactivates the shop. Data is retained;
// deletion is a separate operator-triggered compliance action.
func (r *ShopRepository) MarkUninstalled(ctx context.Context, shopDomain string) error {
	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"is_active":      false,
		"uninstalled_at": now,
	}}

	res, err := r.collection.UpdateOne(ctx, bson.M{"domain": shopDomain}, update)
	if err != nil {
		return fmt.Errorf("failed to mark shop uninstalled: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrShopNotFound
	}
	return nil
}

func (r *ShopRepository) UpdateLastSync(ctx context.Context, shopID string, at time.Time) error {
	update := bson.M{"$set": bson.M{"last_sync_at": at}}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": shopID}, update); err != nil {
		return fmt.Errorf("failed to update last sync: %w", err)
	}
	return nil
}

// ByDomain returns the active shop for a domain; inactive shops are
// reported as not found.
func (r *ShopRepository) ByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	return r.findOne(ctx, bson.M{"domain": shopDomain, "is_active": true})
}

func (r *ShopRepository) ByID(ctx context.Context, id string) (*domain.Shop, error) {
	return r.findOne(ctx, bson.M{"_id": id, "is_active": true})
}

func (r *ShopRepository) findOne(ctx context.Context, filter bson.M) (*domain.Shop, error) {
	var shop domain.Shop
	err := r.collection.FindOne(ctx, filter).Decode(&shop)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrShopNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return &shop, nil
}

var _ ports.ShopRepository = (*ShopRepository)(nil)
