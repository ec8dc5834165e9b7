package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared by the repositories.
const (
	collShops           = "shops"
	collProducts        = "products"
	collCustomers       = "customers"
	collOrders          = "orders"
	collLocations       = "locations"
	collInventoryItems  = "inventory_items"
	collInventoryLevels = "inventory_levels"
	collSyncLog         = "sync_log"
	collEvents          = "realtime_events"
	collWebhookLog      = "webhook_log"
	collOAuthSessions   = "oauth_sessions"
)

// Connect opens the Mongo client and pings it once.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique keys the upsert contracts rely on.
// Resource uniqueness on (shop_id, shopify_id) is what makes webhook
// replay and sync re-runs idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	byShopAndShopifyID := bson.D{{Key: "shop_id", Value: 1}, {Key: "shopify_id", Value: 1}}
	unique := options.Index().SetUnique(true)

	indexes := map[string]mongo.IndexModel{
		collShops:     {Keys: bson.D{{Key: "domain", Value: 1}}, Options: unique},
		collProducts:  {Keys: byShopAndShopifyID, Options: unique},
		collCustomers: {Keys: byShopAndShopifyID, Options: unique},
		collOrders:    {Keys: byShopAndShopifyID, Options: unique},
		collLocations: {Keys: byShopAndShopifyID, Options: unique},
		collInventoryItems: {Keys: byShopAndShopifyID, Options: unique},
		collInventoryLevels: {
			Keys: bson.D{
				{Key: "shop_id", Value: 1},
				{Key: "inventory_item_id", Value: 1},
				{Key: "location_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		collEvents:  {Keys: bson.D{{Key: "shop_id", Value: 1}, {Key: "created_at", Value: -1}}},
		collSyncLog: {Keys: bson.D{{Key: "shop_id", Value: 1}, {Key: "started_at", Value: -1}}},
	}

	for coll, model := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", coll, err)
		}
	}
	return nil
}

// upsertReturningID runs the shared find-and-upsert: replace the full
// document on the natural key, keep the local _id stable across
// re-applies, and return it.
func upsertReturningID(ctx context.Context, coll *mongo.Collection, filter bson.M, doc any) (string, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	update := bson.M{
		"$set":         doc,
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID().Hex()},
	}

	var stored struct {
		ID string `bson:"_id"`
	}
	if err := coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return "", fmt.Errorf("failed to upsert into %s: %w", coll.Name(), err)
	}
	return stored.ID, nil
}
