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

// SyncLogRepository persists the sync ledger in MongoDB.
type SyncLogRepository struct {
	collection *mongo.Collection
}

func NewSyncLogRepository(db *mongo.Database) *SyncLogRepository {
	return &SyncLogRepository{collection: db.Collection(collSyncLog)}
}

func (r *SyncLogRepository) Create(ctx context.Context, entry *domain.SyncLogEntry) error {
	if entry.ID == "" {
		entry.ID = primitive.NewObjectID().Hex()
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = time.Now().UTC()
	}
	entry.Status = domain.SyncStatusRunning

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to create sync log entry: %w", err)
	}
	return nil
}

func (r *SyncLogRepository) MarkCompleted(ctx context.Context, id string, recordCount int) error {
	return r.finish(ctx, id, domain.SyncStatusCompleted, recordCount, "")
}

func (r *SyncLogRepository) MarkFailed(ctx context.Context, id string, recordCount int, message string) error {
	return r.finish(ctx, id, domain.SyncStatusFailed, recordCount, message)
}

// finish applies the single terminal transition. The status filter
// keeps entries immutable once terminal.
func (r *SyncLogRepository) finish(ctx context.Context, id string, status domain.SyncStatus, recordCount int, message string) error {
	now := time.Now().UTC()
	filter := bson.M{"_id": id, "status": domain.SyncStatusRunning}
	update := bson.M{"$set": bson.M{
		"status":       status,
		"record_count": recordCount,
		"error":        message,
		"finished_at":  now,
	}}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to finish sync log entry: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("sync log entry %s is not running", id)
	}
	return nil
}

func (r *SyncLogRepository) ListByShop(ctx context.Context, shopID string) ([]*domain.SyncLogEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"shop_id": shopID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync log: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*domain.SyncLogEntry
	for cursor.Next(ctx) {
		var e domain.SyncLogEntry
		if err := cursor.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode sync log entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return entries, nil
}

var _ ports.SyncLogRepository = (*SyncLogRepository)(nil)
