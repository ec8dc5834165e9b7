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
)

// WebhookLogRepository is the write-once audit trail of inbound
// webhooks.
type WebhookLogRepository struct {
	collection *mongo.Collection
}

func NewWebhookLogRepository(db *mongo.Database) *WebhookLogRepository {
	return &WebhookLogRepository{collection: db.Collection(collWebhookLog)}
}

func (r *WebhookLogRepository) Insert(ctx context.Context, entry *domain.WebhookLogEntry) (string, error) {
	if entry.ID == "" {
		entry.ID = primitive.NewObjectID().Hex()
	}
	if entry.ReceivedAt.IsZero() {
		entry.ReceivedAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return "", fmt.Errorf("failed to log webhook: %w", err)
	}
	return entry.ID, nil
}

func (r *WebhookLogRepository) MarkProcessed(ctx context.Context, id string, processingErr string) error {
	update := bson.M{"$set": bson.M{
		"processed": processingErr == "",
		"error":     processingErr,
	}}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("failed to update webhook log: %w", err)
	}
	return nil
}

var _ ports.WebhookLogRepository = (*WebhookLogRepository)(nil)
