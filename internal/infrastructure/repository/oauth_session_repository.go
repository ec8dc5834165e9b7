package repository

import (
	"context"
	"fmt"
	"time"

	"shopsync-core/internal/domain"
	"shopsync-core/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// OAuthSessionRepository stores install-flow state nonces, keyed by
// the state value itself.
type OAuthSessionRepository struct {
	collection *mongo.Collection
}

func NewOAuthSessionRepository(db *mongo.Database) *OAuthSessionRepository {
	return &OAuthSessionRepository{collection: db.Collection(collOAuthSessions)}
}

func (r *OAuthSessionRepository) Create(ctx context.Context, session *domain.OAuthSession) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to create oauth session: %w", err)
	}
	return nil
}

// Get returns nil for unknown or expired states.
func (r *OAuthSessionRepository) Get(ctx context.Context, state string) (*domain.OAuthSession, error) {
	var session domain.OAuthSession
	err := r.collection.FindOne(ctx, bson.M{"_id": state}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth session: %w", err)
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, nil
	}
	return &session, nil
}

func (r *OAuthSessionRepository) Delete(ctx context.Context, state string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": state}); err != nil {
		return fmt.Errorf("failed to delete oauth session: %w", err)
	}
	return nil
}

var _ ports.OAuthSessionRepository = (*OAuthSessionRepository)(nil)
