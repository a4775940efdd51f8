package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"voicescreen/internal/model"
)

// SyncLogRepo records ATS webhook delivery attempts
type SyncLogRepo interface {
	Log(ctx context.Context, entry *model.ATSSyncLog) error
}

type syncLogRepo struct {
	collection *mongo.Collection
}

// NewSyncLogRepo creates a new sync log repository
func NewSyncLogRepo(db *mongo.Database) SyncLogRepo {
	return &syncLogRepo{collection: db.Collection("ats_sync_logs")}
}

func (r *syncLogRepo) Log(ctx context.Context, entry *model.ATSSyncLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid.Hex()
	}
	return nil
}
