package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"voicescreen/internal/model"
)

// TurnRepo handles MongoDB operations for interview transcript turns
type TurnRepo interface {
	Save(ctx context.Context, turn *model.Turn) error
	GetByInterview(ctx context.Context, interviewID string) ([]model.Turn, error)
	LastTurnNo(ctx context.Context, interviewID string) (int, error)
}

type turnRepo struct {
	collection *mongo.Collection
}

// NewTurnRepo creates a new turn repository
func NewTurnRepo(db *mongo.Database) TurnRepo {
	return &turnRepo{collection: db.Collection("interview_turns")}
}

func (r *turnRepo) Save(ctx context.Context, turn *model.Turn) error {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}
	result, err := r.collection.InsertOne(ctx, turn)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		turn.ID = oid.Hex()
	}
	return nil
}

func (r *turnRepo) GetByInterview(ctx context.Context, interviewID string) ([]model.Turn, error) {
	opts := options.Find().SetSort(bson.D{{Key: "turnNo", Value: 1}, {Key: "timestamp", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"interviewId": interviewID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var turns []model.Turn
	if err = cursor.All(ctx, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

func (r *turnRepo) LastTurnNo(ctx context.Context, interviewID string) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "turnNo", Value: -1}})
	var turn model.Turn
	err := r.collection.FindOne(ctx, bson.M{"interviewId": interviewID}, opts).Decode(&turn)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return turn.TurnNo, nil
}
