package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"voicescreen/internal/model"
)

// ScoreRepo handles MongoDB operations for interview scores and signals
type ScoreRepo interface {
	SaveScores(ctx context.Context, scores *model.InterviewScores) error
	GetScores(ctx context.Context, interviewID string) (*model.InterviewScores, error)
	SaveSignals(ctx context.Context, signals *model.InterviewSignals) error
	GetSignals(ctx context.Context, interviewID string) (*model.InterviewSignals, error)
}

type scoreRepo struct {
	scores  *mongo.Collection
	signals *mongo.Collection
}

// NewScoreRepo creates a new score repository
func NewScoreRepo(db *mongo.Database) ScoreRepo {
	return &scoreRepo{
		scores:  db.Collection("interview_scores"),
		signals: db.Collection("interview_signals"),
	}
}

func (r *scoreRepo) SaveScores(ctx context.Context, scores *model.InterviewScores) error {
	if scores.CreatedAt.IsZero() {
		scores.CreatedAt = time.Now().UTC()
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.scores.ReplaceOne(ctx, bson.M{"_id": scores.InterviewID}, scores, opts)
	return err
}

func (r *scoreRepo) GetScores(ctx context.Context, interviewID string) (*model.InterviewScores, error) {
	var scores model.InterviewScores
	err := r.scores.FindOne(ctx, bson.M{"_id": interviewID}).Decode(&scores)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &scores, nil
}

func (r *scoreRepo) SaveSignals(ctx context.Context, signals *model.InterviewSignals) error {
	if signals.CreatedAt.IsZero() {
		signals.CreatedAt = time.Now().UTC()
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.signals.ReplaceOne(ctx, bson.M{"_id": signals.InterviewID}, signals, opts)
	return err
}

func (r *scoreRepo) GetSignals(ctx context.Context, interviewID string) (*model.InterviewSignals, error) {
	var signals model.InterviewSignals
	err := r.signals.FindOne(ctx, bson.M{"_id": interviewID}).Decode(&signals)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &signals, nil
}
