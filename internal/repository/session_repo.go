package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"voicescreen/internal/model"
)

// SessionRepo handles MongoDB operations for interview sessions
type SessionRepo interface {
	Create(ctx context.Context, interview *model.Interview) error
	GetByID(ctx context.Context, id string) (*model.Interview, error)
	FindActiveByCandidate(ctx context.Context, candidateID string) (*model.Interview, error)
	UpdateStatus(ctx context.Context, id string, status model.InterviewStatus) error
	UpdateConsent(ctx context.Context, id string, status model.ConsentStatus, text string) error
	MarkStarted(ctx context.Context, id string) error
	MarkEnded(ctx context.Context, id string, status model.InterviewStatus) error
}

type sessionRepo struct {
	collection *mongo.Collection
}

// NewSessionRepo creates a new session repository
func NewSessionRepo(db *mongo.Database) SessionRepo {
	return &sessionRepo{collection: db.Collection("interview_sessions")}
}

func (r *sessionRepo) Create(ctx context.Context, interview *model.Interview) error {
	if interview.CreatedAt.IsZero() {
		interview.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, interview)
	return err
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*model.Interview, error) {
	var interview model.Interview
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&interview)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &interview, nil
}

func (r *sessionRepo) FindActiveByCandidate(ctx context.Context, candidateID string) (*model.Interview, error) {
	filter := bson.M{
		"candidateId": candidateID,
		"status": bson.M{"$in": []model.InterviewStatus{
			model.StatusCreated,
			model.StatusDisclosureDone,
			model.StatusConsentGranted,
			model.StatusInProgress,
		}},
	}
	var interview model.Interview
	err := r.collection.FindOne(ctx, filter).Decode(&interview)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &interview, nil
}

func (r *sessionRepo) UpdateStatus(ctx context.Context, id string, status model.InterviewStatus) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	return err
}

func (r *sessionRepo) UpdateConsent(ctx context.Context, id string, status model.ConsentStatus, text string) error {
	update := bson.M{"consentStatus": status}
	if text != "" {
		update["consentText"] = text
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

func (r *sessionRepo) MarkStarted(ctx context.Context, id string) error {
	now := time.Now().UTC()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":    model.StatusInProgress,
		"startedAt": now,
	}})
	return err
}

func (r *sessionRepo) MarkEnded(ctx context.Context, id string, status model.InterviewStatus) error {
	now := time.Now().UTC()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":  status,
		"endedAt": now,
	}})
	return err
}
