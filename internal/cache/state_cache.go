package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"voicescreen/internal/model"
)

// StateCache stores CandidateState keyed by interview id. Save is an
// idempotent upsert: writing the same state twice yields the same stored
// value. There is no cross-interview shared state.
type StateCache interface {
	Save(ctx context.Context, state *model.CandidateState) error
	Load(ctx context.Context, interviewID string) (*model.CandidateState, error)
	Delete(ctx context.Context, interviewID string) error
}

type stateCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStateCache creates a new candidate state store
func NewStateCache(client *redis.Client) StateCache {
	return &stateCache{
		client: client,
		ttl:    7 * 24 * time.Hour, // retained past completion for audit retrieval
	}
}

func (c *stateCache) stateKey(interviewID string) string {
	return fmt.Sprintf("interview:%s:state", interviewID)
}

func (c *stateCache) Save(ctx context.Context, state *model.CandidateState) error {
	state.LastUpdated = time.Now().UTC()
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.stateKey(state.InterviewID), data, c.ttl).Err()
}

func (c *stateCache) Load(ctx context.Context, interviewID string) (*model.CandidateState, error) {
	data, err := c.client.Get(ctx, c.stateKey(interviewID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state model.CandidateState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *stateCache) Delete(ctx context.Context, interviewID string) error {
	return c.client.Del(ctx, c.stateKey(interviewID)).Err()
}
