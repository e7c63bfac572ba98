package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/live-match-dashboard/internal/model"
)

// SnapshotStore keeps the last known state of matches that are no longer tracked.
type SnapshotStore interface {
	Save(ctx context.Context, state model.MatchState) error
	Load(ctx context.Context, matchID string) (*model.MatchState, error)
	Delete(ctx context.Context, matchID string) error
}

// RedisSnapshotStore persists final match states in Redis with a TTL.
type RedisSnapshotStore struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisSnapshotStore creates a snapshot store backed by Redis.
func NewRedisSnapshotStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisSnapshotStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &RedisSnapshotStore{
		redis:  client,
		ttl:    ttl,
		logger: logger.With().Str("component", "simulation_snapshots").Logger(),
	}
}

func snapshotKey(matchID string) string {
	return fmt.Sprintf("simulation:state:%s", matchID)
}

// Save stores the state under its match id.
func (s *RedisSnapshotStore) Save(ctx context.Context, state model.MatchState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := s.redis.Set(ctx, snapshotKey(state.MatchID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set state: %w", err)
	}
	s.logger.Debug().Str("match_id", state.MatchID).Dur("ttl", s.ttl).Msg("snapshot saved")
	return nil
}

// Load returns nil, nil when no snapshot exists.
func (s *RedisSnapshotStore) Load(ctx context.Context, matchID string) (*model.MatchState, error) {
	data, err := s.redis.Get(ctx, snapshotKey(matchID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}

	var state model.MatchState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return &state, nil
}

// Delete removes a snapshot; missing keys are not an error.
func (s *RedisSnapshotStore) Delete(ctx context.Context, matchID string) error {
	return s.redis.Del(ctx, snapshotKey(matchID)).Err()
}
