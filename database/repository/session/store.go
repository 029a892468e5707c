package sessionRepo

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"schedbot/models"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "session:state:"

// Store abstracts per-session conversation state. Get returns nil (no
// error) for an unknown session so callers can lazily create state.
type Store interface {
	Get(ctx context.Context, sessionID string) (*models.MeetingRequest, error)
	Put(ctx context.Context, sessionID string, state *models.MeetingRequest) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisStore keeps conversation state in Redis with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore returns a Store backed by the given Redis client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*models.MeetingRequest, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state models.MeetingRequest
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *RedisStore) Put(ctx context.Context, sessionID string, state *models.MeetingRequest) error {
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+sessionID, b, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}

// MemoryStore is an in-process Store used by tests and single-binary
// runs without Redis.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*models.MeetingRequest
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*models.MeetingRequest)}
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*models.MeetingRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[sessionID]
	if !ok {
		return nil, nil
	}
	// Round-trip through JSON so callers never share a pointer with the
	// store, matching the Redis behaviour.
	b, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	var copy models.MeetingRequest
	if err := json.Unmarshal(b, &copy); err != nil {
		return nil, err
	}
	return &copy, nil
}

func (s *MemoryStore) Put(ctx context.Context, sessionID string, state *models.MeetingRequest) error {
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	var copy models.MeetingRequest
	if err := json.Unmarshal(b, &copy); err != nil {
		return err
	}
	s.mu.Lock()
	s.states[sessionID] = &copy
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.states, sessionID)
	s.mu.Unlock()
	return nil
}
