package calendar

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/oauth2"
)

const tokenKeyPrefix = "calendar:token:"

// TokenStore persists one OAuth token per session.
type TokenStore interface {
	Get(ctx context.Context, sessionID string) (*oauth2.Token, error)
	Save(ctx context.Context, sessionID string, token *oauth2.Token) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisTokenStore keeps tokens in Redis. A missing key comes back as
// (nil, nil) so callers can map it to ErrNoCredential themselves.
type RedisTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTokenStore(client *redis.Client, ttl time.Duration) *RedisTokenStore {
	return &RedisTokenStore{client: client, ttl: ttl}
}

func (s *RedisTokenStore) Get(ctx context.Context, sessionID string) (*oauth2.Token, error) {
	data, err := s.client.Get(ctx, tokenKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (s *RedisTokenStore) Save(ctx context.Context, sessionID string, token *oauth2.Token) error {
	b, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, tokenKeyPrefix+sessionID, b, s.ttl).Err()
}

func (s *RedisTokenStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, tokenKeyPrefix+sessionID).Err()
}
