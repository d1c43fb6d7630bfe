package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore хранит состояния диалогов в Redis с TTL. Позволяет
// переживать рестарты процесса и делить сессии между инстансами.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore создает хранилище состояний в Redis.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		prefix: "session",
	}
}

func (s *RedisStore) key(chatID int64) string {
	return fmt.Sprintf("%s:%d", s.prefix, chatID)
}

func (s *RedisStore) Get(ctx context.Context, chatID int64) (State, error) {
	payload, err := s.client.Get(ctx, s.key(chatID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("session get: %w", err)
	}
	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		return State{}, fmt.Errorf("session decode: %w", err)
	}
	return state, nil
}

func (s *RedisStore) Put(ctx context.Context, chatID int64, state State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.client.Set(ctx, s.key(chatID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, chatID int64) error {
	if err := s.client.Del(ctx, s.key(chatID)).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}
