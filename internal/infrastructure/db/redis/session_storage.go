package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// SessionStorage keeps a client session in a Redis hash, one per profile.
// Key format: session:<profile>
type SessionStorage struct {
	client *redis.Client
	key    string
}

func NewSessionStorage(client *redis.Client, profile string) *SessionStorage {
	if profile == "" {
		profile = "default"
	}
	return &SessionStorage{client: client, key: "session:" + profile}
}

func (s *SessionStorage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SessionStorage) Set(ctx context.Context, key, value string) error {
	if err := s.client.HSet(ctx, s.key, key, value).Err(); err != nil {
		return fmt.Errorf("session set %s: %w", key, err)
	}
	return nil
}

func (s *SessionStorage) Remove(ctx context.Context, key string) error {
	if err := s.client.HDel(ctx, s.key, key).Err(); err != nil {
		return fmt.Errorf("session remove %s: %w", key, err)
	}
	return nil
}
