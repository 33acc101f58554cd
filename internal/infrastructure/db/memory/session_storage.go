package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// SessionStorage is a SessionStorage backed by go-cache. A zero ttl keeps
// entries until removed.
type SessionStorage struct {
	c   *cache.Cache
	ttl time.Duration
}

func NewSessionStorage(ttl time.Duration) *SessionStorage {
	exp := cache.NoExpiration
	if ttl > 0 {
		exp = ttl
	}
	return &SessionStorage{c: cache.New(exp, 10*time.Minute), ttl: exp}
}

func (s *SessionStorage) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return "", false, nil
	}
	str, ok := v.(string)
	return str, ok, nil
}

func (s *SessionStorage) Set(_ context.Context, key, value string) error {
	s.c.Set(key, value, s.ttl)
	return nil
}

func (s *SessionStorage) Remove(_ context.Context, key string) error {
	s.c.Delete(key)
	return nil
}
