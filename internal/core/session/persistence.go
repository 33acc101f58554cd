package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gccconnect/connect/internal/core/domain"
	"github.com/gccconnect/connect/internal/core/ports"
)

// Storage keys of the persisted session shadow.
const (
	TokenKey = "auth_token"
	UserKey  = "current_user"
)

// Persister serialises sessions into a SessionStorage.
type Persister struct {
	storage ports.SessionStorage
}

func NewPersister(storage ports.SessionStorage) *Persister {
	return &Persister{storage: storage}
}

// Save writes the token and the identity JSON.
func (p *Persister) Save(ctx context.Context, sess domain.Session) error {
	raw, err := json.Marshal(sess.Identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := p.storage.Set(ctx, TokenKey, sess.Token); err != nil {
		return fmt.Errorf("persist %s: %w", TokenKey, err)
	}
	if err := p.storage.Set(ctx, UserKey, string(raw)); err != nil {
		return fmt.Errorf("persist %s: %w", UserKey, err)
	}
	return nil
}

// Load rehydrates a session. It returns (nil, nil) when nothing is stored and
// ErrStorageCorruption when only one key is present or either fails to parse.
func (p *Persister) Load(ctx context.Context) (*domain.Session, error) {
	token, hasToken, err := p.storage.Get(ctx, TokenKey)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", TokenKey, err)
	}
	raw, hasUser, err := p.storage.Get(ctx, UserKey)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", UserKey, err)
	}

	if !hasToken && !hasUser {
		return nil, nil
	}
	if !hasToken || !hasUser || token == "" {
		return nil, fmt.Errorf("%w: incomplete session", domain.ErrStorageCorruption)
	}

	var identity domain.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageCorruption, err)
	}
	if identity.ID == "" || !identity.Role.Valid() {
		return nil, fmt.Errorf("%w: identity missing id or role", domain.ErrStorageCorruption)
	}

	return &domain.Session{Identity: identity, Token: token, CreatedAt: time.Now().UTC()}, nil
}

// Clear removes both keys, attempting the second even if the first fails.
func (p *Persister) Clear(ctx context.Context) error {
	return errors.Join(
		p.storage.Remove(ctx, TokenKey),
		p.storage.Remove(ctx, UserKey),
	)
}
