// Package memory holds process-local implementations of the storage ports.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gccconnect/connect/internal/core/domain"
)

// IdentityRepository keeps identities in a map. Returned values are copies.
type IdentityRepository struct {
	mu   sync.RWMutex
	byID map[string]domain.Identity
}

func NewIdentityRepository(seed ...domain.Identity) *IdentityRepository {
	r := &IdentityRepository{byID: make(map[string]domain.Identity, len(seed))}
	for _, i := range seed {
		r.byID[i.ID] = i
	}
	return r
}

// DemoIdentities are the marketplace fixtures: one admin, one approved account
// per role and one pending startup.
func DemoIdentities() []domain.Identity {
	mk := func(id, email, name string, role domain.Role, status domain.ApprovalStatus, y int, m time.Month, d int) domain.Identity {
		at := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return domain.Identity{
			ID:             id,
			Email:          email,
			Name:           name,
			Role:           role,
			ApprovalStatus: status,
			CreatedAt:      at,
			UpdatedAt:      at,
		}
	}
	return []domain.Identity{
		mk("1", "admin@example.com", "Admin User", domain.RoleAdmin, domain.ApprovalApproved, 2024, time.December, 1),
		mk("2", "gcc@example.com", "GCC User", domain.RoleGCC, domain.ApprovalApproved, 2025, time.January, 10),
		mk("3", "startup@example.com", "Startup User", domain.RoleStartup, domain.ApprovalApproved, 2025, time.January, 15),
		mk("4", "pending@example.com", "Pending User", domain.RoleStartup, domain.ApprovalPending, 2025, time.January, 22),
	}
}

func (r *IdentityRepository) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, i := range r.byID {
		if i.Email == email {
			return &i, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *IdentityRepository) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &i, nil
}

func (r *IdentityRepository) Create(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[identity.ID]; ok {
		return nil, domain.ErrUserExists
	}
	if r.emailTaken(identity.Email, "") {
		return nil, domain.ErrUserExists
	}

	stored := *identity
	r.byID[stored.ID] = stored
	return &stored, nil
}

func (r *IdentityRepository) Update(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[identity.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	if r.emailTaken(identity.Email, identity.ID) {
		return nil, domain.ErrUserExists
	}

	stored := *identity
	r.byID[stored.ID] = stored
	return &stored, nil
}

// List returns matching identities ordered by creation time, then id.
func (r *IdentityRepository) List(_ context.Context, filter domain.IdentityFilter) ([]domain.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Identity, 0, len(r.byID))
	for _, i := range r.byID {
		if filter.Matches(i) {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.Before(out[b].CreatedAt)
		}
		return out[a].ID < out[b].ID
	})
	return out, nil
}

// emailTaken must be called with mu held.
func (r *IdentityRepository) emailTaken(email, exceptID string) bool {
	for id, i := range r.byID {
		if i.Email == email && id != exceptID {
			return true
		}
	}
	return false
}
