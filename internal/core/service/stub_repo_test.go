package service

import (
	"context"
	"sort"

	"github.com/gccconnect/connect/internal/core/domain"
)

type stubIdentityRepo struct {
	byID map[string]*domain.Identity
}

func newStubIdentityRepo(seed ...domain.Identity) *stubIdentityRepo {
	r := &stubIdentityRepo{byID: make(map[string]*domain.Identity)}
	for i := range seed {
		r.byID[seed[i].ID] = cloneIdentity(&seed[i])
	}
	return r
}

func cloneIdentity(i *domain.Identity) *domain.Identity {
	if i == nil {
		return nil
	}
	clone := *i
	return &clone
}

func (r *stubIdentityRepo) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	for _, i := range r.byID {
		if i.Email == email {
			return cloneIdentity(i), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubIdentityRepo) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneIdentity(i), nil
}

func (r *stubIdentityRepo) Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	if _, err := r.FindByEmail(ctx, identity.Email); err == nil {
		return nil, domain.ErrUserExists
	}
	r.byID[identity.ID] = cloneIdentity(identity)
	return cloneIdentity(identity), nil
}

func (r *stubIdentityRepo) Update(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	if _, ok := r.byID[identity.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	r.byID[identity.ID] = cloneIdentity(identity)
	return cloneIdentity(identity), nil
}

func (r *stubIdentityRepo) List(_ context.Context, filter domain.IdentityFilter) ([]domain.Identity, error) {
	out := []domain.Identity{}
	for _, i := range r.byID {
		if filter.Matches(*i) {
			out = append(out, *i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func seedIdentities() []domain.Identity {
	return []domain.Identity{
		{ID: "1", Email: "admin@example.com", Name: "Admin User", Role: domain.RoleAdmin, ApprovalStatus: domain.ApprovalApproved},
		{ID: "2", Email: "gcc@example.com", Name: "GCC User", Role: domain.RoleGCC, ApprovalStatus: domain.ApprovalApproved},
		{ID: "3", Email: "startup@example.com", Name: "Startup User", Role: domain.RoleStartup, ApprovalStatus: domain.ApprovalApproved},
		{ID: "4", Email: "pending@example.com", Name: "Pending User", Role: domain.RoleStartup, ApprovalStatus: domain.ApprovalPending},
	}
}
