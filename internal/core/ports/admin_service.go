package ports

import (
	"context"

	"github.com/gccconnect/connect/internal/core/domain"
)

type AdminService interface {
	ListIdentities(ctx context.Context, filter domain.IdentityFilter) ([]domain.Identity, error)
	ListPending(ctx context.Context) ([]domain.Identity, error)
	Approve(ctx context.Context, actor domain.Identity, id string) (*domain.Identity, error)
	Reject(ctx context.Context, actor domain.Identity, id string) (*domain.Identity, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

type ProfileService interface {
	Get(ctx context.Context, id string) (*domain.Identity, error)
	Update(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.Identity, error)
}

// ApprovalPublisher receives approval decisions as they happen.
type ApprovalPublisher interface {
	Publish(event domain.ApprovalEvent)
}

// AttemptLimiter throttles login attempts per key.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}
