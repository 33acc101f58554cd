package ports

import (
	"context"

	"github.com/gccconnect/connect/internal/core/domain"
)

// IdentityRepository defines the persistence of marketplace identities.
type IdentityRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
	Update(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
	List(ctx context.Context, filter domain.IdentityFilter) ([]domain.Identity, error)
}
