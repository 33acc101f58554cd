package ports

import (
	"context"

	"github.com/gccconnect/connect/internal/core/domain"
)

// Navigator moves the client to a route and returns where it actually landed
// after guards have run.
type Navigator interface {
	Navigate(ctx context.Context, to domain.Route) domain.Route
}
