package ports

import (
	"context"

	"github.com/gccconnect/connect/internal/core/domain"
)

// CredentialVerifier resolves credentials to an identity and a bearer token.
// Implementations may be in-process or remote.
type CredentialVerifier interface {
	Verify(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error)
	Create(ctx context.Context, draft domain.RegistrationDraft) (*domain.AuthResult, error)
}
