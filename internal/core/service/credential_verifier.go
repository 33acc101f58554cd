package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/gccconnect/connect/internal/core/domain"
	"github.com/gccconnect/connect/internal/core/ports"
)

// VerifierOptions tunes credential checks.
type VerifierOptions struct {
	// VerifyPasswords enforces bcrypt hashes. When false any non-empty password
	// is accepted for a known email.
	VerifyPasswords bool
}

// CredentialVerifier is the in-process implementation of ports.CredentialVerifier.
type CredentialVerifier struct {
	repo   ports.IdentityRepository
	tokens *TokenIssuer
	opts   VerifierOptions
	log    zerolog.Logger
	now    func() time.Time
	newID  func() string
}

func NewCredentialVerifier(repo ports.IdentityRepository, tokens *TokenIssuer, opts VerifierOptions, log zerolog.Logger) *CredentialVerifier {
	return &CredentialVerifier{
		repo:   repo,
		tokens: tokens,
		opts:   opts,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Verify looks the email up. An unknown email fails with ErrInvalidCredentials
// unless the attempt carries a role, in which case a pending identity is created.
func (v *CredentialVerifier) Verify(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	email := strings.TrimSpace(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	identity, err := v.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		if !creds.IsRegistration() {
			return nil, domain.ErrInvalidCredentials
		}
		name := creds.Name
		if name == "" {
			name = email
		}
		return v.Create(ctx, domain.RegistrationDraft{
			Email:    email,
			Name:     name,
			Role:     creds.Role,
			Password: creds.Password,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	if v.opts.VerifyPasswords {
		if identity.PasswordHash == "" ||
			bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(creds.Password)) != nil {
			return nil, domain.ErrInvalidCredentials
		}
	}

	return v.result(*identity)
}

// Create registers a new pending identity. Only GCC and startup roles may
// self-register.
func (v *CredentialVerifier) Create(ctx context.Context, draft domain.RegistrationDraft) (*domain.AuthResult, error) {
	fields := map[string]string{}
	if strings.TrimSpace(draft.Email) == "" {
		fields["email"] = "email is required"
	}
	if strings.TrimSpace(draft.Name) == "" {
		fields["name"] = "name is required"
	}
	if draft.Password == "" {
		fields["password"] = "password is required"
	}
	if draft.Role != domain.RoleGCC && draft.Role != domain.RoleStartup {
		fields["role"] = "role must be one of: GCC STARTUP"
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(draft.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := v.now()
	created, err := v.repo.Create(ctx, &domain.Identity{
		ID:             v.newID(),
		Email:          strings.TrimSpace(draft.Email),
		Name:           strings.TrimSpace(draft.Name),
		Role:           draft.Role,
		ApprovalStatus: domain.ApprovalPending,
		PasswordHash:   string(hash),
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return nil, err
	}

	v.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("identity registered")
	return v.result(*created)
}

func (v *CredentialVerifier) result(identity domain.Identity) (*domain.AuthResult, error) {
	token, err := v.tokens.Issue(identity)
	if err != nil {
		return nil, err
	}
	identity.PasswordHash = ""
	return &domain.AuthResult{Identity: identity, Token: token}, nil
}
