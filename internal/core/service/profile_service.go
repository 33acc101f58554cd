package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gccconnect/connect/internal/core/domain"
	"github.com/gccconnect/connect/internal/core/ports"
)

// ProfileService applies self-initiated edits. Role and approval state are
// never touched here.
type ProfileService struct {
	repo ports.IdentityRepository
	log  zerolog.Logger
	now  func() time.Time
}

func NewProfileService(repo ports.IdentityRepository, log zerolog.Logger) *ProfileService {
	return &ProfileService{repo: repo, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (s *ProfileService) Get(ctx context.Context, id string) (*domain.Identity, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ProfileService) Update(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.Identity, error) {
	identity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, &domain.ValidationError{Fields: map[string]string{"name": "name is required"}}
		}
		if name != identity.Name {
			identity.Name = name
			changed = true
		}
	}

	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if email == "" {
			return nil, &domain.ValidationError{Fields: map[string]string{"email": "email is required"}}
		}
		if email != identity.Email {
			other, err := s.repo.FindByEmail(ctx, email)
			switch {
			case err == nil && other.ID != identity.ID:
				return nil, domain.ErrUserExists
			case err != nil && !errors.Is(err, domain.ErrUserNotFound):
				return nil, fmt.Errorf("check email: %w", err)
			}
			identity.Email = email
			changed = true
		}
	}

	if !changed {
		return identity, nil
	}

	identity.UpdatedAt = s.now()
	updated, err := s.repo.Update(ctx, identity)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", updated.ID).Msg("profile updated")
	return updated, nil
}
