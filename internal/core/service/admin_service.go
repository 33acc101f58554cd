package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gccconnect/connect/internal/core/domain"
	"github.com/gccconnect/connect/internal/core/ports"
)

// AdminService runs the approval workflow. It mutates stored identities only;
// active sessions keep their cached copy until the user logs in again.
type AdminService struct {
	repo      ports.IdentityRepository
	publisher ports.ApprovalPublisher
	log       zerolog.Logger
	now       func() time.Time
}

func NewAdminService(repo ports.IdentityRepository, publisher ports.ApprovalPublisher, log zerolog.Logger) *AdminService {
	return &AdminService{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *AdminService) ListIdentities(ctx context.Context, filter domain.IdentityFilter) ([]domain.Identity, error) {
	return s.repo.List(ctx, filter)
}

func (s *AdminService) ListPending(ctx context.Context) ([]domain.Identity, error) {
	return s.repo.List(ctx, domain.IdentityFilter{Status: domain.ApprovalPending})
}

func (s *AdminService) Approve(ctx context.Context, actor domain.Identity, id string) (*domain.Identity, error) {
	return s.transition(ctx, actor, id, domain.ApprovalApproved)
}

func (s *AdminService) Reject(ctx context.Context, actor domain.Identity, id string) (*domain.Identity, error) {
	return s.transition(ctx, actor, id, domain.ApprovalRejected)
}

func (s *AdminService) transition(ctx context.Context, actor domain.Identity, id string, next domain.ApprovalStatus) (*domain.Identity, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	identity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s identity: %w", next, err)
	}

	if !identity.ApprovalStatus.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, identity.ApprovalStatus, next)
	}

	identity.ApprovalStatus = next
	identity.UpdatedAt = s.now()

	updated, err := s.repo.Update(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("%s identity: %w", next, err)
	}

	s.log.Info().
		Str("user_id", updated.ID).
		Str("actor_id", actor.ID).
		Str("approval_status", string(next)).
		Msg("approval status changed")

	if s.publisher != nil {
		s.publisher.Publish(domain.ApprovalEvent{
			IdentityID: updated.ID,
			Status:     next,
			ActorID:    actor.ID,
			At:         updated.UpdatedAt,
		})
	}
	return updated, nil
}

// Stats counts identities. Role counts include approved identities only.
func (s *AdminService) Stats(ctx context.Context) (domain.Stats, error) {
	all, err := s.repo.List(ctx, domain.IdentityFilter{})
	if err != nil {
		return domain.Stats{}, err
	}

	stats := domain.Stats{TotalUsers: len(all)}
	for _, id := range all {
		switch {
		case id.ApprovalStatus == domain.ApprovalPending:
			stats.PendingApprovals++
		case !id.Approved():
		case id.Role == domain.RoleGCC:
			stats.GCCCount++
		case id.Role == domain.RoleStartup:
			stats.StartupCount++
		}
	}
	return stats, nil
}
