package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gccconnect/connect/internal/core/domain"
)

type recordingPublisher struct {
	events []domain.ApprovalEvent
}

func (p *recordingPublisher) Publish(e domain.ApprovalEvent) { p.events = append(p.events, e) }

func adminActor() domain.Identity { return seedIdentities()[0] }

func TestAdminService_Approve(t *testing.T) {
	repo := newStubIdentityRepo(seedIdentities()...)
	pub := &recordingPublisher{}
	svc := NewAdminService(repo, pub, zerolog.Nop())

	updated, err := svc.Approve(context.Background(), adminActor(), "4")
	if err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}
	if updated.ApprovalStatus != domain.ApprovalApproved {
		t.Fatalf("expected approved, got %s", updated.ApprovalStatus)
	}
	if updated.UpdatedAt.IsZero() {
		t.Fatal("expected updatedAt to be bumped")
	}
	if len(pub.events) != 1 || pub.events[0].IdentityID != "4" || pub.events[0].ActorID != "1" {
		t.Fatalf("unexpected events: %+v", pub.events)
	}
}

func TestAdminService_Transitions(t *testing.T) {
	cases := []struct {
		name    string
		status  domain.ApprovalStatus
		approve bool
		wantErr error
	}{
		{"pending to approved", domain.ApprovalPending, true, nil},
		{"pending to rejected", domain.ApprovalPending, false, nil},
		{"rejected to approved", domain.ApprovalRejected, true, nil},
		{"approved to rejected", domain.ApprovalApproved, false, domain.ErrInvalidTransition},
		{"approved to approved", domain.ApprovalApproved, true, domain.ErrInvalidTransition},
		{"rejected to rejected", domain.ApprovalRejected, false, domain.ErrInvalidTransition},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newStubIdentityRepo(domain.Identity{ID: "x", Email: "x@example.com", Role: domain.RoleGCC, ApprovalStatus: tc.status})
			svc := NewAdminService(repo, nil, zerolog.Nop())

			var err error
			if tc.approve {
				_, err = svc.Approve(context.Background(), adminActor(), "x")
			} else {
				_, err = svc.Reject(context.Background(), adminActor(), "x")
			}
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestAdminService_ForbiddenAndNotFound(t *testing.T) {
	svc := NewAdminService(newStubIdentityRepo(seedIdentities()...), nil, zerolog.Nop())

	if _, err := svc.Approve(context.Background(), seedIdentities()[1], "4"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Reject(context.Background(), adminActor(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAdminService_Stats(t *testing.T) {
	seed := append(seedIdentities(),
		domain.Identity{ID: "5", Email: "r@example.com", Role: domain.RoleGCC, ApprovalStatus: domain.ApprovalRejected},
		domain.Identity{ID: "6", Email: "p@example.com", Role: domain.RoleGCC, ApprovalStatus: domain.ApprovalPending},
	)
	svc := NewAdminService(newStubIdentityRepo(seed...), nil, zerolog.Nop())

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	want := domain.Stats{TotalUsers: 6, PendingApprovals: 2, GCCCount: 1, StartupCount: 1}
	if stats != want {
		t.Fatalf("expected %+v, got %+v", want, stats)
	}
}

func TestAdminService_ListPending(t *testing.T) {
	svc := NewAdminService(newStubIdentityRepo(seedIdentities()...), nil, zerolog.Nop())

	pending, err := svc.ListPending(context.Background())
	if err != nil {
		t.Fatalf("ListPending returned error: %v", err)
	}
	if len(pending) != 1 || pending[0].Email != "pending@example.com" {
		t.Fatalf("unexpected pending list: %+v", pending)
	}
}
