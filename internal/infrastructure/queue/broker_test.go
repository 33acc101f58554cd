package queue

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gccconnect/connect/internal/core/domain"
)

func receive(t *testing.T, ch <-chan domain.ApprovalEvent) domain.ApprovalEvent {
	t.Helper()
	select {
	case e, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return domain.ApprovalEvent{}
}

func TestBroker_DeliversToMatchingIdentity(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewBroker(zerolog.Nop())
	b.Start(ctx)

	mine, unsubMine := b.Subscribe("4")
	defer unsubMine()
	other, unsubOther := b.Subscribe("5")
	defer unsubOther()

	b.Publish(domain.ApprovalEvent{IdentityID: "4", Status: domain.ApprovalApproved, ActorID: "1"})

	got := receive(t, mine)
	if got.Status != domain.ApprovalApproved || got.ActorID != "1" {
		t.Fatalf("unexpected event: %+v", got)
	}

	select {
	case e := <-other:
		t.Fatalf("unexpected event for other identity: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroker_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker(zerolog.Nop())
	ch, unsubscribe := b.Subscribe("4")
	if b.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", b.Subscribers())
	}

	unsubscribe()
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel")
	}
	if b.Subscribers() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", b.Subscribers())
	}
}

func TestBroker_StopClosesSubscriptions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := NewBroker(zerolog.Nop())
	b.Start(ctx)

	ch, unsubscribe := b.Subscribe("4")
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("subscription not closed on shutdown")
	}
	unsubscribe()
}
