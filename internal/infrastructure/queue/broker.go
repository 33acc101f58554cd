package queue

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gccconnect/connect/internal/core/domain"
)

const (
	channelBuffer    = 256
	subscriberBuffer = 8
)

// Broker fans approval events out to subscribers of the affected identity.
// Publish never blocks the caller; a subscriber that falls behind loses events.
type Broker struct {
	in  chan domain.ApprovalEvent
	log zerolog.Logger

	mu      sync.Mutex
	subs    map[string]map[int]chan domain.ApprovalEvent
	nextSub int
}

func NewBroker(log zerolog.Logger) *Broker {
	return &Broker{
		in:   make(chan domain.ApprovalEvent, channelBuffer),
		log:  log,
		subs: make(map[string]map[int]chan domain.ApprovalEvent),
	}
}

// Start launches the fan-out goroutine. It stops when ctx is cancelled and
// closes every open subscription.
func (b *Broker) Start(ctx context.Context) {
	go b.run(ctx)
}

// Publish queues an event. When the queue is full the event is dropped.
func (b *Broker) Publish(event domain.ApprovalEvent) {
	select {
	case b.in <- event:
	default:
		b.log.Warn().Str("user_id", event.IdentityID).Msg("approval event queue full, dropping event")
	}
}

// Subscribe returns events for identityID and a func that ends the subscription.
func (b *Broker) Subscribe(identityID string) (<-chan domain.ApprovalEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan domain.ApprovalEvent, subscriberBuffer)
	id := b.nextSub
	b.nextSub++
	if b.subs[identityID] == nil {
		b.subs[identityID] = make(map[int]chan domain.ApprovalEvent)
	}
	b.subs[identityID][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() { b.remove(identityID, id) })
	}
}

// Subscribers returns the number of open subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, set := range b.subs {
		n += len(set)
	}
	return n
}

func (b *Broker) remove(identityID string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set := b.subs[identityID]
	ch, ok := set[id]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(b.subs, identityID)
	}
	close(ch)
}

func (b *Broker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.closeAll()
			return
		case event := <-b.in:
			b.deliver(event)
		}
	}
}

func (b *Broker) deliver(event domain.ApprovalEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs[event.IdentityID] {
		select {
		case ch <- event:
		default:
			b.log.Debug().Str("user_id", event.IdentityID).Msg("slow subscriber, dropping approval event")
		}
	}
}

func (b *Broker) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for identityID, set := range b.subs {
		for _, ch := range set {
			close(ch)
		}
		delete(b.subs, identityID)
	}
}
