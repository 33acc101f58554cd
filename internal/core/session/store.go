package session

import (
	"sync"
	"sync/atomic"

	"github.com/gccconnect/connect/internal/core/domain"
)

// Store holds the single active session. Writes are serialised; reads load an
// immutable snapshot and never block.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[domain.Snapshot]
	subs    map[int]chan domain.Snapshot
	nextSub int
}

func NewStore() *Store {
	s := &Store{subs: make(map[int]chan domain.Snapshot)}
	snap := domain.AnonymousSnapshot()
	s.current.Store(&snap)
	return s
}

// Snapshot returns a private copy of the current state.
func (s *Store) Snapshot() domain.Snapshot {
	return s.current.Load().Clone()
}

// Set replaces the session and returns the new snapshot.
func (s *Store) Set(sess domain.Session) domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.SnapshotOf(sess, s.current.Load().Version+1)
	s.publish(snap)
	return snap.Clone()
}

// Clear drops the session. Clearing an anonymous store still bumps the version.
func (s *Store) Clear() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.Snapshot{Version: s.current.Load().Version + 1}
	s.publish(snap)
	return snap.Clone()
}

// Subscribe returns a channel that always holds the most recent snapshot not
// yet received. The current snapshot is delivered immediately. Intermediate
// values are dropped for slow readers. Call the returned func to unsubscribe;
// the channel is closed afterwards.
func (s *Store) Subscribe() (<-chan domain.Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan domain.Snapshot, 1)
	ch <- s.current.Load().Clone()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// publish must be called with mu held.
func (s *Store) publish(snap domain.Snapshot) {
	s.current.Store(&snap)
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap.Clone()
	}
}
