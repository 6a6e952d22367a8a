package viewstate

import (
	"sync"

	"github.com/mtlprog/wallet/internal/domain"
)

// Options tune reducer behavior.
type Options struct {
	// RetainPricesOnFailure keeps the last good quote, marked stale, when a
	// price poll fails. When false a failed poll clears the quote.
	RetainPricesOnFailure bool
}

// Store owns the wallet State. It is the only place State is mutated:
// every change goes through Dispatch and is applied under one lock, so
// producers running on separate goroutines never interleave inside a transition.
type Store struct {
	mu      sync.Mutex
	state   State
	opts    Options
	subs    map[int]chan State
	nextSub int
}

// NewStore creates a store holding initial.
func NewStore(initial State, opts Options) *Store {
	return &Store{
		state: initial,
		opts:  opts,
		subs:  make(map[int]chan State),
	}
}

// Dispatch applies ev and notifies subscribers when it was accepted.
func (s *Store) Dispatch(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(ev)
}

func (s *Store) applyLocked(ev Event) bool {
	if !ev.apply(&s.state, s.opts) {
		return false
	}
	for _, ch := range s.subs {
		publish(ch, s.state.Clone())
	}
	return true
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Generation returns the current identity generation.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Generation
}

// SelectIdentity applies IdentityChanged and returns the new generation.
// Clearing and generation capture happen in the same transition.
func (s *Store) SelectIdentity(id domain.Identity) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applyLocked(IdentityChanged{Identity: id})
	return s.state.Generation
}

// Subscribe returns a channel that receives the state after every accepted
// event, starting with the current one. Slow readers only see the latest state.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan State, 1)
	ch <- s.state.Clone()
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

// publish replaces any unread state in ch with st.
func publish(ch chan State, st State) {
	select {
	case ch <- st:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- st:
	default:
	}
}
