package state

import (
	"sort"
	"sync"

	"github.com/rubiojr/amosearch/pkg/log"
)

var logger = log.ForService("store")

// Subscriber is called after a signal has been applied, with the signal and
// the snapshot it produced. Subscribers run on the dispatching goroutine and
// must not call Dispatch themselves.
type Subscriber func(Signal, State)

// Store owns the current snapshot. Signals are applied one at a time: a
// signal is reduced and announced to every subscriber before the next one is
// looked at.
type Store struct {
	dispatchMu sync.Mutex

	mu      sync.RWMutex
	current State
	subs    map[uint64]Subscriber
	nextID  uint64
}

// NewStore creates a store holding initial.
func NewStore(initial State) *Store {
	return &Store{
		current: initial,
		subs:    make(map[uint64]Subscriber),
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Dispatch applies sig and notifies subscribers in registration order.
func (s *Store) Dispatch(sig Signal) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	prev := s.current.Version
	s.current = Reduce(s.current, sig)
	next := s.current
	subs := s.subscribers()
	s.mu.Unlock()

	if next.Version == prev {
		logger.Debugf("ignored signal %T", sig)
		return
	}
	logger.Debugf("applied %s (version %d)", sig.Type(), next.Version)

	for _, sub := range subs {
		sub(sig, next)
	}
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// subscribers returns the registered subscribers ordered by id. Callers hold mu.
func (s *Store) subscribers() []Subscriber {
	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]Subscriber, len(ids))
	for i, id := range ids {
		out[i] = s.subs[id]
	}
	return out
}
