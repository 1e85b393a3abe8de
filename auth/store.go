package auth

import (
	"context"
	"sync"
)

// StoreListener is invoked on every session store transition.
type StoreListener func(state StoreState)

// StoreState is an immutable snapshot of "who is signed in right now".
// Loading distinguishes "not yet determined" from "determined to be
// anonymous": Principal is nil in both cases.
type StoreState struct {
	Principal *Principal
	Loading   bool
	Event     EventType
}

// Role resolves the snapshot's role.
func (s StoreState) Role() Role {
	return ResolveRole(s.Principal)
}

// SessionStore is the single source of truth for the current
// authenticated principal. Construct exactly one per application at the
// composition root and inject it; multiple independent stores are a bug.
//
// The store has exactly one writer, the provider event loop started by
// Start. Callers never mutate it directly; Auth operations go through
// the provider and flow back as events. A resolved SignIn call does not
// guarantee the store already reflects the new principal; observe the
// store through Subscribe for that.
type SessionStore struct {
	client SessionClient
	logger Logger

	mu        sync.RWMutex
	principal *Principal
	loading   bool
	settled   bool
	closed    bool
	listeners map[int]StoreListener
	nextID    int

	events chan storeEvent
	sub    Subscription
	done   chan struct{}
}

type storeEvent struct {
	event   EventType
	session *Session
}

// NewSessionStore returns a store in the loading state. Call Start to
// begin consuming provider events.
func NewSessionStore(client SessionClient) *SessionStore {
	return &SessionStore{
		client:    client,
		logger:    defLogger{},
		loading:   true,
		listeners: map[int]StoreListener{},
		events:    make(chan storeEvent, 16),
		done:      make(chan struct{}),
	}
}

func (s *SessionStore) WithLogger(logger Logger) *SessionStore {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Start issues the one-shot initial session fetch and registers the
// provider event listener. Events are applied in arrival order by a
// single goroutine; no reordering, no coalescing.
func (s *SessionStore) Start(ctx context.Context) {
	s.sub = s.client.OnSessionChange(func(event EventType, session *Session) {
		select {
		case s.events <- storeEvent{event: event, session: session}:
		case <-s.done:
		}
	})

	go s.applyLoop()

	go func() {
		session, err := s.client.GetSession(ctx)
		if err != nil {
			s.logger.Error("initial session fetch failed", "error", err)
			session = nil
		}
		select {
		case s.events <- storeEvent{event: EventInitialSession, session: session}:
		case <-s.done:
		}
	}()
}

func (s *SessionStore) applyLoop() {
	for {
		select {
		case ev := <-s.events:
			s.apply(ev)
		case <-s.done:
			return
		}
	}
}

func (s *SessionStore) apply(ev storeEvent) {
	s.mu.Lock()

	// the one-shot startup fetch only settles the store; once a real
	// provider event has been applied its result is stale
	if ev.event == EventInitialSession && s.settled {
		s.mu.Unlock()
		return
	}

	// loading flips false exactly once, on the first delivered event,
	// and never returns to true for the lifetime of the store
	if !s.settled {
		s.settled = true
		s.loading = false
	}

	s.principal = ev.session.Principal()
	state := StoreState{
		Principal: s.principal,
		Loading:   s.loading,
		Event:     ev.event,
	}

	listeners := make([]StoreListener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	s.logger.Debug("session store transition", "event", ev.event)

	for _, l := range listeners {
		l(state)
	}
}

// Current never blocks; returns nil both during the initial load and
// when genuinely unauthenticated. Use Loading to disambiguate.
func (s *SessionStore) Current() *Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.principal
}

// Loading reports whether the initial session check is still in flight.
func (s *SessionStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// State returns a consistent snapshot of principal and loading flag.
func (s *SessionStore) State() StoreState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreState{Principal: s.principal, Loading: s.loading}
}

// Role resolves the current principal's role.
func (s *SessionStore) Role() Role {
	return ResolveRole(s.Current())
}

// Subscribe registers a listener invoked on every transition and
// returns its unsubscribe handle.
func (s *SessionStore) Subscribe(listener StoreListener) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	id := s.nextID
	s.nextID++
	s.listeners[id] = listener

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}, nil
}

// Close detaches the store from the provider event stream and stops the
// apply loop. The store keeps its last state but no longer transitions.
func (s *SessionStore) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	close(s.done)
}
