package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/unveil/pkg/clock"
	"github.com/aretw0/unveil/pkg/domain"
)

type entry struct {
	state     *domain.State
	expiresAt time.Time
}

// Store implements ports.ViewStore in memory.
// Safe for concurrent use. Expired views are dropped lazily on access.
type Store struct {
	data  map[string]entry
	mu    sync.RWMutex
	ttl   time.Duration
	clock clock.Clock
}

// Option configures the Store.
type Option func(*Store)

// WithTTL sets how long a view lives after its last save. Zero means no expiration.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock sets the time source used for expiration.
func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data:  make(map[string]entry),
		clock: clock.Real{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists a copy of the state in memory.
func (s *Store) Save(ctx context.Context, viewID string, state *domain.State) error {
	e := entry{state: state.Clone()}
	if s.ttl > 0 {
		e.expiresAt = s.clock.Now().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[viewID] = e
	return nil
}

// Load retrieves a copy of the state, so callers can't mutate the stored value by pointer.
func (s *Store) Load(ctx context.Context, viewID string) (*domain.State, error) {
	s.mu.RLock()
	e, ok := s.data[viewID]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrViewNotFound
	}
	if s.expired(e) {
		s.evict(viewID, e)
		return nil, domain.ErrViewNotFound
	}
	return e.state.Clone(), nil
}

// evict removes an expired entry unless a Save replaced it since it was read.
func (s *Store) evict(viewID string, seen entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.data[viewID]; ok && cur.state == seen.state && s.expired(cur) {
		delete(s.data, viewID)
	}
}

// Delete removes the view.
func (s *Store) Delete(ctx context.Context, viewID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, viewID)
	return nil
}

// List returns live views in lexical order, pruning expired ones.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]string, 0, len(s.data))
	for id, e := range s.data {
		if s.expired(e) {
			delete(s.data, id)
			continue
		}
		views = append(views, id)
	}
	sort.Strings(views)
	return views, nil
}

func (s *Store) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !s.clock.Now().Before(e.expiresAt)
}
