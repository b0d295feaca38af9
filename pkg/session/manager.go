package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/unveil/internal/logging"
	"github.com/aretw0/unveil/pkg/domain"
	"github.com/aretw0/unveil/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed holder can block a view.
const DefaultLockTTL = 30 * time.Second

// Starter creates the initial state of a view. *unveil.Engine satisfies it.
type Starter interface {
	Start(ctx context.Context, viewID string) *domain.State
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates view access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.ViewStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a new view Manager over the given store.
func NewManager(store ports.ViewStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu, and call release(viewID) after unlocking.
func (m *Manager) acquire(viewID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[viewID]
	if !exists {
		entry = &lockEntry{}
		m.locks[viewID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(viewID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[viewID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, viewID)
	}
}

// Load retrieves an existing view from the store.
func (m *Manager) Load(ctx context.Context, viewID string) (*domain.State, error) {
	var state *domain.State
	err := m.WithLock(ctx, viewID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, viewID)
		return err
	})
	return state, err
}

// LoadOrStart loads a view, or opens it with starter if it does not exist yet.
// The boolean reports whether the view was created.
func (m *Manager) LoadOrStart(ctx context.Context, viewID string, starter Starter) (*domain.State, bool, error) {
	var (
		state   *domain.State
		created bool
	)
	err := m.WithLock(ctx, viewID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, viewID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrViewNotFound) {
			return fmt.Errorf("failed to check view existence: %w", err)
		}

		state = starter.Start(ctx, viewID)
		if err := m.store.Save(ctx, viewID, state); err != nil {
			return fmt.Errorf("failed to initialize view: %w", err)
		}
		created = true
		return nil
	})
	return state, created, err
}

// Update loads a view, applies fn to it and saves the result, all under the view lock.
// It returns snapshots before and after fn, suitable for domain.Diff.
// If fn fails nothing is saved.
func (m *Manager) Update(ctx context.Context, viewID string, fn func(context.Context, *domain.State) error) (before, after *domain.State, err error) {
	err = m.WithLock(ctx, viewID, func(ctx context.Context) error {
		state, err := m.store.Load(ctx, viewID)
		if err != nil {
			return err
		}
		before = state.Clone()

		if err := fn(ctx, state); err != nil {
			return err
		}
		if err := m.store.Save(ctx, viewID, state); err != nil {
			return fmt.Errorf("failed to save view: %w", err)
		}
		after = state
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// Save persists the view state.
func (m *Manager) Save(ctx context.Context, viewID string, state *domain.State) error {
	return m.WithLock(ctx, viewID, func(ctx context.Context) error {
		return m.store.Save(ctx, viewID, state)
	})
}

// Delete discards the view. Pending cascade reveals die with it.
func (m *Manager) Delete(ctx context.Context, viewID string) error {
	return m.WithLock(ctx, viewID, func(ctx context.Context) error {
		return m.store.Delete(ctx, viewID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying view store.
func (m *Manager) Store() ports.ViewStore {
	return m.store
}

// WithLock executes fn while holding the lock for the view.
func (m *Manager) WithLock(ctx context.Context, viewID string, fn func(context.Context) error) error {
	entry := m.acquire(viewID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(viewID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, viewID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"view_id", viewID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
