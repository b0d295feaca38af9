package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/unveil"
	"github.com/aretw0/unveil/pkg/adapters/memory"
	"github.com/aretw0/unveil/pkg/adapters/redis"
	"github.com/aretw0/unveil/pkg/clock"
	"github.com/aretw0/unveil/pkg/domain"
	"github.com/aretw0/unveil/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowStore simulates latency to provoke race conditions if locking is missing.
type slowStore struct {
	*memory.Store
}

func (s slowStore) Load(ctx context.Context, viewID string) (*domain.State, error) {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Load(ctx, viewID)
}

func (s slowStore) Save(ctx context.Context, viewID string, state *domain.State) error {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Save(ctx, viewID, state)
}

func newEngine(t *testing.T) (*unveil.Engine, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	eng, err := unveil.New(unveil.WithClock(clk))
	require.NoError(t, err)
	return eng, clk
}

func TestManager_UpdateSerializes(t *testing.T) {
	eng, _ := newEngine(t)
	manager := session.NewManager(slowStore{memory.NewStore()})
	ctx := context.Background()
	id := "race-test"

	_, _, err := manager.LoadOrStart(ctx, id, eng)
	require.NoError(t, err)

	// Read-modify-write without the lock would lose increments.
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := manager.Update(ctx, id, func(_ context.Context, s *domain.State) error {
				s.ScrollDistance++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 10.0, state.ScrollDistance)
}

func TestManager_LoadOrStart(t *testing.T) {
	eng, _ := newEngine(t)
	manager := session.NewManager(slowStore{memory.NewStore()})
	ctx := context.Background()
	id := "atomic-init"

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, isNew, err := manager.LoadOrStart(ctx, id, eng)
			assert.NoError(t, err)
			assert.Equal(t, id, state.ViewID)
			if isNew {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created, "view must be created exactly once")
}

func TestManager_UpdateDrivesEngine(t *testing.T) {
	eng, clk := newEngine(t)
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	_, _, err := manager.LoadOrStart(ctx, "v", eng)
	require.NoError(t, err)

	before, after, err := manager.Update(ctx, "v", func(ctx context.Context, s *domain.State) error {
		_, err := eng.Apply(ctx, s, domain.Signal{Type: domain.SignalAction})
		return err
	})
	require.NoError(t, err)
	assert.Empty(t, before.Revealed)
	assert.Equal(t, []string{domain.ItemHeadline}, after.Revealed)

	diff := domain.Diff(before, after)
	require.NotNil(t, diff)
	assert.Equal(t, []string{domain.ItemHeadline}, diff.Revealed.Appended)
	require.NotNil(t, diff.PanelSuppressed)
	assert.True(t, *diff.PanelSuppressed)

	clk.Advance(time.Second)
	_, after, err = manager.Update(ctx, "v", func(ctx context.Context, s *domain.State) error {
		_, err := eng.Apply(ctx, s, domain.Signal{Type: domain.SignalTick})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{domain.ItemHeadline, domain.ItemEscapeWindow}, after.Revealed)
}

func TestManager_UpdateErrorDoesNotSave(t *testing.T) {
	eng, _ := newEngine(t)
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	_, _, err := manager.LoadOrStart(ctx, "v", eng)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, _, err = manager.Update(ctx, "v", func(_ context.Context, s *domain.State) error {
		s.Revealed = append(s.Revealed, domain.ItemCoreLogic)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	state, err := manager.Load(ctx, "v")
	require.NoError(t, err)
	assert.Empty(t, state.Revealed)
}

func TestManager_UpdateMissingView(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	_, _, err := manager.Update(context.Background(), "missing", func(context.Context, *domain.State) error {
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrViewNotFound)
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	eng, _ := newEngine(t)
	store := redis.NewFromClient(client)
	manager := session.NewManager(store, session.WithLocker(redis.NewLocker(client, redis.DefaultPrefix)))
	ctx := context.Background()

	_, created, err := manager.LoadOrStart(ctx, "v", eng)
	require.NoError(t, err)
	assert.True(t, created)

	// Lock is released after each operation.
	assert.False(t, mr.Exists(redis.DefaultPrefix+"lock:v"))

	require.NoError(t, manager.Delete(ctx, "v"))
	_, err = manager.Load(ctx, "v")
	assert.ErrorIs(t, err, domain.ErrViewNotFound)
}
