package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/unveil/pkg/clock"
	"github.com/aretw0/unveil/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvict_KeepsEntrySavedAfterRead(t *testing.T) {
	clk := clock.NewManual(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	store := NewStore(WithTTL(time.Minute), WithClock(clk))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "v1", domain.NewState("v1", clk.Now())))
	clk.Advance(2 * time.Minute)

	// Load read this expired entry, then a Save replaced it before eviction.
	stale := store.data["v1"]
	require.NoError(t, store.Save(ctx, "v1", domain.NewState("v1", clk.Now())))
	store.evict("v1", stale)

	_, err := store.Load(ctx, "v1")
	assert.NoError(t, err)
}

func TestEvict_RemovesExpiredEntry(t *testing.T) {
	clk := clock.NewManual(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	store := NewStore(WithTTL(time.Minute), WithClock(clk))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "v1", domain.NewState("v1", clk.Now())))
	clk.Advance(2 * time.Minute)

	_, err := store.Load(ctx, "v1")
	assert.ErrorIs(t, err, domain.ErrViewNotFound)
	assert.NotContains(t, store.data, "v1")
}

func TestLoad_ConcurrentSaveSurvivesExpiry(t *testing.T) {
	clk := clock.NewManual(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	store := NewStore(WithTTL(time.Minute), WithClock(clk))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "v1", domain.NewState("v1", clk.Now())))
	clk.Advance(2 * time.Minute)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Load(ctx, "v1")
		}()
	}
	require.NoError(t, store.Save(ctx, "v1", domain.NewState("v1", clk.Now())))
	wg.Wait()

	// The fresh save is never evicted as expired, whatever the interleaving.
	_, err := store.Load(ctx, "v1")
	assert.NoError(t, err)
}
