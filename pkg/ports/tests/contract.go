package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/unveil/pkg/domain"
	"github.com/aretw0/unveil/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunViewStoreContract runs a suite of tests to verify that a ViewStore implementation
// adheres to the defined interface contract.
func RunViewStoreContract(t *testing.T, store ports.ViewStore) {
	t.Helper()
	ctx := context.Background()
	viewID := fmt.Sprintf("contract-view-%d", time.Now().UnixNano())
	opened := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(viewID, opened)
		state.Revealed = append(state.Revealed, domain.ItemEscapeWindow, domain.ItemHeadline)
		state.RevealCount = 2
		state.LastRevealAt = opened.Add(2 * time.Second)
		state.ScrollDistance = 120.5
		state.PanelSuppressed = true
		state.CascadeScheduled = true
		state.Pending = []domain.Task{{ItemID: domain.ItemRecentering, Step: 0, DueAt: opened.Add(2500 * time.Millisecond)}}

		require.NoError(t, store.Save(ctx, viewID, state), "Save should not return error")

		loaded, err := store.Load(ctx, viewID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, viewID, loaded.ViewID)
		assert.Equal(t, state.Revealed, loaded.Revealed)
		assert.Equal(t, 2, loaded.RevealCount)
		assert.True(t, state.LastRevealAt.Equal(loaded.LastRevealAt))
		assert.InDelta(t, 120.5, loaded.ScrollDistance, 0.001)
		assert.True(t, loaded.PanelSuppressed)
		assert.True(t, loaded.CascadeScheduled)
		require.Len(t, loaded.Pending, 1)
		assert.Equal(t, domain.ItemRecentering, loaded.Pending[0].ItemID)
		assert.True(t, state.Pending[0].DueAt.Equal(loaded.Pending[0].DueAt))
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, viewID, domain.NewState(viewID, opened)))

		loaded, err := store.Load(ctx, viewID)
		require.NoError(t, err)
		loaded.Revealed = append(loaded.Revealed, domain.ItemCoreLogic)

		again, err := store.Load(ctx, viewID)
		require.NoError(t, err)
		assert.Empty(t, again.Revealed, "mutating a loaded state must not leak into the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+viewID)
		assert.ErrorIs(t, err, domain.ErrViewNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, viewID, domain.NewState(viewID, opened)))

		require.NoError(t, store.Delete(ctx, viewID), "Delete should not return error")

		_, err := store.Load(ctx, viewID)
		assert.ErrorIs(t, err, domain.ErrViewNotFound, "Load after Delete should return ErrViewNotFound")

		assert.NoError(t, store.Delete(ctx, viewID), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := viewID + "-1"
		id2 := viewID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewState(id1, opened)))
		require.NoError(t, store.Save(ctx, id2, domain.NewState(id2, opened)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		views, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, views, id1)
		assert.Contains(t, views, id2)
	})
}
