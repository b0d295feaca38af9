package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/unveil/pkg/adapters/redis"
	"github.com/aretw0/unveil/pkg/clock"
	"github.com/aretw0/unveil/pkg/domain"
	contract "github.com/aretw0/unveil/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	contract.RunViewStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	clk := clock.NewManual(time.Now())

	store := redis.NewFromClient(client, redis.WithTTL(time.Second), redis.WithClock(clk))
	ctx := context.Background()
	viewID := "view-ttl"

	require.NoError(t, store.Save(ctx, viewID, domain.NewState(viewID, clk.Now())))

	views, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, views, viewID)

	// Key expiration in redis, index pruning by our clock.
	mr.FastForward(2 * time.Second)
	clk.Advance(2 * time.Second)

	_, err = store.Load(ctx, viewID)
	assert.ErrorIs(t, err, domain.ErrViewNotFound)

	views, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()
	viewID := "my-view"

	require.NoError(t, store.Save(ctx, viewID, domain.NewState(viewID, time.Now())))

	assert.True(t, mr.Exists("custom:app:my-view"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, viewID)
}

func TestRedisStore_DefaultTTLApplied(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "v", domain.NewState("v", time.Now())))
	assert.Equal(t, redis.DefaultTTL, mr.TTL(redis.DefaultPrefix+"v"))
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)

	require.NoError(t, mr.Set(redis.DefaultPrefix+"bad", "{not json"))

	_, err := store.Load(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrViewNotFound)
}
