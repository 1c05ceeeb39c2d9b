package redisx

import (
	"context"
	"fmt"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

const ttl = 5 * time.Minute

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := New(mr.Addr())
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestJSONRoundTripAndTTL(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	key := fmt.Sprintf(KeyProjection, ProjDrinks)

	var got []string
	found, err := GetJSON(ctx, rdb, key, &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, rdb, key, []string{"Latte"}, ttl))
	found, err = GetJSON(ctx, rdb, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"Latte"}, got)

	mr.FastForward(ttl + 1)
	found, err = GetJSON(ctx, rdb, key, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetJSON_CorruptValue(t *testing.T) {
	mr, rdb := newRedis(t)
	require.NoError(t, mr.Set("projection:drinks", "{nope"))

	var got []string
	_, err := GetJSON(context.Background(), rdb, "projection:drinks", &got)
	assert.Error(t, err)
}

func TestInvalidate_DeletesAndBumpsGeneration(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	for _, n := range CatalogProjections {
		require.NoError(t, SetJSON(ctx, rdb, fmt.Sprintf(KeyProjection, n), []int{1}, ttl))
	}

	require.NoError(t, Invalidate(ctx, rdb, ProjDrinks, ProjRecipes))

	assert.False(t, mr.Exists("projection:drinks"))
	assert.False(t, mr.Exists("projection:recipes"))
	assert.True(t, mr.Exists("projection:ingredients"))

	gen, err := Generation(ctx, rdb, ProjDrinks)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
	gen, err = Generation(ctx, rdb, ProjIngredients)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	assert.NoError(t, Invalidate(ctx, rdb))
}

func TestFillIfCurrent(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()

	gen, err := Generation(ctx, rdb, ProjDrinks)
	require.NoError(t, err)
	filled, err := FillIfCurrent(ctx, rdb, ProjDrinks, gen, []string{"Latte"}, ttl)
	require.NoError(t, err)
	assert.True(t, filled)
	assert.True(t, mr.Exists("projection:drinks"))
	assert.Equal(t, ttl, mr.TTL("projection:drinks"))
}

func TestFillIfCurrent_SkipsSnapshotOlderThanInvalidate(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()

	// reader membaca generasi + DB, lalu invalidate terjadi sebelum reader menulis cache
	gen, err := Generation(ctx, rdb, ProjIngredients)
	require.NoError(t, err)
	require.NoError(t, Invalidate(ctx, rdb, ProjIngredients))

	filled, err := FillIfCurrent(ctx, rdb, ProjIngredients, gen, []string{"stale"}, ttl)
	require.NoError(t, err)
	assert.False(t, filled)
	assert.False(t, mr.Exists("projection:ingredients"))
}

func TestClaimOnlyOnce(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	key := fmt.Sprintf(KeyDedup, "stock", "evt-1")

	first, err := Claim(ctx, rdb, key, TTLDedup)
	require.NoError(t, err)
	second, err := Claim(ctx, rdb, key, TTLDedup)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, TTLDedup, mr.TTL(key))
}
