package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/cart"
)

func setupTestRedis(t *testing.T) (*RedisCartCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisCartCache(client, time.Hour), mr
}

func TestRedisCartCache_SaveLoad(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	state := cart.State{
		Items: []cart.LineItem{{
			ID:         "p1:abc",
			ProductID:  "p1",
			Name:       "Linen shirt",
			Price:      decimal.RequireFromString("49.90"),
			Attributes: map[string]string{"size": "M"},
			Quantity:   2,
		}},
		Total:       decimal.RequireFromString("99.80"),
		IsOpen:      true,
		CatalogHash: "v1",
	}

	require.NoError(t, c.Save(ctx, "sess-1", state))
	assert.True(t, mr.Exists("cart:session:sess-1"))

	ttl := mr.TTL("cart:session:sess-1")
	assert.GreaterOrEqual(t, ttl, time.Hour)
	assert.Less(t, ttl, time.Hour+time.Minute)

	got, err := c.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "p1:abc", got.Items[0].ID)
	assert.Equal(t, "M", got.Items[0].Attributes["size"])
	assert.True(t, got.Items[0].Price.Equal(decimal.RequireFromString("49.90")))
	assert.True(t, got.Total.Equal(decimal.RequireFromString("99.80")))
	assert.True(t, got.IsOpen)
	assert.Equal(t, "v1", got.CatalogHash)
}

func TestRedisCartCache_LoadMiss(t *testing.T) {
	c, _ := setupTestRedis(t)

	_, err := c.Load(context.Background(), "nobody")
	assert.ErrorIs(t, err, cart.ErrSnapshotNotFound)
}

func TestRedisCartCache_LoadCorrupt(t *testing.T) {
	c, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("cart:session:bad", "{not json"))

	_, err := c.Load(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, cart.ErrSnapshotNotFound)
}

func TestRedisCartCache_Delete(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, "sess-1", cart.State{}))
	require.NoError(t, c.Delete(ctx, "sess-1"))
	assert.False(t, mr.Exists("cart:session:sess-1"))

	require.NoError(t, c.Delete(ctx, "sess-1"))
}

func TestRedisCartCache_ExpiresWithSession(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, "sess-1", cart.State{IsOpen: true}))
	mr.FastForward(2 * time.Hour)

	_, err := c.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, cart.ErrSnapshotNotFound)
}

func TestRegistryWithRedis(t *testing.T) {
	c, _ := setupTestRedis(t)
	ctx := context.Background()

	reg := cart.NewRegistry(c, zerolog.Nop())
	reg.Get(ctx, "sess-1").AddItem(cart.LineItem{ID: "p1", Price: decimal.NewFromInt(10), Quantity: 3})

	fresh := cart.NewRegistry(c, zerolog.Nop())
	st := fresh.Get(ctx, "sess-1").State()
	require.Len(t, st.Items, 1)
	assert.True(t, st.Total.Equal(decimal.NewFromInt(30)))
}
