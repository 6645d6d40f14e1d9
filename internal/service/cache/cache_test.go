package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes(ctx, "short", []byte("a"), time.Minute))
	require.NoError(t, c.SetBytes(ctx, "forever", []byte("b"), 0))

	now = now.Add(2 * time.Minute)

	_, ok, err := c.GetBytes(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	b, ok, err := c.GetBytes(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("b"), b)

	require.NoError(t, c.Delete(ctx, "forever"))
	_, ok, _ = c.GetBytes(ctx, "forever")
	assert.False(t, ok)
}

func TestRedisCacheRoundTripWithPrefix(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(ctx, RedisConfig{Addr: mr.Addr(), Prefix: "fp:"})
	require.NoError(t, err)
	defer c.Close()

	_, ok, err := c.GetBytes(ctx, "TCS.NS")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetBytes(ctx, "TCS.NS", []byte(`[1,2]`), time.Hour))
	assert.True(t, mr.Exists("fp:TCS.NS"))

	b, ok, err := c.GetBytes(ctx, "TCS.NS")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[1,2]`), b)

	mr.FastForward(2 * time.Hour)
	_, ok, err = c.GetBytes(ctx, "TCS.NS")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisCacheFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), RedisConfig{Addr: addr})
	require.Error(t, err)
}
