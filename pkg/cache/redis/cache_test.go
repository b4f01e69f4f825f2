package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(NewClient(mr.Addr(), "", 0), ttl)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Hour)

	_, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k1", `{"complianceScore":90}`))

	v, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"complianceScore":90}`, v)

	assert.True(t, mr.Exists(keyPrefix+"k1"))
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"k1"))
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	require.NoError(t, c.Set(ctx, "k", "v"))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_PingAndErrors(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	require.NoError(t, c.Ping(ctx))

	mr.Close()
	assert.Error(t, c.Ping(ctx))
	_, _, err := c.Get(ctx, "k")
	assert.Error(t, err)
}
