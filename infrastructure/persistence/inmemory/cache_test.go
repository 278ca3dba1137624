package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	c := NewCache(time.Minute)

	require.NoError(t, c.Set(ctx, "projects:u1", []string{"p1"}, 1))

	v, ok := c.Get(ctx, "projects:u1")
	require.True(t, ok)
	assert.Equal(t, []string{"p1"}, v)

	time.Sleep(1100 * time.Millisecond)
	_, ok = c.Get(ctx, "projects:u1")
	assert.False(t, ok)
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c := NewCache(time.Minute)

	require.NoError(t, c.Set(ctx, "k", "v", 0))

	v, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestCache_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	c := NewCache(time.Minute)
	require.NoError(t, c.Set(ctx, "a", 1, 60))
	require.NoError(t, c.Set(ctx, "b", 2, 60))
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.Delete(ctx, "a"))
	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, c.Clear(ctx))
	_, ok = c.Get(ctx, "b")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_JanitorReclaimsExpired(t *testing.T) {
	ctx := context.Background()
	c := NewCache(50 * time.Millisecond)

	require.NoError(t, c.Set(ctx, "short", 1, 1))
	require.NoError(t, c.Set(ctx, "long", 2, 60))

	assert.Eventually(t, func() bool { return c.Len() == 1 }, 3*time.Second, 50*time.Millisecond)
}
