package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xiaoxin-go/webchat/internal/infrastructure/cache/port"
)

func TestMemoryCacheSetGet(t *testing.T) {
	t.Parallel()

	c := NewMemoryAdapter()
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	require.ErrorIs(t, err, port.ErrMiss)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", v)
}

func TestMemoryCacheExpiry(t *testing.T) {
	t.Parallel()

	c := NewMemoryAdapter()
	ctx := context.Background()

	now := time.Now()
	c.SetNow(func() time.Time { return now })

	require.NoError(t, c.Set(ctx, "k", "v", time.Hour))

	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", v)

	c.SetNow(func() time.Time { return now.Add(2 * time.Hour) })

	_, err = c.Get(ctx, "k")
	require.ErrorIs(t, err, port.ErrMiss)

	keys, err := c.Scan(ctx, "*")
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestMemoryCacheScanPattern(t *testing.T) {
	t.Parallel()

	c := NewMemoryAdapter()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "chat:direct:1_2:100:1", "a", 0))
	require.NoError(t, c.Set(ctx, "chat:direct:1_2:101:2", "b", 0))
	require.NoError(t, c.Set(ctx, "chat:direct:1_20:100:3", "c", 0))

	keys, err := c.Scan(ctx, "chat:direct:1_2:*")
	require.NoError(t, err)
	require.Equal(t, []string{"chat:direct:1_2:100:1", "chat:direct:1_2:101:2"}, keys)
}

func TestMemoryCacheIncr(t *testing.T) {
	t.Parallel()

	c := NewMemoryAdapter()
	ctx := context.Background()

	n, err := c.Incr(ctx, "seq")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = c.Incr(ctx, "seq")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestMemoryCacheDelIfEquals(t *testing.T) {
	t.Parallel()

	c := NewMemoryAdapter()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "current", 0))

	// wrong value leaves the entry in place
	removed, err := c.DelIfEquals(ctx, "k", "stale")
	require.NoError(t, err)
	require.False(t, removed)
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "current", v)

	removed, err = c.DelIfEquals(ctx, "k", "current")
	require.NoError(t, err)
	require.True(t, removed)
	_, err = c.Get(ctx, "k")
	require.ErrorIs(t, err, port.ErrMiss)

	// missing key is not an error
	removed, err = c.DelIfEquals(ctx, "k", "current")
	require.NoError(t, err)
	require.False(t, removed)
}

func TestMemoryCacheMGet(t *testing.T) {
	t.Parallel()

	c := NewMemoryAdapter()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", "1", 0))
	require.NoError(t, c.Set(ctx, "b", "2", 0))

	res, err := c.MGet(ctx, "a", "b", "c")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"a": "1", "b": "2"}, res)
}
