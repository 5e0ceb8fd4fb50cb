package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache_GetSet(t *testing.T) {
	c := NewMemoryCache(10)
	defer c.Close()
	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.SetWithTTL(ctx, "k", []byte("v"), time.Minute)
	got, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(10)
	defer c.Close()
	ctx := context.Background()

	c.SetWithTTL(ctx, "short", []byte("v"), 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get(ctx, "short")
	assert.False(t, ok)
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache(10)
	defer c.Close()
	ctx := context.Background()

	c.SetWithTTL(ctx, "k", []byte("v"), time.Minute)
	c.Delete(ctx, "k")

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCache_DeleteByPrefix(t *testing.T) {
	c := NewMemoryCache(10)
	defer c.Close()
	ctx := context.Background()

	c.SetWithTTL(ctx, "conversation:abc", []byte("base"), time.Minute)
	c.SetWithTTL(ctx, "conversation:abc:100:0", []byte("page1"), time.Minute)
	c.SetWithTTL(ctx, "conversation:abc:100:100", []byte("page2"), time.Minute)
	c.SetWithTTL(ctx, "conversation:xyz", []byte("other"), time.Minute)

	c.DeleteByPrefix(ctx, "conversation:abc:")

	_, ok := c.Get(ctx, "conversation:abc:100:0")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "conversation:abc:100:100")
	assert.False(t, ok)

	_, ok = c.Get(ctx, "conversation:abc")
	assert.True(t, ok, "base key is not covered by the prefix delete")
	_, ok = c.Get(ctx, "conversation:xyz")
	assert.True(t, ok)
}

func TestMemoryCache_EvictsNearestExpiry(t *testing.T) {
	c := NewMemoryCache(3)
	defer c.Close()
	ctx := context.Background()

	c.SetWithTTL(ctx, "soon", []byte("v"), time.Minute)
	c.SetWithTTL(ctx, "later", []byte("v"), time.Hour)
	c.SetWithTTL(ctx, "latest", []byte("v"), 2*time.Hour)
	c.SetWithTTL(ctx, "overflow", []byte("v"), time.Hour)

	_, ok := c.Get(ctx, "soon")
	assert.False(t, ok, "entry nearest to expiry is evicted when the cache overflows")
	_, ok = c.Get(ctx, "later")
	assert.True(t, ok)
	_, ok = c.Get(ctx, "latest")
	assert.True(t, ok)
	_, ok = c.Get(ctx, "overflow")
	assert.True(t, ok)
}

func TestMemoryCache_BoundHolds(t *testing.T) {
	c := NewMemoryCache(5)
	defer c.Close()
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		c.SetWithTTL(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Minute)
	}

	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()
	assert.LessOrEqual(t, size, 5)
}
