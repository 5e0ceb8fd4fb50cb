package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInvalidator_InvalidateConversation(t *testing.T) {
	c := NewMemoryCache(100)
	defer c.Close()
	ctx := context.Background()
	inv := NewInvalidator(c)

	c.SetWithTTL(ctx, ConversationKey("conv1"), []byte("x"), time.Minute)
	c.SetWithTTL(ctx, ConversationPageKey("conv1", 100, 0), []byte("x"), time.Minute)
	c.SetWithTTL(ctx, ManagerListKey("m1"), []byte("x"), time.Minute)
	c.SetWithTTL(ctx, CustomerKey("c1"), []byte("x"), time.Minute)
	c.SetWithTTL(ctx, CustomerPageKey("c1", 100, 0), []byte("x"), time.Minute)
	c.SetWithTTL(ctx, ConversationKey("conv2"), []byte("x"), time.Minute)
	c.SetWithTTL(ctx, ManagerListKey("m2"), []byte("x"), time.Minute)

	inv.InvalidateConversation(ctx, "conv1", "m1", "c1")

	for _, key := range []string{
		ConversationKey("conv1"),
		ConversationPageKey("conv1", 100, 0),
		ManagerListKey("m1"),
		CustomerKey("c1"),
		CustomerPageKey("c1", 100, 0),
	} {
		_, ok := c.Get(ctx, key)
		assert.False(t, ok, "expected %s to be invalidated", key)
	}

	_, ok := c.Get(ctx, ConversationKey("conv2"))
	assert.True(t, ok)
	_, ok = c.Get(ctx, ManagerListKey("m2"))
	assert.True(t, ok)
}

func TestInvalidator_SkipsEmptyIDs(t *testing.T) {
	c := NewMemoryCache(100)
	defer c.Close()
	ctx := context.Background()
	inv := NewInvalidator(c)

	c.SetWithTTL(ctx, ManagerListKey("m1"), []byte("x"), time.Minute)

	inv.InvalidateConversation(ctx, "conv1", "", "")

	_, ok := c.Get(ctx, ManagerListKey("m1"))
	assert.True(t, ok)
}

func TestInvalidator_InvalidateAutoReplyConfig(t *testing.T) {
	c := NewMemoryCache(100)
	defer c.Close()
	ctx := context.Background()
	inv := NewInvalidator(c)

	c.SetWithTTL(ctx, AutoReplyConfigKey("m1"), []byte("x"), time.Minute)
	inv.InvalidateAutoReplyConfig(ctx, "m1")

	_, ok := c.Get(ctx, AutoReplyConfigKey("m1"))
	assert.False(t, ok)
}
