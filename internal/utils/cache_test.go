package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalCache(t *testing.T) {
	InitCache()

	CacheSet("key", "value", time.Minute)
	v, ok := CacheGet("key")
	require.True(t, ok)
	assert.Equal(t, "value", v)

	CacheDelete("key")
	_, ok = CacheGet("key")
	assert.False(t, ok)
}

func TestTTLCache(t *testing.T) {
	c := NewTTLCache[string](4, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache[int](4, 10*time.Millisecond)

	c.Set("n", 42)
	v, ok := c.Get("n")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	time.Sleep(20 * time.Millisecond)
	_, ok = c.Get("n")
	assert.False(t, ok)
}

func TestTTLCacheEviction(t *testing.T) {
	// 超出容量时按 LRU 淘汰最旧的
	c := NewTTLCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}
