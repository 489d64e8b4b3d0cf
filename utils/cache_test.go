package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := NewTTLCache(time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Set("k", 42)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestCacheExpiry(t *testing.T) {
	c := NewTTLCache(20 * time.Millisecond)
	c.Set("k", "v")

	_, ok := c.Get("k")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestCacheInvalidate(t *testing.T) {
	c := NewTTLCache(time.Minute)
	c.Set("k", "v")
	c.Invalidate("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestPINHashRoundTrip(t *testing.T) {
	hash, err := HashPIN("1234")
	require.NoError(t, err)

	assert.True(t, CheckPIN(hash, "1234"))
	assert.False(t, CheckPIN(hash, "4321"))
	assert.False(t, CheckPIN("not-a-hash", "1234"))
}
