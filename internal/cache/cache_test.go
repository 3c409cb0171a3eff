// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	a := Key("No fever.", 1)
	assert.Equal(t, a, Key("No fever.", 1))
	assert.NotEqual(t, a, Key("No fever.", 2), "generation is part of the key")
	assert.NotEqual(t, a, Key("No fever!", 1))
	assert.True(t, strings.HasPrefix(a, "semex:v1:1:"))
}

func TestMemory(t *testing.T) {
	c := NewMemory[[]string](time.Minute, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", []string{"a", "b"})
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, c.Len())

	c.Set("x", nil)
	c.Set("y", []string{"y"})
	assert.Equal(t, 3, c.Len())

	c.Clear()
	assert.Zero(t, c.Len())
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestMemoryExpires(t *testing.T) {
	c := NewMemory[int](10*time.Millisecond, time.Hour)
	c.Set("k", 42)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, got)

	assert.Eventually(t, func() bool {
		_, ok := c.Get("k")
		return !ok
	}, time.Second, 5*time.Millisecond)
}
