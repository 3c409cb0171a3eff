// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache keeps recent extraction results in memory so repeated texts
// skip the pipeline.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Key derives a cache key from the input text and the dictionary generation
// it was extracted against. Any vocabulary change yields new keys, so stale
// results are never served.
func Key(text string, generation uint64) string {
	hash := sha256.Sum256([]byte(text))
	return "semex:v1:" + strconv.FormatUint(generation, 10) + ":" + hex.EncodeToString(hash[:])
}

// Memory is a TTL cache of values of one type.
type Memory[V any] struct {
	cache *gocache.Cache
}

// NewMemory creates a memory cache. Entries expire after ttl; expired entries
// are purged every cleanupInterval.
func NewMemory[V any](ttl, cleanupInterval time.Duration) *Memory[V] {
	return &Memory[V]{
		cache: gocache.New(ttl, cleanupInterval),
	}
}

// Get retrieves a value from the cache.
func (c *Memory[V]) Get(key string) (V, bool) {
	if val, found := c.cache.Get(key); found {
		if v, ok := val.(V); ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Set stores a value with the default TTL.
func (c *Memory[V]) Set(key string, value V) {
	c.cache.SetDefault(key, value)
}

// Clear removes all values.
func (c *Memory[V]) Clear() {
	c.cache.Flush()
}

// Len returns the number of cached values, expired ones included until the
// next cleanup.
func (c *Memory[V]) Len() int {
	return c.cache.ItemCount()
}
