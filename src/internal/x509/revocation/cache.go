// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package revocation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Cache stores raw OCSP responses keyed by [CacheKey].
//
// Implementations must be safe for concurrent use; the batch workers share one.
type Cache interface {
	// Get returns a fresh response, or ok=false on a miss.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Put stores data for ttl. A non-positive ttl is a no-op.
	Put(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// cacheEntry represents a cached OCSP response with metadata
type cacheEntry struct {
	data      []byte    // Raw OCSP response
	fetchedAt time.Time // When this response was stored
	expiresAt time.Time // NextUpdate of the response
}

// MemoryCacheConfig holds configuration for [MemoryCache].
type MemoryCacheConfig struct {
	MaxSize int // Maximum number of responses to cache (0 = unlimited, but not recommended)
}

// DefaultMemoryCacheConfig is used by [NewOCSPGenerator].
var DefaultMemoryCacheConfig = MemoryCacheConfig{MaxSize: 1024}

// CacheMetrics tracks cache performance and usage
type CacheMetrics struct {
	Size        int64 // Current number of cached responses
	Hits        int64 // Number of cache hits
	Misses      int64 // Number of cache misses
	Evictions   int64 // Number of LRU evictions
	Cleanups    int64 // Number of expired response cleanups
	TotalMemory int64 // Approximate memory usage in bytes
}

// MemoryCache is an in-process LRU [Cache].
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   []string // access order, least recently used first
	maxSize int
	now     func() time.Time

	hits, misses, evictions, cleanups atomic.Int64
}

// NewMemoryCache creates an LRU cache. A negative MaxSize is treated as unlimited.
func NewMemoryCache(cfg MemoryCacheConfig) *MemoryCache {
	if cfg.MaxSize < 0 {
		cfg.MaxSize = 0
	}
	return &MemoryCache{
		entries: make(map[string]*cacheEntry),
		maxSize: cfg.MaxSize,
		now:     time.Now,
	}
}

// Get implements [Cache].
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists || !entry.expiresAt.After(c.now()) {
		c.misses.Add(1)
		return nil, false, nil
	}

	c.hits.Add(1)
	c.touch(key)

	// Return a copy to prevent external modification
	return append([]byte(nil), entry.data...), true, nil
}

// Put implements [Cache], evicting the least recently used entry when full.
func (c *MemoryCache) Put(_ context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		for c.maxSize > 0 && len(c.entries) >= c.maxSize && len(c.order) > 0 {
			delete(c.entries, c.order[0])
			c.order = c.order[1:]
			c.evictions.Add(1)
		}
	}

	now := c.now()
	c.entries[key] = &cacheEntry{
		data:      append([]byte(nil), data...),
		fetchedAt: now,
		expiresAt: now.Add(ttl),
	}
	c.touch(key)
	return nil
}

// Cleanup removes responses past their NextUpdate and returns how many were dropped.
func (c *MemoryCache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	kept := c.order[:0]
	removed := 0
	for _, key := range c.order {
		if c.entries[key].expiresAt.After(now) {
			kept = append(kept, key)
			continue
		}
		delete(c.entries, key)
		removed++
	}
	c.order = kept
	c.cleanups.Add(int64(removed))
	return removed
}

// Clear drops every entry and resets the metrics.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = nil
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
	c.cleanups.Store(0)
}

// Metrics returns a snapshot of the cache counters.
func (c *MemoryCache) Metrics() CacheMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	var totalMemory int64
	for key, entry := range c.entries {
		totalMemory += int64(len(entry.data)) + int64(len(key)) + 48 // Approximate overhead
	}

	return CacheMetrics{
		Size:        int64(len(c.entries)),
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Cleanups:    c.cleanups.Load(),
		TotalMemory: totalMemory,
	}
}

// Stats returns a formatted string with cache statistics
func (c *MemoryCache) Stats() string {
	metrics := c.Metrics()

	hitRate := float64(0)
	totalRequests := metrics.Hits + metrics.Misses
	if totalRequests > 0 {
		hitRate = float64(metrics.Hits) / float64(totalRequests) * 100
	}

	return fmt.Sprintf("OCSP Cache Statistics:\n"+
		"  Size: %d/%d entries\n"+
		"  Memory Usage: %.2f KB\n"+
		"  Hit Rate: %.1f%% (%d hits, %d misses)\n"+
		"  Evictions: %d\n"+
		"  Cleanups: %d",
		metrics.Size, c.maxSize,
		float64(metrics.TotalMemory)/1024,
		hitRate, metrics.Hits, metrics.Misses,
		metrics.Evictions,
		metrics.Cleanups)
}

// touch moves key to the most recently used position. Caller holds mu.
func (c *MemoryCache) touch(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.order = append(c.order, key)
}
