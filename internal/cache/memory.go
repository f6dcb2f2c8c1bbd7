package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shopsearch/internal/models"

	lru "github.com/hashicorp/golang-lru"
)

const defaultCleanupInterval = 5 * time.Minute

// MemoryCache implements Service using a size-bounded LRU with per-entry expiry
type MemoryCache struct {
	entries *lru.Cache
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// cacheEntry represents a single cache entry with expiration
type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache holding at most capacity entries
func NewMemoryCache(capacity int) (Service, error) {
	cache, err := newMemoryCache(capacity, defaultCleanupInterval, time.Now)
	if err != nil {
		return nil, err
	}
	return cache, nil
}

// NewMemoryCacheWithClock is NewMemoryCache with an explicit time source
func NewMemoryCacheWithClock(capacity int, now func() time.Time) (Service, error) {
	cache, err := newMemoryCache(capacity, defaultCleanupInterval, now)
	if err != nil {
		return nil, err
	}
	return cache, nil
}

// newMemoryCache creates the concrete implementation
func newMemoryCache(capacity int, cleanupInterval time.Duration, now func() time.Time) (*MemoryCache, error) {
	entries, err := lru.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}

	cache := &MemoryCache{
		entries: entries,
		now:     now,
		stop:    make(chan struct{}),
	}

	go cache.cleanupExpired(cleanupInterval)

	return cache, nil
}

// Get retrieves a cached value for the given key
func (m *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	raw, ok := m.entries.Get(key)
	if !ok {
		return nil, models.ErrCacheUnavailable
	}

	entry := raw.(*cacheEntry)
	if !m.now().Before(entry.expiresAt) {
		m.entries.Remove(key)
		return nil, models.ErrCacheUnavailable
	}

	return entry.value, nil
}

// Set stores a value in the cache with the specified TTL.
// When the cache is full the least recently used entry is evicted.
func (m *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("TTL must be positive, got: %v", ttl)
	}

	m.entries.Add(key, &cacheEntry{
		value:     value,
		expiresAt: m.now().Add(ttl),
	})

	return nil
}

// Delete removes an entry from the cache
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.entries.Remove(key)
	return nil
}

// Close stops the cleanup routine
func (m *MemoryCache) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

// cleanupExpired periodically removes expired entries until Close is called
func (m *MemoryCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.purgeExpired()
		}
	}
}

// purgeExpired drops every expired entry without touching recency
func (m *MemoryCache) purgeExpired() int {
	now := m.now()
	removed := 0
	for _, key := range m.entries.Keys() {
		raw, ok := m.entries.Peek(key)
		if !ok {
			continue
		}
		if !now.Before(raw.(*cacheEntry).expiresAt) {
			m.entries.Remove(key)
			removed++
		}
	}
	return removed
}

// Size returns the current number of cached entries (for monitoring)
func (m *MemoryCache) Size() int {
	return m.entries.Len()
}
