package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxEntries bounds the memory cache when no capacity is given.
const DefaultMaxEntries = 500

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is an in-memory cache with TTL expiry and a capacity bound.
// When full, the oldest-inserted entry is evicted first.
type MemoryCache struct {
	mu         sync.RWMutex
	items      map[string]memoryEntry
	order      []string
	maxEntries int
}

// NewMemoryCache creates an in-memory cache with the default capacity and
// starts a background cleanup goroutine.
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithCapacity(DefaultMaxEntries)
}

// NewMemoryCacheWithCapacity creates an in-memory cache bounded to max
// entries (0 means DefaultMaxEntries).
func NewMemoryCacheWithCapacity(max int) *MemoryCache {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	mc := &MemoryCache{
		items:      make(map[string]memoryEntry),
		maxEntries: max,
	}
	go mc.cleanup()
	return mc
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	entry, ok := m.items[key]
	m.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	return entry.data, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[key]; !exists {
		if len(m.items) >= m.maxEntries && len(m.order) > 0 {
			oldest := m.order[0]
			m.order = m.order[1:]
			delete(m.items, oldest)
		}
		m.order = append(m.order, key)
	}
	m.items[key] = memoryEntry{
		data:      value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(key)
	return nil
}

func (m *MemoryCache) MGet(_ context.Context, keys ...string) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	results := make([][]byte, len(keys))
	for i, key := range keys {
		if entry, ok := m.items[key]; ok && now.Before(entry.expiresAt) {
			results[i] = entry.data
		}
	}
	return results, nil
}

// Len reports the current number of entries, expired or not.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *MemoryCache) removeLocked(key string) {
	if _, ok := m.items[key]; !ok {
		return
	}
	delete(m.items, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *MemoryCache) cleanup() {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		m.mu.Lock()
		for k, v := range m.items {
			if now.After(v.expiresAt) {
				m.removeLocked(k)
			}
		}
		m.mu.Unlock()
	}
}
