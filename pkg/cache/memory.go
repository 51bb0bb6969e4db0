package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const (
	defaultMemoryTTL    = 24 * time.Hour
	memoryJanitorPeriod = 5 * time.Minute
)

type memoryEntry struct {
	value    interface{}
	expires  time.Time
	lastUsed time.Time
}

// MemoryCache is a process-local cache with TTL expiry and a size cap.
// When full, the least recently used entry makes room.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	maxSize int
	janitor *time.Ticker
}

func NewMemoryCache() *MemoryCache {
	mc := &MemoryCache{
		entries: make(map[string]*memoryEntry),
		maxSize: 1000,
		janitor: time.NewTicker(memoryJanitorPeriod),
	}
	go mc.sweep()
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultMemoryTTL
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if len(mc.entries) >= mc.maxSize {
		mc.evictOldest()
	}
	now := time.Now()
	mc.entries[key] = &memoryEntry{value: value, expires: now.Add(ttl), lastUsed: now}
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	e, ok := mc.entries[key]
	if !ok || time.Now().After(e.expires) {
		if ok {
			delete(mc.entries, key)
		}
		return ErrCacheMiss
	}
	e.lastUsed = time.Now()

	if s, ok := e.value.(string); ok {
		if sp, ok := dest.(*string); ok {
			*sp = s
			return nil
		}
	}
	// round-trip through JSON so struct destinations behave like Redis
	b, err := json.Marshal(e.value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, key := range keys {
		delete(mc.entries, key)
	}
	return nil
}

func (mc *MemoryCache) Close() error {
	mc.janitor.Stop()
	return nil
}

// evictOldest drops the least recently used entry. Callers hold the lock.
func (mc *MemoryCache) evictOldest() {
	var victim string
	var oldest time.Time
	for key, e := range mc.entries {
		if victim == "" || e.lastUsed.Before(oldest) {
			victim = key
			oldest = e.lastUsed
		}
	}
	if victim != "" {
		delete(mc.entries, victim)
	}
}

func (mc *MemoryCache) sweep() {
	for range mc.janitor.C {
		now := time.Now()
		mc.mu.Lock()
		for key, e := range mc.entries {
			if now.After(e.expires) {
				delete(mc.entries, key)
			}
		}
		mc.mu.Unlock()
	}
}
