package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryListCache is a single in-process slot with a fixed TTL. The
// generation counter plays the role of the Redis version key.
type MemoryListCache struct {
	mu         sync.RWMutex
	payload    []byte
	expires    time.Time
	generation int64
	ttl        time.Duration
	now        func() time.Time
}

func NewMemoryListCache(ttl time.Duration) *MemoryListCache {
	return &MemoryListCache{ttl: ttl, now: time.Now, generation: 1}
}

func (c *MemoryListCache) Get(_ context.Context) ([]byte, int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.payload == nil || !c.now().Before(c.expires) {
		return nil, c.generation, false
	}
	return c.payload, c.generation, true
}

func (c *MemoryListCache) Set(_ context.Context, version int64, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version != c.generation {
		return
	}
	c.payload = payload
	c.expires = c.now().Add(c.ttl)
}

func (c *MemoryListCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payload = nil
	c.generation++
	return nil
}
