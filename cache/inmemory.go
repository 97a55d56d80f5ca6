package cache

import (
	"context"
	"sync"
	"time"

	"github.com/coursemate/coursemate/agent"
)

// InMemoryCache implements AnswerCache with a map. Intended for tests and
// single-process deployments.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]inMemoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type inMemoryEntry struct {
	resp      agent.Response
	expiresAt time.Time
}

// NewInMemoryCache creates an in-memory answer cache. ttl of 0 disables
// expiration.
func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	return &InMemoryCache{
		entries: make(map[string]inMemoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached response for the key, or nil on a miss.
func (c *InMemoryCache) Get(ctx context.Context, key string) (*agent.Response, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}
	resp := entry.resp
	return &resp, nil
}

// Set stores a response under the key.
func (c *InMemoryCache) Set(ctx context.Context, key string, resp *agent.Response) error {
	if resp == nil || resp.ShouldEscalate {
		return nil
	}
	entry := inMemoryEntry{resp: *resp}
	if c.ttl > 0 {
		entry.expiresAt = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}
