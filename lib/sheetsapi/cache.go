package sheetsapi

import (
	"fmt"
	"sync"
	"time"
)

type cachedResponse struct {
	body      []byte
	timestamp time.Time
}

// callCache memoizes read responses for a fixed duration. It is a
// best-effort optimization, not a correctness mechanism: two identical
// reads racing may both hit the network and the last write wins, which
// is fine since responses are idempotent within the cache window.
type callCache struct {
	mu       sync.Mutex
	lifetime time.Duration
	entries  map[string]cachedResponse
}

func newCallCache(lifetime time.Duration) *callCache {
	return &callCache{
		lifetime: lifetime,
		entries:  map[string]cachedResponse{},
	}
}

func cacheKey(method, path string, body []byte) string {
	return fmt.Sprintf("%s-%s-%s", method, path, body)
}

func (c *callCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(cached.timestamp) >= c.lifetime {
		delete(c.entries, key)
		return nil, false
	}
	return cached.body, true
}

func (c *callCache) set(key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cachedResponse{
		body:      body,
		timestamp: time.Now(),
	}
}

func (c *callCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
}
