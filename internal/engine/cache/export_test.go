package cache

import "go.trai.ch/press/internal/core/domain"

// Pin marks fp as in use the way an in-flight GetOrCompute does.
func (c *Cache) Pin(fp domain.Fingerprint) { c.pin(fp) }

// Unpin releases a Pin.
func (c *Cache) Unpin(fp domain.Fingerprint) { c.unpin(fp) }

// InMemory reports whether fp is held by the memory tier without touching recency.
func (c *Cache) InMemory(fp domain.Fingerprint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Contains(fp)
}
