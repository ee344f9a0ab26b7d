package dashboard

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// RenderCache memoizes rendered widget HTML so repeated page renders are cheap.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// VizCache is an in-memory TTL cache for rendered visualizations. A zero or
// negative TTL disables storage.
type VizCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]cachedViz
}

type cachedViz struct {
	html    string
	expires time.Time
}

// NewVizCache builds a cache with the provided TTL.
func NewVizCache(ttl time.Duration) *VizCache {
	return &VizCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedViz),
	}
}

// GetOrRender returns a cached entry or renders and stores a new one.
func (c *VizCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if out, ok := c.lookup(key); ok {
		return out, nil
	}
	out, err := render()
	if err != nil {
		return "", err
	}
	c.store(key, out)
	return out, nil
}

// Len returns the number of live and expired entries still held.
func (c *VizCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *VizCache) lookup(key string) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if c.now().After(entry.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}
	return entry.html, true
}

func (c *VizCache) store(key, out string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cachedViz{html: out, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// fingerprint identifies a widget rendering by id, name, kind and payload, so
// reactivated widgets with unchanged payloads hit the cache.
func fingerprint(w Widget) string {
	b, err := json.Marshal(struct {
		ID      string
		Name    string
		Kind    VizKind
		Payload VizPayload
	}{w.ID, w.Name, w.Kind, w.Payload})
	if err != nil {
		return w.ID + ":invalid"
	}
	sum := sha1.Sum(b)
	return w.ID + ":" + hex.EncodeToString(sum[:])
}
