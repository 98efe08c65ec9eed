package gateway

import (
	"bytes"
	"net/http"
	"sync"
	"time"
)

// ResponseCache is the platform's generic read-through HTTP cache: fixed
// TTL, keyed by the full request URL. It only ever sees GET requests and
// only stores successful responses. Mutating routes must not be wrapped
// with it; cancelling an order through a cached route would serve stale
// order state.
type ResponseCache struct {
	ttl time.Duration

	mu        sync.RWMutex
	entries   map[string]cacheEntry
	nextSweep time.Time
}

type cacheEntry struct {
	status      int
	contentType string
	body        []byte
	expiresAt   time.Time
}

func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Wrap caches GET responses for the configured TTL. Non-GET requests pass
// through untouched and evict the cached entry for their URL.
func (c *ResponseCache) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Identity affects response shapes on owner-scoped routes.
		key := r.Header.Get("X-Customer-ID") + " " + r.URL.String()

		if r.Method != http.MethodGet {
			c.evict(key)
			next(w, r)
			return
		}

		if entry, ok := c.get(key); ok {
			w.Header().Set("Content-Type", entry.contentType)
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(entry.status)
			_, _ = w.Write(entry.body)
			return
		}

		recorder := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next(recorder, r)

		if recorder.status == http.StatusOK {
			c.put(key, cacheEntry{
				status:      recorder.status,
				contentType: recorder.Header().Get("Content-Type"),
				body:        recorder.body.Bytes(),
				expiresAt:   time.Now().Add(c.ttl),
			})
		}
	}
}

func (c *ResponseCache) get(key string) (cacheEntry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return cacheEntry{}, false
	}
	if time.Now().After(entry.expiresAt) {
		c.evict(key)
		return cacheEntry{}, false
	}
	return entry, true
}

// put stores an entry and, at most once per TTL, sweeps out everything
// expired. Keys that are never read again would otherwise pile up forever.
func (c *ResponseCache) put(key string, entry cacheEntry) {
	c.mu.Lock()
	if now := time.Now(); now.After(c.nextSweep) {
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
		c.nextSweep = now.Add(c.ttl)
	}
	c.entries[key] = entry
	c.mu.Unlock()
}

func (c *ResponseCache) evict(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
