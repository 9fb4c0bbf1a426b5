// Package cache provides a bounded in-memory TTL cache for finished
// research results. Keys derive from the normalized query plus an
// options fingerprint so differing options never share an entry.
package cache

import (
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/claritydesk/claritydesk/internal/types"
)

// Cache is a fixed-capacity TTL cache. When full, the oldest entry by
// insertion time is evicted. Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*entry
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

type entry struct {
	result   types.ResearchResult
	inserted time.Time
}

// New builds a cache. Capacity below one disables storage entirely.
func New(capacity int, ttl time.Duration) *Cache {
	return &Cache{
		entries:  make(map[string]*entry, capacity),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Key builds the cache key for a request. Queries differing only in
// case or surrounding whitespace share a key; any option difference
// produces a distinct one.
func Key(query string, opts types.ResearchOptions) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d|%t|%d", opts.Depth, opts.MaxSources, opts.IncludeContactInfo, opts.TimeoutSeconds)
	return fmt.Sprintf("%s#%x", normalized, h.Sum64())
}

// Get returns a cached result if present and not expired.
func (c *Cache) Get(key string) (types.ResearchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return types.ResearchResult{}, false
	}
	if c.now().Sub(e.inserted) > c.ttl {
		delete(c.entries, key)
		return types.ResearchResult{}, false
	}
	return e.result, true
}

// Put stores a result, evicting the oldest entry when at capacity.
func (c *Cache) Put(key string, result types.ResearchResult) {
	if c.capacity < 1 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictOldest()
	}
	c.entries[key] = &entry{result: result, inserted: c.now()}
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry, c.capacity)
}

func (c *Cache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, e := range c.entries {
		if oldestKey == "" || e.inserted.Before(oldest) {
			oldestKey = key
			oldest = e.inserted
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
