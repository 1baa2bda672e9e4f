// Package cache provides the bounded result cache for resolved lookups.
//
// Capacity is enforced with least-recently-used eviction; expiry is
// evaluated lazily on read, never by a background sweep. Successful
// outcomes and errors are cached with different TTLs by the caller
// (negative caching keeps a failing registry from being hammered).
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/verscout/verscout/internal/core"
)

// Outcome is the cached result of one lookup: exactly one of Record or
// Err is set. Read-only once written.
type Outcome struct {
	Record *core.Record
	Err    *core.LookupError
}

type entry struct {
	key       string
	outcome   Outcome
	expiresAt time.Time
}

// Cache is a bounded LRU cache with per-entry TTL. Safe for concurrent
// use.
type Cache struct {
	mu      sync.Mutex
	max     int
	ll      *list.List
	entries map[string]*list.Element
	now     func() time.Time
}

// New creates a cache bounded to max entries.
func New(max int) *Cache {
	if max <= 0 {
		max = 1
	}
	return &Cache{
		max:     max,
		ll:      list.New(),
		entries: make(map[string]*list.Element),
		now:     time.Now,
	}
}

// Get returns the outcome for key if present and fresh. An expired entry
// is removed and reported as absent.
func (c *Cache) Get(key string) (Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return Outcome{}, false
	}

	ent := el.Value.(*entry)
	if c.now().After(ent.expiresAt) {
		c.ll.Remove(el)
		delete(c.entries, key)
		return Outcome{}, false
	}

	c.ll.MoveToFront(el)
	return ent.outcome, true
}

// Put stores an outcome under key with the given TTL, evicting the least
// recently used entries once capacity is reached.
func (c *Cache) Put(key string, o Outcome, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)

	if el, ok := c.entries[key]; ok {
		ent := el.Value.(*entry)
		ent.outcome = o
		ent.expiresAt = expiresAt
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(&entry{key: key, outcome: o, expiresAt: expiresAt})
	c.entries[key] = el

	for c.ll.Len() > c.max {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
}

// Len returns the number of entries, including not-yet-collected expired
// ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
