// Package feedcache holds computed feeds for a short time so repeated
// requests with the same options skip the ranking pass.
package feedcache

import (
	"sync"
	"time"
)

// DefaultTTL is how long an entry stays fresh.
const DefaultTTL = 3 * time.Minute

type entry[V any] struct {
	value   V
	created time.Time
}

// Stats counts cache traffic since creation.
type Stats struct {
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Entries       int    `json:"entries"`
	Users         int    `json:"users"`
	Invalidations uint64 `json:"invalidations"`
	Evictions     uint64 `json:"evictions"`
}

// Cache maps (user, key) to a value with a fixed time-to-live. Entries are
// grouped by user so invalidating one user never touches another's.
type Cache[V any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	users map[string]map[string]entry[V]
	stats Stats
}

// New creates a cache with the given TTL. A non-positive ttl means DefaultTTL.
func New[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[V]{
		ttl:   ttl,
		now:   time.Now,
		users: make(map[string]map[string]entry[V]),
	}
}

// SetClock replaces the clock used for expiry. Intended for tests.
func (c *Cache[V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// TTL returns the configured time-to-live.
func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

func (c *Cache[V]) expired(e entry[V], now time.Time) bool {
	return now.Sub(e.created) >= c.ttl
}

// Get returns the fresh value for (userID, key). An expired entry is evicted
// and reported as a miss.
func (c *Cache[V]) Get(userID, key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	entries, ok := c.users[userID]
	if !ok {
		c.stats.Misses++
		return zero, false
	}
	e, ok := entries[key]
	if !ok {
		c.stats.Misses++
		return zero, false
	}
	if c.expired(e, c.now()) {
		c.removeLocked(userID, key)
		c.stats.Evictions++
		c.stats.Misses++
		return zero, false
	}
	c.stats.Hits++
	return e.value, true
}

// Set stores v for (userID, key), replacing any existing entry.
func (c *Cache[V]) Set(userID, key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, ok := c.users[userID]
	if !ok {
		entries = make(map[string]entry[V])
		c.users[userID] = entries
	}
	entries[key] = entry[V]{value: v, created: c.now()}
}

// GetOrCompute returns the cached value, or calls compute and stores its
// result. The boolean is true when the value came from the cache. compute
// runs without the lock held; two callers missing on the same key may both
// compute, and the later Set wins. Errors are returned and not stored.
func (c *Cache[V]) GetOrCompute(userID, key string, compute func() (V, error)) (V, bool, error) {
	if v, ok := c.Get(userID, key); ok {
		return v, true, nil
	}
	v, err := compute()
	if err != nil {
		var zero V
		return zero, false, err
	}
	c.Set(userID, key, v)
	return v, false, nil
}

// InvalidateUser drops every entry belonging to userID and returns how many
// were removed.
func (c *Cache[V]) InvalidateUser(userID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.users[userID])
	delete(c.users, userID)
	c.stats.Invalidations++
	return n
}

// Sweep evicts every expired entry and returns how many were removed.
func (c *Cache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for userID, entries := range c.users {
		for key, e := range entries {
			if c.expired(e, now) {
				delete(entries, key)
				removed++
			}
		}
		if len(entries) == 0 {
			delete(c.users, userID)
		}
	}
	c.stats.Evictions += uint64(removed)
	return removed
}

// Stats returns a snapshot of the counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Users = len(c.users)
	for _, entries := range c.users {
		s.Entries += len(entries)
	}
	return s
}

func (c *Cache[V]) removeLocked(userID, key string) {
	entries := c.users[userID]
	delete(entries, key)
	if len(entries) == 0 {
		delete(c.users, userID)
	}
}
