package vehiclestate

import (
	"log"
	"sync"
	"time"
)

// MemoryCache is the authoritative in-memory Cache. A single coarse lock is
// enough for fleet-sized maps.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]Entry
	debug   bool
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]Entry)}
}

// SetDebug enables debug logging of discarded stale writes.
func (c *MemoryCache) SetDebug(v bool) { c.debug = v }

func (c *MemoryCache) Get(callsign string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[callsign]
	return e, ok
}

func (c *MemoryCache) Upsert(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[e.Callsign] = e
}

// UpsertIfNewer discards writes from a poll older than the entry's current
// generation. Discards are expected under normal polling jitter (a slow poll
// returning after a newer one), not an error condition.
func (c *MemoryCache) UpsertIfNewer(e Entry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.entries[e.Callsign]
	if ok && e.Generation < cur.Generation {
		if c.debug {
			log.Printf("vehiclestate: discarding stale write for %s (gen %d < %d)", e.Callsign, e.Generation, cur.Generation)
		}
		return false
	}
	c.entries[e.Callsign] = e
	return true
}

func (c *MemoryCache) All() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	return out
}

// EvictInactive removes entries whose last fix is older than the cutoff,
// for retired vehicles. Returns the number evicted.
func (c *MemoryCache) EvictInactive(olderThan time.Duration, now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for cs, e := range c.entries {
		if !e.LastSeenAt.IsZero() && now.Sub(e.LastSeenAt) > olderThan {
			delete(c.entries, cs)
			n++
		}
	}
	return n
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
