package vehiclestate

import (
	"context"
	"log"
	"time"

	"cabwatch/fleet"
)

// Manager provides write-through vehicle state: memory first, then the Redis
// mirror. The memory cache is authoritative within the process; Redis only
// seeds it on startup and exposes it to external inspection.
type Manager struct {
	mem   *MemoryCache
	redis *RedisStore
}

// NewManager wires a manager. redis may be nil when running without a mirror.
func NewManager(mem *MemoryCache, redis *RedisStore) *Manager {
	return &Manager{mem: mem, redis: redis}
}

// RecordPoll upserts cache entries for every snapshot carrying a GPS fix,
// tagged with the poll's generation. Writes from a generation older than the
// stored one are discarded, so an overlapping slow poll cannot overwrite
// newer state.
func (m *Manager) RecordPoll(generation uint64, snaps []fleet.VehicleSnapshot) {
	for _, s := range snaps {
		if s.Coordinates == nil || s.Coordinates.Timestamp.IsZero() {
			continue
		}
		e := Entry{
			Callsign:   s.Callsign,
			LastSeenAt: s.Coordinates.Timestamp,
			Lat:        s.Coordinates.Lat,
			Lng:        s.Coordinates.Lng,
			Generation: generation,
		}
		if !m.mem.UpsertIfNewer(e) {
			continue
		}
		m.mirror(e)
	}
}

// RecordPosition folds a live position update (driver-app feed) into the
// cache. Position updates carry no poll generation; they only advance an
// entry whose fix is older.
func (m *Manager) RecordPosition(callsign string, lat, lng float64, ts time.Time) {
	cur, ok := m.mem.Get(callsign)
	if ok && !ts.After(cur.LastSeenAt) {
		return
	}
	e := Entry{Callsign: callsign, LastSeenAt: ts, Lat: lat, Lng: lng, Generation: cur.Generation}
	m.mem.Upsert(e)
	m.mirror(e)
}

// LastSeen returns the carried-forward GPS timestamp for a callsign, zero if
// the vehicle has never reported a fix.
func (m *Manager) LastSeen(callsign string) time.Time {
	e, ok := m.mem.Get(callsign)
	if !ok {
		return time.Time{}
	}
	return e.LastSeenAt
}

// Get returns the full entry for a callsign.
func (m *Manager) Get(callsign string) (Entry, bool) {
	return m.mem.Get(callsign)
}

// All returns every cached entry.
func (m *Manager) All() []Entry {
	return m.mem.All()
}

// WarmStart seeds the memory cache from the Redis mirror. Called once on
// startup, before the first poll.
func (m *Manager) WarmStart() error {
	if m.redis == nil {
		return nil
	}
	ctx := context.Background()
	callsigns, err := m.redis.AllCallsigns(ctx)
	if err != nil {
		return err
	}
	loaded := 0
	for _, cs := range callsigns {
		e, err := m.redis.GetEntry(ctx, cs)
		if err != nil || e == nil {
			continue
		}
		// Stored generations belong to a previous process lifetime.
		e.Generation = 0
		m.mem.Upsert(*e)
		loaded++
	}
	if loaded > 0 {
		log.Printf("vehiclestate: warm-started %d entries from redis", loaded)
	}
	return nil
}

// EvictInactive drops entries idle past the cutoff from memory and Redis.
func (m *Manager) EvictInactive(olderThan time.Duration) int {
	if olderThan <= 0 {
		return 0
	}
	now := time.Now()
	var evicted []string
	for _, e := range m.mem.All() {
		if !e.LastSeenAt.IsZero() && now.Sub(e.LastSeenAt) > olderThan {
			evicted = append(evicted, e.Callsign)
		}
	}
	n := m.mem.EvictInactive(olderThan, now)
	if m.redis != nil {
		ctx := context.Background()
		for _, cs := range evicted {
			m.redis.RemoveEntry(ctx, cs)
		}
	}
	return n
}

func (m *Manager) mirror(e Entry) {
	if m.redis == nil {
		return
	}
	if err := m.redis.SetEntry(context.Background(), e); err != nil {
		log.Printf("vehiclestate: redis mirror write for %s: %v", e.Callsign, err)
	}
}
