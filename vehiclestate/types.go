package vehiclestate

import "time"

// Entry is the carried-forward state for one callsign: the last GPS fix seen
// and the poll generation that wrote it. Entries are upserted on every poll
// and never explicitly deleted; the fleet is small and stable, so stale
// entries for retired vehicles are a bounded leak, with optional eviction by
// inactivity.
type Entry struct {
	Callsign   string    `json:"callsign"`
	LastSeenAt time.Time `json:"last_seen_at"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Generation uint64    `json:"generation"`
}

// Cache is the injected store for carried-forward vehicle state. The core
// consults it only through this interface so tests can construct a fresh
// cache per test and assert on its evolution across simulated polls.
type Cache interface {
	// Get returns the entry for a callsign, if one exists.
	Get(callsign string) (Entry, bool)

	// Upsert stores an entry unconditionally.
	Upsert(e Entry)

	// UpsertIfNewer stores an entry only if its generation is at least the
	// stored one. Returns false when the write was discarded as stale.
	UpsertIfNewer(e Entry) bool

	// All returns a copy of every entry.
	All() []Entry
}
