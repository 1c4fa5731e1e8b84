package vehiclestate

import (
	"testing"
	"time"

	"cabwatch/fleet"
)

func TestUpsertIfNewerDiscardsStale(t *testing.T) {
	c := NewMemoryCache()

	c.UpsertIfNewer(Entry{Callsign: "17", Generation: 5, LastSeenAt: time.Now()})

	old := Entry{Callsign: "17", Generation: 3, LastSeenAt: time.Now().Add(-time.Hour)}
	if c.UpsertIfNewer(old) {
		t.Fatal("stale generation accepted, want discarded")
	}

	e, ok := c.Get("17")
	if !ok {
		t.Fatal("entry missing")
	}
	if e.Generation != 5 {
		t.Errorf("Generation = %d, want 5", e.Generation)
	}
}

func TestUpsertIfNewerAcceptsEqualGeneration(t *testing.T) {
	c := NewMemoryCache()
	c.UpsertIfNewer(Entry{Callsign: "17", Generation: 5})
	if !c.UpsertIfNewer(Entry{Callsign: "17", Generation: 5, Lat: 1.0}) {
		t.Fatal("same-generation write discarded, want accepted")
	}
}

func TestRecordPollSkipsMissingCoordinates(t *testing.T) {
	m := NewManager(NewMemoryCache(), nil)
	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	m.RecordPoll(1, []fleet.VehicleSnapshot{
		{Callsign: "17", Coordinates: &fleet.Coordinates{Lat: 51.5, Lng: -0.12, Timestamp: ts}},
		{Callsign: "21"}, // no fix: "never reported" must stay distinguishable
	})

	if got := m.LastSeen("17"); !got.Equal(ts) {
		t.Errorf("LastSeen(17) = %v, want %v", got, ts)
	}
	if got := m.LastSeen("21"); !got.IsZero() {
		t.Errorf("LastSeen(21) = %v, want zero", got)
	}
}

func TestRecordPollStaleGenerationIgnored(t *testing.T) {
	m := NewManager(NewMemoryCache(), nil)
	newer := time.Now()
	older := newer.Add(-10 * time.Minute)

	m.RecordPoll(2, []fleet.VehicleSnapshot{
		{Callsign: "17", Coordinates: &fleet.Coordinates{Timestamp: newer}},
	})
	// A slow poll from generation 1 returns late.
	m.RecordPoll(1, []fleet.VehicleSnapshot{
		{Callsign: "17", Coordinates: &fleet.Coordinates{Timestamp: older}},
	})

	if got := m.LastSeen("17"); !got.Equal(newer) {
		t.Errorf("LastSeen = %v, want %v (stale poll must not overwrite)", got, newer)
	}
}

func TestRecordPositionOnlyAdvances(t *testing.T) {
	m := NewManager(NewMemoryCache(), nil)
	base := time.Now()

	m.RecordPosition("17", 51.5, -0.12, base)
	m.RecordPosition("17", 51.6, -0.13, base.Add(-time.Minute))

	e, _ := m.Get("17")
	if !e.LastSeenAt.Equal(base) {
		t.Errorf("LastSeenAt = %v, want %v (older position must not rewind)", e.LastSeenAt, base)
	}
	if e.Lat != 51.5 {
		t.Errorf("Lat = %v, want 51.5", e.Lat)
	}
}

func TestEvictInactive(t *testing.T) {
	c := NewMemoryCache()
	now := time.Now()
	c.Upsert(Entry{Callsign: "old", LastSeenAt: now.Add(-48 * time.Hour)})
	c.Upsert(Entry{Callsign: "fresh", LastSeenAt: now.Add(-time.Minute)})

	if n := c.EvictInactive(24*time.Hour, now); n != 1 {
		t.Fatalf("evicted = %d, want 1", n)
	}
	if _, ok := c.Get("old"); ok {
		t.Error("old entry still present")
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Error("fresh entry evicted")
	}
}
