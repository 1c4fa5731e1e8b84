package engine

import (
	"path/filepath"
	"testing"
	"time"

	"cabwatch/classify"
	"cabwatch/config"
	"cabwatch/fleet"
	"cabwatch/messaging"
	"cabwatch/store"
	"cabwatch/vehiclestate"
)

// fakeSource is a scriptable fleet.SnapshotSource.
type fakeSource struct {
	vehicles []fleet.VehicleSnapshot
	bookings []fleet.BookingRecord
	vehErr   error
	bookErr  error
}

func (f *fakeSource) FetchVehicles() ([]fleet.VehicleSnapshot, error) {
	if f.vehErr != nil {
		return nil, f.vehErr
	}
	return f.vehicles, nil
}

func (f *fakeSource) FetchBookings() ([]fleet.BookingRecord, error) {
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	return f.bookings, nil
}

func (f *fakeSource) Ping() error                          { return nil }
func (f *fakeSource) Name() string                         { return "fake" }
func (f *fakeSource) Reconfigure(fleet.ReconfigureParams)  {}

func newTestEngine(t *testing.T, src *fakeSource) *Engine {
	t.Helper()
	cfg := config.Defaults()
	db, err := store.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	e := New(Config{
		AppConfig: cfg,
		DB:        db,
		Fleet:     src,
		Vehicles:  vehiclestate.NewManager(vehiclestate.NewMemoryCache(), nil),
		MsgClient: messaging.NewClient(&cfg.Messaging),
		LogFunc:   t.Logf,
	})
	e.wireEventHandlers()
	return e
}

func coords(lat, lng float64, ts time.Time) *fleet.Coordinates {
	return &fleet.Coordinates{Lat: lat, Lng: lng, Timestamp: ts}
}

func TestRunPassAggregates(t *testing.T) {
	now := time.Now()
	src := &fakeSource{
		vehicles: []fleet.VehicleSnapshot{
			{Callsign: "42", RawStatus: "Available", Zone: "North", Coordinates: coords(51.5, -0.12, now)},
			{Callsign: "17", RawStatus: "BusyMeterOn", Zone: "North", Coordinates: coords(51.6, -0.1, now)},
		},
		bookings: []fleet.BookingRecord{
			{ID: "b1", DirectVehicle: "42"},
			{ID: "b2"},
		},
	}
	e := newTestEngine(t, src)

	e.RunPass()

	ov := e.Overview()
	if ov == nil {
		t.Fatal("overview should exist after a pass")
	}
	if ov.Sequence != 1 {
		t.Errorf("sequence = %d, want 1", ov.Sequence)
	}
	if len(ov.Vehicles) != 2 {
		t.Fatalf("vehicles = %d, want 2", len(ov.Vehicles))
	}
	// Input order preserved.
	if ov.Vehicles[0].Callsign != "42" || ov.Vehicles[1].Callsign != "17" {
		t.Errorf("vehicle order = %q, %q; want 42, 17", ov.Vehicles[0].Callsign, ov.Vehicles[1].Callsign)
	}
	if ov.Vehicles[0].State != classify.StateAvailable {
		t.Errorf("vehicle 42 state = %q, want available", ov.Vehicles[0].State)
	}
	if ov.StateCounts["busy"] != 1 {
		t.Errorf("busy count = %d, want 1", ov.StateCounts["busy"])
	}
	if len(ov.Bookings) != 2 {
		t.Fatalf("bookings = %d, want 2", len(ov.Bookings))
	}
	if ov.AssignedCount != 1 || ov.UnassignedCount != 1 {
		t.Errorf("assigned/unassigned = %d/%d, want 1/1", ov.AssignedCount, ov.UnassignedCount)
	}
}

func TestRunPassFetchErrorRetainsOverview(t *testing.T) {
	now := time.Now()
	src := &fakeSource{
		vehicles: []fleet.VehicleSnapshot{
			{Callsign: "42", RawStatus: "Available", Coordinates: coords(51.5, -0.12, now)},
		},
	}
	e := newTestEngine(t, src)

	e.RunPass()
	first := e.Overview()
	if first == nil {
		t.Fatal("first pass should produce an overview")
	}

	src.vehErr = errFake
	e.RunPass()

	second := e.Overview()
	if second != first {
		t.Error("failed pass must retain the previous overview")
	}
	if second.Sequence != 1 {
		t.Errorf("sequence = %d, want 1 (failed pass consumes no sequence)", second.Sequence)
	}
}

var errFake = &fetchError{}

type fetchError struct{}

func (e *fetchError) Error() string { return "upstream unavailable" }

func TestRunPassEmitsStateChangeDiffs(t *testing.T) {
	now := time.Now()
	src := &fakeSource{
		vehicles: []fleet.VehicleSnapshot{
			{Callsign: "42", RawStatus: "Available", Coordinates: coords(51.5, -0.12, now)},
			{Callsign: "17", RawStatus: "BusyMeterOn", Coordinates: coords(51.6, -0.1, now)},
		},
	}
	e := newTestEngine(t, src)

	var changes []VehicleStateChangedEvent
	e.Events.SubscribeTypes(func(evt Event) {
		changes = append(changes, evt.Payload.(VehicleStateChangedEvent))
	}, EventVehicleStateChanged)

	e.RunPass()
	if len(changes) != 2 {
		t.Fatalf("first pass changes = %d, want 2 (everything is new)", len(changes))
	}

	// Second pass: only vehicle 17 changes.
	changes = nil
	src.vehicles[1].RawStatus = "Available"
	src.vehicles[1].Coordinates = coords(51.6, -0.1, now.Add(time.Second))
	e.RunPass()

	if len(changes) != 1 {
		t.Fatalf("second pass changes = %d, want 1", len(changes))
	}
	if changes[0].Callsign != "17" {
		t.Errorf("changed callsign = %q, want %q", changes[0].Callsign, "17")
	}
	if changes[0].FromState != "busy" || changes[0].ToState != "available" {
		t.Errorf("transition = %s -> %s, want busy -> available", changes[0].FromState, changes[0].ToState)
	}

	// Transitions are persisted.
	recorded, err := e.db.ListVehicleStateChanges("17", 10)
	if err != nil {
		t.Fatalf("list state changes: %v", err)
	}
	if len(recorded) != 2 {
		t.Errorf("recorded changes for 17 = %d, want 2", len(recorded))
	}
}

func TestRunPassUnknownStatusTracked(t *testing.T) {
	src := &fakeSource{
		vehicles: []fleet.VehicleSnapshot{
			{Callsign: "9", RawStatus: "WashingCab"},
		},
	}
	e := newTestEngine(t, src)

	e.RunPass()

	ov := e.Overview()
	if ov.Vehicles[0].State != classify.StateUnknown {
		t.Errorf("state = %q, want unknown", ov.Vehicles[0].State)
	}

	tokens, err := e.db.ListUnknownStatusTokens()
	if err != nil {
		t.Fatalf("list unknown tokens: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Token != "WashingCab" {
		t.Fatalf("tokens = %v, want one WashingCab entry", tokens)
	}
}

func TestRunPassDynamicQueueThreshold(t *testing.T) {
	now := time.Now()
	pos := func(v int) *int { return &v }
	// Three active vehicles in North; one claims queue position 8.
	src := &fakeSource{
		vehicles: []fleet.VehicleSnapshot{
			{Callsign: "1", RawStatus: "Available", Zone: "North", QueuePosition: pos(1), Coordinates: coords(51, 0, now)},
			{Callsign: "2", RawStatus: "Available", Zone: "North", QueuePosition: pos(2), Coordinates: coords(51, 0, now)},
			{Callsign: "3", RawStatus: "Available", Zone: "North", QueuePosition: pos(8), Coordinates: coords(51, 0, now)},
		},
	}
	e := newTestEngine(t, src)

	e.RunPass()

	ov := e.Overview()
	v3, ok := ov.Vehicle("3")
	if !ok {
		t.Fatal("vehicle 3 missing from overview")
	}
	if v3.State != classify.StateBreak {
		t.Errorf("vehicle 3 state = %q, want break (queue position beyond zone population)", v3.State)
	}
	v1, _ := ov.Vehicle("1")
	if v1.State != classify.StateAvailable {
		t.Errorf("vehicle 1 state = %q, want available", v1.State)
	}
}

func TestRunPassStaleGPSPauses(t *testing.T) {
	now := time.Now()
	src := &fakeSource{
		vehicles: []fleet.VehicleSnapshot{
			{Callsign: "42", RawStatus: "Available", Coordinates: coords(51.5, -0.12, now.Add(-30*time.Minute))},
		},
	}
	e := newTestEngine(t, src)

	e.RunPass()

	v, _ := e.Overview().Vehicle("42")
	if v.State != classify.StateBreak {
		t.Errorf("state = %q, want break (GPS fix 30m old)", v.State)
	}
}

func TestRunPassSpoolsOutbox(t *testing.T) {
	now := time.Now()
	src := &fakeSource{
		vehicles: []fleet.VehicleSnapshot{
			{Callsign: "42", RawStatus: "Available", Coordinates: coords(51.5, -0.12, now)},
		},
		bookings: []fleet.BookingRecord{{ID: "b1", DirectVehicle: "42"}},
	}
	e := newTestEngine(t, src)

	e.RunPass()

	msgs, err := e.db.ListPendingOutbox(50)
	if err != nil {
		t.Fatalf("list outbox: %v", err)
	}
	// state_change + booking_assignment + fleet_summary at minimum.
	types := make(map[string]int)
	for _, m := range msgs {
		types[m.MsgType]++
	}
	for _, want := range []string{"state_change", "booking_assignment", "fleet_summary"} {
		if types[want] == 0 {
			t.Errorf("no %s message in outbox (got %v)", want, types)
		}
	}
}

func TestRunPassRecordsCoordinates(t *testing.T) {
	fix := time.Now().Add(-time.Minute).Truncate(time.Second)
	src := &fakeSource{
		vehicles: []fleet.VehicleSnapshot{
			{Callsign: "42", RawStatus: "Available", Coordinates: coords(51.5, -0.12, fix)},
		},
	}
	e := newTestEngine(t, src)

	e.RunPass()

	got := e.vehicles.LastSeen("42")
	if !got.Equal(fix) {
		t.Errorf("LastSeen = %v, want %v", got, fix)
	}
}
