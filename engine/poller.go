package engine

import (
	"time"

	"cabwatch/classify"
)

// RunPass executes one full polling pass: fetch, classify every
// vehicle, detect pauses, then resolve every booking against the
// completed roster. The roster barrier matters: a booking must never
// be resolved against a half-classified fleet. A failed fetch aborts
// the pass and the previous overview stays current.
func (e *Engine) RunPass() {
	snaps, err := e.fleet.FetchVehicles()
	if err != nil {
		e.logFn("engine: fetch vehicles: %v", err)
		return
	}
	bookings, err := e.fleet.FetchBookings()
	if err != nil {
		e.logFn("engine: fetch bookings: %v", err)
		return
	}

	e.mu.Lock()
	e.sequence++
	seq := e.sequence
	prev := e.overview
	e.mu.Unlock()

	now := time.Now()

	// Phase 1: base classification for the whole fleet.
	classified := make([]classify.ClassifiedVehicle, len(snaps))
	for i, snap := range snaps {
		classified[i] = classify.Classify(snap)
	}

	// Zone activity is derived from this pass's base states, so pause
	// detection sees the same roster the resolver will.
	zoneActive := countActiveByZone(classified)

	for i, snap := range snaps {
		cv := classified[i]
		if cv.State == classify.StateUnknown {
			e.Events.Emit(Event{Type: EventUnknownStatus, Payload: UnknownStatusEvent{
				Callsign:  snap.Callsign,
				RawStatus: snap.RawStatus,
			}})
		}

		active, ok := zoneActive[snap.Zone]
		if !ok || snap.Zone == "" {
			active = classify.ZoneActiveUnknown
		}
		res := e.detector.Detect(snap, cv.State, e.vehicles.LastSeen(snap.Callsign), active, now)
		if res.Paused {
			classified[i] = res.Apply(cv)
		}
	}

	// Record coordinates after detection: staleness must be judged
	// against the previous pass's fixes, not this one's.
	e.vehicles.RecordPoll(seq, snaps)

	// Phase 2: resolve bookings against the complete roster.
	resolved := e.resolver.ResolveAll(bookings, classified)

	ov := BuildOverview(seq, now, classified, resolved)

	e.mu.Lock()
	// A slow pass must not clobber the output of a newer one.
	if e.overview != nil && e.overview.Sequence > seq {
		e.mu.Unlock()
		e.logFn("engine: discarding stale pass %d (current %d)", seq, e.overview.Sequence)
		return
	}
	e.overview = ov
	e.mu.Unlock()

	e.emitDiffs(prev, ov)

	e.Events.Emit(Event{Type: EventPollCompleted, Payload: PollCompletedEvent{
		Sequence: seq,
		Vehicles: len(ov.Vehicles),
		Bookings: len(ov.Bookings),
	}})
}

// countActiveByZone counts non-offline vehicles per zone. A queue
// cannot rank a vehicle beyond the number of vehicles actually in it,
// which is what the dynamic pause threshold leans on.
func countActiveByZone(vehicles []classify.ClassifiedVehicle) map[string]int {
	counts := make(map[string]int)
	for _, v := range vehicles {
		if v.Zone == "" || v.State == classify.StateOffline {
			continue
		}
		counts[v.Zone]++
	}
	return counts
}

// emitDiffs compares two consecutive overviews and emits change events
// for vehicles and bookings whose outcome moved.
func (e *Engine) emitDiffs(prev, cur *FleetOverview) {
	prevStates := make(map[string]classify.ClassifiedVehicle)
	prevBookings := make(map[string]string)
	if prev != nil {
		for _, v := range prev.Vehicles {
			prevStates[v.Callsign] = v
		}
		for _, b := range prev.Bookings {
			prevBookings[b.BookingID] = bookingKey(b.AssignedCallsign, string(b.Tier))
		}
	}

	for _, v := range cur.Vehicles {
		old, seen := prevStates[v.Callsign]
		if seen && old.State == v.State {
			continue
		}
		fromState := ""
		if seen {
			fromState = string(old.State)
		}
		e.Events.Emit(Event{Type: EventVehicleStateChanged, Payload: VehicleStateChangedEvent{
			Callsign:  v.Callsign,
			FromState: fromState,
			ToState:   string(v.State),
			Color:     string(v.Color),
			Reason:    lastReason(v.Reasons),
		}})
	}

	for _, b := range cur.Bookings {
		key := bookingKey(b.AssignedCallsign, string(b.Tier))
		if oldKey, seen := prevBookings[b.BookingID]; seen && oldKey == key {
			continue
		}
		e.Events.Emit(Event{Type: EventBookingAssignmentChanged, Payload: BookingAssignmentChangedEvent{
			BookingID: b.BookingID,
			Callsign:  b.AssignedCallsign,
			Tier:      string(b.Tier),
			Assigned:  b.Assigned,
		}})
	}
}

func bookingKey(callsign *string, tier string) string {
	if callsign == nil {
		return tier + "|"
	}
	return tier + "|" + *callsign
}

func lastReason(reasons []string) string {
	if len(reasons) == 0 {
		return ""
	}
	return reasons[len(reasons)-1]
}
