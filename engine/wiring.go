package engine

import (
	"cabwatch/messaging"
)

func (e *Engine) wireEventHandlers() {
	// Vehicle state changes: persist the transition and queue it for
	// downstream consumers.
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(VehicleStateChangedEvent)
		e.logFn("engine: vehicle %s: %s -> %s (%s)", ev.Callsign, ev.FromState, ev.ToState, ev.Reason)
		if err := e.db.RecordStateChange(ev.Callsign, ev.FromState, ev.ToState, ev.Reason); err != nil {
			e.logFn("engine: record state change for %s: %v", ev.Callsign, err)
		}
		e.enqueue("state_change", messaging.StateChangeEvent{
			Callsign:  ev.Callsign,
			FromState: ev.FromState,
			ToState:   ev.ToState,
			Color:     ev.Color,
			Reason:    ev.Reason,
		})
	}, EventVehicleStateChanged)

	// Booking assignment changes: queue for downstream consumers.
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(BookingAssignmentChangedEvent)
		e.enqueue("booking_assignment", messaging.AssignmentEvent{
			BookingID: ev.BookingID,
			Callsign:  ev.Callsign,
			Tier:      ev.Tier,
			Assigned:  ev.Assigned,
		})
	}, EventBookingAssignmentChanged)

	// Unknown raw statuses: track the token so a vocabulary drift
	// upstream shows up on the dashboard instead of rotting silently.
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(UnknownStatusEvent)
		if err := e.db.RecordStatusToken(ev.RawStatus, "unknown"); err != nil {
			e.logFn("engine: record status token %q: %v", ev.RawStatus, err)
		}
		e.enqueue("unknown_status", messaging.UnknownStatusAlert{
			Callsign:  ev.Callsign,
			RawStatus: ev.RawStatus,
		})
	}, EventUnknownStatus)

	// Completed passes: publish a summary of the fleet.
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(PollCompletedEvent)
		ov := e.Overview()
		if ov == nil || ov.Sequence != ev.Sequence {
			return
		}
		e.enqueue("fleet_summary", messaging.FleetSummary{
			Sequence:      ov.Sequence,
			Vehicles:      len(ov.Vehicles),
			Bookings:      len(ov.Bookings),
			StateCounts:   ov.StateCounts,
			AssignedCount: ov.AssignedCount,
		})
	}, EventPollCompleted)

	// Connection status: log only; the SSE hub relays these to the UI.
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(ConnectionEvent)
		e.logFn("engine: connection: %s", ev.Detail)
	}, EventProviderConnected, EventProviderDisconnected, EventMessagingConnected, EventMessagingDisconnected)
}

// enqueue wraps a payload in an envelope and spools it through the DB
// outbox so a broker outage never loses events.
func (e *Engine) enqueue(msgType string, payload any) {
	env := messaging.NewEnvelope(msgType, e.cfg.Messaging.StationID, payload)
	data, err := env.Encode()
	if err != nil {
		e.logFn("engine: encode %s envelope: %v", msgType, err)
		return
	}
	if err := e.db.EnqueueOutbox(e.cfg.Messaging.FleetTopic, data, msgType, e.cfg.Messaging.StationID); err != nil {
		e.logFn("engine: enqueue %s: %v", msgType, err)
	}
}
