package autocabfleet

import (
	"time"

	"cabwatch/autocab"
	"cabwatch/fleet"
)

// mapVehicle converts a raw vehicle report to a neutral snapshot. Vendor
// quirks (sentinel timestamps, malformed penalty shapes) are normalized here
// so the core never sees them.
func mapVehicle(r autocab.VehicleStatusReport) fleet.VehicleSnapshot {
	snap := fleet.VehicleSnapshot{
		Callsign:      r.Callsign,
		RawStatus:     r.VehicleStatus,
		Zone:          r.Zone,
		QueuePosition: r.QueuePosition,
		NoData:        r.NoData,
	}
	if p := r.PenaltyInfo(); p != nil {
		snap.Penalty = &fleet.Penalty{
			BreakReason:     p.BreakReason,
			BreakFinishTime: p.BreakFinishTime,
			PenaltyReason:   p.PenaltyReason,
		}
	}
	if r.Position != nil && !r.Position.Timestamp.IsZero() {
		snap.Coordinates = &fleet.Coordinates{
			Lat:       r.Position.Latitude,
			Lng:       r.Position.Longitude,
			Timestamp: r.Position.Timestamp,
		}
	}
	if r.Shift != nil {
		snap.Shift = &fleet.Shift{
			StartedAt: r.Shift.StartedAt,
			Duration:  time.Duration(r.Shift.DurationMinutes) * time.Minute,
			JobCount:  r.Shift.JobCount,
		}
	}
	return snap
}

// mapBooking converts a raw booking report to a neutral record. Null and
// empty constraint arrays are equivalent downstream.
func mapBooking(b autocab.BookingReport) fleet.BookingRecord {
	rec := fleet.BookingRecord{
		ID:            b.ID,
		DirectDriver:  b.Driver,
		DirectVehicle: b.Vehicle,
	}
	if c := b.Capabilities; c != nil {
		rec.Constraints = fleet.Constraints{
			RequestedDrivers:  c.RequestedDrivers,
			RequestedVehicles: c.RequestedVehicles,
			ForbiddenDrivers:  c.ForbiddenDrivers,
			ForbiddenVehicles: c.ForbiddenVehicles,
		}
	}
	if x := b.CrossRef; x != nil {
		rec.Suggestion = &fleet.Suggestion{
			Callsign:        x.Callsign,
			Name:            x.Name,
			Source:          x.Source,
			ConfidenceScore: x.Confidence,
		}
	}
	return rec
}
