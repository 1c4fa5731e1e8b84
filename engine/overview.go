package engine

import (
	"time"

	"cabwatch/assign"
	"cabwatch/classify"
)

// FleetOverview is the aggregate output of one polling pass: every
// classified vehicle and every resolved booking, in input order, plus
// summary counts for dashboards and downstream consumers.
type FleetOverview struct {
	Sequence        uint64                       `json:"sequence"`
	GeneratedAt     time.Time                    `json:"generated_at"`
	Vehicles        []classify.ClassifiedVehicle `json:"vehicles"`
	Bookings        []assign.ResolvedBooking     `json:"bookings"`
	StateCounts     map[string]int               `json:"state_counts"`
	AssignedCount   int                          `json:"assigned_count"`
	UnassignedCount int                          `json:"unassigned_count"`
}

// BuildOverview composes an overview from already-classified vehicles
// and already-resolved bookings. Input order is preserved; no decision
// logic lives here.
func BuildOverview(seq uint64, at time.Time, vehicles []classify.ClassifiedVehicle, bookings []assign.ResolvedBooking) *FleetOverview {
	ov := &FleetOverview{
		Sequence:    seq,
		GeneratedAt: at,
		Vehicles:    vehicles,
		Bookings:    bookings,
		StateCounts: make(map[string]int),
	}
	for _, v := range vehicles {
		ov.StateCounts[string(v.State)]++
	}
	for _, b := range bookings {
		if b.Assigned {
			ov.AssignedCount++
		} else {
			ov.UnassignedCount++
		}
	}
	return ov
}

// Vehicle returns the classified vehicle with the given callsign, if present.
func (ov *FleetOverview) Vehicle(callsign string) (classify.ClassifiedVehicle, bool) {
	for _, v := range ov.Vehicles {
		if v.Callsign == callsign {
			return v, true
		}
	}
	return classify.ClassifiedVehicle{}, false
}
