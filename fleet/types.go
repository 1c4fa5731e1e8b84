package fleet

import "time"

// VehicleSnapshot is a vendor-neutral view of one vehicle's telemetry in a
// single poll. Callsign is the join key across all upstream feeds; RawStatus
// alone is never sufficient to determine the final operational state.
type VehicleSnapshot struct {
	Callsign      string
	RawStatus     string
	Zone          string
	QueuePosition *int
	Penalty       *Penalty
	Coordinates   *Coordinates
	Shift         *Shift

	// NoData marks vehicles for which the platform emitted an explicit
	// "no data" record rather than omitting them from the feed.
	NoData bool
}

// Penalty is the upstream suspension/break record attached to a vehicle.
// BreakFinishTime of the upstream sentinel (year 1) means "not set".
type Penalty struct {
	BreakReason     string
	BreakFinishTime time.Time
	PenaltyReason   string
}

// Coordinates is a GPS fix with the time it was reported.
type Coordinates struct {
	Lat       float64
	Lng       float64
	Timestamp time.Time
}

// Shift carries shift metadata when the platform reports it.
type Shift struct {
	StartedAt time.Time
	Duration  time.Duration
	JobCount  int
}

// BookingRecord is a vendor-neutral active booking.
type BookingRecord struct {
	ID            string
	DirectDriver  string
	DirectVehicle string
	Constraints   Constraints
	Suggestion    *Suggestion
}

// Constraints lists candidate and forbidden driver/vehicle ids for a booking
// without naming a definitive assignment. Presence of any requested id is
// itself evidence the booking has been allocated.
type Constraints struct {
	RequestedDrivers  []int
	RequestedVehicles []int
	ForbiddenDrivers  []int
	ForbiddenVehicles []int
}

// HasRequested reports whether any requested constraint ids are present.
func (c Constraints) HasRequested() bool {
	return len(c.RequestedVehicles) > 0 || len(c.RequestedDrivers) > 0
}

// Suggestion is a cross-reference assignment hint produced outside the core.
// The resolver decides whether to trust it.
type Suggestion struct {
	Callsign        string
	Name            string
	Source          string
	ConfidenceScore float64
}
