// Package assign resolves which driver/vehicle is actually serving a booking
// when the platform's own assignment field is empty but weaker constraint or
// suggestion signals exist.
package assign

import (
	"strconv"

	"cabwatch/classify"
	"cabwatch/fleet"
)

// Tier is the cascade stage at which a booking's assignment was determined.
type Tier string

const (
	TierDirect             Tier = "direct"
	TierResolvedConstraint Tier = "resolved_constraint"
	TierSuggested          Tier = "suggested"
	TierUnresolved         Tier = "unresolved"
)

// ResolvedBooking is the per-booking output of one resolution pass. Tier is
// always populated, even for unresolved bookings.
type ResolvedBooking struct {
	BookingID        string  `json:"booking_id"`
	AssignedCallsign *string `json:"assigned_callsign"`
	Tier             Tier    `json:"assignment_tier"`

	// Assigned is the downstream grouping criterion: true when the tier is
	// Direct or ResolvedConstraint, or when raw constraint data is present
	// even if resolution could not name a callsign. Gating solely on "did
	// resolution succeed" under-counts assigned bookings.
	Assigned bool `json:"assigned"`
}

// Config holds the resolver's deployment thresholds.
type Config struct {
	// SuggestionMinConfidence is the inclusive minimum score at which a
	// cross-reference suggestion is trusted. Suggestions below it are
	// dropped entirely, not surfaced as partial assignments.
	SuggestionMinConfidence float64
}

// Resolver maps bookings to serving callsigns via an ordered cascade:
// direct assignment, resolved constraint, cross-reference suggestion,
// unresolved. First applicable tier wins.
type Resolver struct {
	cfg Config
}

func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve determines the serving callsign for one booking. Pure function of
// the booking plus the fully classified fleet roster; the roster is used
// only to validate that a constrained or suggested callsign actually exists.
func (r *Resolver) Resolve(booking fleet.BookingRecord, roster []classify.ClassifiedVehicle) ResolvedBooking {
	out := ResolvedBooking{BookingID: booking.ID, Tier: TierUnresolved}

	// Direct assignment is authoritative and ignores constraints entirely.
	if booking.DirectVehicle != "" || booking.DirectDriver != "" {
		cs := booking.DirectVehicle
		if cs == "" {
			cs = booking.DirectDriver
		}
		out.AssignedCallsign = &cs
		out.Tier = TierDirect
		out.Assigned = true
		return out
	}

	hasConstraints := booking.Constraints.HasRequested()

	// A vehicle constraint is more specific than a driver constraint: a
	// vehicle implies a driver but not vice versa.
	if hasConstraints {
		if cs, ok := mapConstraint(booking.Constraints.RequestedVehicles, booking.Constraints.RequestedDrivers, roster); ok {
			out.AssignedCallsign = &cs
			out.Tier = TierResolvedConstraint
			out.Assigned = true
			return out
		}
	}

	if s := booking.Suggestion; s != nil && s.ConfidenceScore >= r.cfg.SuggestionMinConfidence {
		if rosterHas(roster, s.Callsign) {
			cs := s.Callsign
			out.AssignedCallsign = &cs
			out.Tier = TierSuggested
			out.Assigned = hasConstraints
			return out
		}
	}

	// Constraint ids that resolved to no active vehicle still mark the
	// booking as allocated: the presence of constraint data is itself
	// evidence of assignment.
	if hasConstraints {
		out.Tier = TierResolvedConstraint
		out.Assigned = true
		return out
	}

	return out
}

// ResolveAll resolves every booking against the same roster. The roster must
// be fully classified before resolution begins.
func (r *Resolver) ResolveAll(bookings []fleet.BookingRecord, roster []classify.ClassifiedVehicle) []ResolvedBooking {
	out := make([]ResolvedBooking, len(bookings))
	for i, b := range bookings {
		out[i] = r.Resolve(b, roster)
	}
	return out
}

// mapConstraint maps the first requested vehicle id, then the first
// requested driver id, through the roster to a callsign.
func mapConstraint(vehicles, drivers []int, roster []classify.ClassifiedVehicle) (string, bool) {
	for _, ids := range [][]int{vehicles, drivers} {
		if len(ids) == 0 {
			continue
		}
		cs := strconv.Itoa(ids[0])
		if rosterHas(roster, cs) {
			return cs, true
		}
	}
	return "", false
}

func rosterHas(roster []classify.ClassifiedVehicle, callsign string) bool {
	if callsign == "" {
		return false
	}
	for _, v := range roster {
		if v.Callsign == callsign {
			return true
		}
	}
	return false
}
