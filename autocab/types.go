package autocab

import (
	"encoding/json"
	"time"
)

// Response is the platform's standard reply envelope.
type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// VehicleStatusReport is the platform's raw per-vehicle record. Field shapes
// follow the vendor feed and are normalized by the fleet adapter.
type VehicleStatusReport struct {
	Callsign      string          `json:"callsign"`
	VehicleStatus string          `json:"vehicleStatus"`
	Zone          string          `json:"zone"`
	QueuePosition *int            `json:"queuePosition,omitempty"`
	Penalty       json.RawMessage `json:"penalty,omitempty"`
	Position      *GPSPosition    `json:"position,omitempty"`
	Shift         *ShiftInfo      `json:"shift,omitempty"`
	NoData        bool            `json:"noData,omitempty"`
}

// PenaltyInfo decodes the Penalty raw message. The feed occasionally emits
// the field with the wrong shape; a record must never fail for that, so a
// malformed penalty is reported as absent.
func (r *VehicleStatusReport) PenaltyInfo() *PenaltyInfo {
	if len(r.Penalty) == 0 || string(r.Penalty) == "null" {
		return nil
	}
	var p PenaltyInfo
	if err := json.Unmarshal(r.Penalty, &p); err != nil {
		return nil
	}
	return &p
}

// PenaltyInfo is the vendor's suspension/break record. BreakFinishTime uses
// 0001-01-01T00:00:00+00:00 as its "not set" sentinel.
type PenaltyInfo struct {
	BreakReason     string    `json:"breakReason"`
	BreakFinishTime time.Time `json:"breakFinishTime"`
	PenaltyReason   string    `json:"penaltyReason"`
}

type GPSPosition struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

type ShiftInfo struct {
	StartedAt       time.Time `json:"startedAt"`
	DurationMinutes int       `json:"durationMinutes"`
	JobCount        int       `json:"jobCount"`
}

type VehiclesStatusResponse struct {
	Response
	Report []VehicleStatusReport `json:"report"`
}

// BookingReport is the platform's raw active-booking record.
type BookingReport struct {
	ID            string             `json:"bookingId"`
	Driver        string             `json:"driver,omitempty"`
	Vehicle       string             `json:"vehicle,omitempty"`
	Capabilities  *BookingConstraint `json:"capabilities,omitempty"`
	CrossRef      *CrossReference    `json:"crossReference,omitempty"`
	PickupAddress string             `json:"pickupAddress,omitempty"`
	BookedAt      time.Time          `json:"bookedAt,omitempty"`
}

// BookingConstraint lists candidate/forbidden ids without naming a
// definitive assignment.
type BookingConstraint struct {
	RequestedDrivers  []int `json:"requestedDrivers"`
	RequestedVehicles []int `json:"requestedVehicles"`
	ForbiddenDrivers  []int `json:"forbiddenDrivers"`
	ForbiddenVehicles []int `json:"forbiddenVehicles"`
}

// CrossReference is the externally-produced assignment hint attached to a
// booking (e.g. from the email extraction pipeline).
type CrossReference struct {
	Callsign   string  `json:"callsign"`
	Name       string  `json:"name"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
}

type BookingsResponse struct {
	Response
	Bookings []BookingReport `json:"bookings"`
}

type PingResponse struct {
	Response
	Product string `json:"product"`
	Version string `json:"version"`
}
