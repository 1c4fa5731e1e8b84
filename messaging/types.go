package messaging

import "time"

// Envelope is the typed wrapper for every message crossing the broker.
type Envelope struct {
	MsgType   string    `json:"msg_type"`
	MsgID     string    `json:"msg_id"`
	StationID string    `json:"station_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// --- Inbound payloads (driver app -> core) ---

// PositionReport is a GPS fix published by a driver app on the
// positions topic. Callsign may also be derived from the topic suffix.
type PositionReport struct {
	Callsign  string    `json:"callsign"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// --- Outbound payloads (core -> downstream consumers) ---

type StateChangeEvent struct {
	Callsign  string `json:"callsign"`
	FromState string `json:"from_state"`
	ToState   string `json:"to_state"`
	Color     string `json:"color"`
	Reason    string `json:"reason"`
}

type AssignmentEvent struct {
	BookingID string  `json:"booking_id"`
	Callsign  *string `json:"assigned_callsign"`
	Tier      string  `json:"tier"`
	Assigned  bool    `json:"assigned"`
}

type FleetSummary struct {
	Sequence      uint64         `json:"sequence"`
	Vehicles      int            `json:"vehicles"`
	Bookings      int            `json:"bookings"`
	StateCounts   map[string]int `json:"state_counts"`
	AssignedCount int            `json:"assigned_count"`
}

type UnknownStatusAlert struct {
	Callsign  string `json:"callsign"`
	RawStatus string `json:"raw_status"`
}
